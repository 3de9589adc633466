package rename

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	apperrors "github.com/easayliu/tg-autorename/internal/shared/errors"
	"github.com/easayliu/tg-autorename/pkg/logger"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 3

// JobProcessor handles one dequeued job.
type JobProcessor interface {
	Process(ctx context.Context, job *contracts.RenameJob) error
}

// WorkerPool drains the rename queue with a fixed number of workers.
// Jobs are processed to completion once dequeued; Stop waits for them.
type WorkerPool struct {
	workers   int
	processor JobProcessor
	queue     *jobQueue

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	inFlight  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
}

// NewWorkerPool creates a pool; workers <= 0 falls back to DefaultWorkers.
func NewWorkerPool(workers int, processor JobProcessor) *WorkerPool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &WorkerPool{
		workers:   workers,
		processor: processor,
		queue:     newJobQueue(),
	}
}

// Start launches the workers.
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.New("worker pool already running")
	}
	if p.stopped {
		return errors.New("worker pool already stopped")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	p.wg.Add(p.workers)
	for i := 1; i <= p.workers; i++ {
		go p.runWorker(runCtx, i)
	}

	logger.Info("Rename workers started", "workers", p.workers)
	return nil
}

// Stop halts dequeuing, waits for in-flight jobs and drops whatever is still
// queued. It returns the number of dropped jobs.
func (p *WorkerPool) Stop() int {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return 0
	}
	p.stopped = true
	cancel := p.cancel
	wasRunning := p.running
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	if wasRunning {
		cancel()
		p.wg.Wait()
	}

	dropped := len(p.queue.drain())
	logger.Info("Rename workers stopped", "dropped_jobs", dropped, "processed", p.processed.Load())
	return dropped
}

// Enqueue adds a job. It never blocks and returns false once the pool is stopped.
func (p *WorkerPool) Enqueue(job *contracts.RenameJob) bool {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped || job == nil {
		return false
	}

	p.queue.push(job)
	logger.Debug("Rename job queued", "job_id", job.ID, "pending", p.queue.len())
	return true
}

// Stats returns a snapshot of the pool counters.
func (p *WorkerPool) Stats() contracts.QueueStats {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	return contracts.QueueStats{
		Workers:   p.workers,
		Running:   running,
		Pending:   p.queue.len(),
		InFlight:  int(p.inFlight.Load()),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Rejected:  p.rejected.Load(),
	}
}

func (p *WorkerPool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()

	// a dequeued job is never cancelled by Stop
	jobCtx := context.WithoutCancel(ctx)

	for {
		if ctx.Err() != nil {
			return
		}
		if job, ok := p.queue.pop(); ok {
			p.runJob(jobCtx, id, job)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-p.queue.signal:
		}
	}
}

func (p *WorkerPool) runJob(ctx context.Context, workerID int, job *contracts.RenameJob) {
	p.inFlight.Add(1)
	defer func() {
		p.inFlight.Add(-1)
		p.processed.Add(1)
	}()

	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			logger.Error("Rename job panicked",
				"worker", workerID,
				"job_id", job.ID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()

	if err := p.processor.Process(ctx, job); err != nil {
		if isRejection(err) {
			p.rejected.Add(1)
			logger.Info("Rename job rejected", "worker", workerID, "job_id", job.ID, "reason", err)
			return
		}
		p.failed.Add(1)
		logger.Error("Error processing rename task", "worker", workerID, "job_id", job.ID, "error", err)
		return
	}
	logger.Debug("Rename job finished", "worker", workerID, "job_id", job.ID)
}

// isRejection reports user-input and policy outcomes that are not failures.
func isRejection(err error) bool {
	code, ok := apperrors.CodeOf(err)
	if !ok {
		return false
	}
	switch code {
	case apperrors.ErrorCodeNoTemplate,
		apperrors.ErrorCodeUnsupportedMedia,
		apperrors.ErrorCodeContentRejected,
		apperrors.ErrorCodeDuplicate,
		apperrors.ErrorCodeQualityUnknown:
		return true
	}
	return false
}
