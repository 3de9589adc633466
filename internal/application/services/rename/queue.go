package rename

import (
	"sync"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
)

// jobQueue is an unbounded FIFO. push never blocks; waiters are woken
// through a one-slot signal channel that is passed on while jobs remain.
type jobQueue struct {
	mu     sync.Mutex
	items  []*contracts.RenameJob
	signal chan struct{}
}

func newJobQueue() *jobQueue {
	return &jobQueue{signal: make(chan struct{}, 1)}
}

func (q *jobQueue) push(job *contracts.RenameJob) {
	q.mu.Lock()
	q.items = append(q.items, job)
	q.mu.Unlock()
	q.notify()
}

func (q *jobQueue) pop() (*contracts.RenameJob, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	job := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	remaining := len(q.items)
	q.mu.Unlock()

	// wake the next idle worker
	if remaining > 0 {
		q.notify()
	}
	return job, true
}

func (q *jobQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// drain removes and returns everything still queued.
func (q *jobQueue) drain() []*contracts.RenameJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
