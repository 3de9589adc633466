package janitor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/easayliu/tg-autorename/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Service 定期清理工作目录中遗留的任务目录
// 正常流程结束时会自行删除，这里只处理进程崩溃等情况留下的残留
type Service struct {
	cron     *cron.Cron
	schedule string
	roots    []string
	maxAge   time.Duration
	now      func() time.Time
	inUse    func(name string) bool

	mu      sync.Mutex
	running bool
}

// SweepResult 一次清理的结果
type SweepResult struct {
	Removed int
	Bytes   uint64
}

func NewService(schedule string, maxAge time.Duration, roots ...string) *Service {
	return &Service{
		cron:     cron.New(),
		schedule: schedule,
		roots:    roots,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// SkipInUse 设置正在使用的条目判断，返回 true 的条目不会被删除
func (s *Service) SkipInUse(fn func(name string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse = fn
}

// Start 注册清理任务并启动调度器
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("janitor already running")
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule janitor: %w", err)
	}

	s.cron.Start()
	s.running = true
	logger.Info("Janitor started", "schedule", s.schedule, "max_age", s.maxAge, "roots", s.roots)
	return nil
}

// Stop 停止调度器，等待正在执行的清理结束
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		logger.Info("Janitor stopped")
	}
}

func (s *Service) run() {
	result, err := s.Sweep()
	if err != nil {
		logger.Warn("Janitor sweep finished with errors", "removed", result.Removed, "error", err)
		return
	}
	if result.Removed > 0 {
		logger.Info("Janitor removed stale entries", "removed", result.Removed, "freed", humanize.Bytes(result.Bytes))
	}
}

// Sweep 删除各根目录下最近修改时间早于 maxAge 的直接子项
// 目录以其中最新的文件修改时间为准，正在使用的条目跳过
func (s *Service) Sweep() (SweepResult, error) {
	var (
		result SweepResult
		errs   []error
	)
	cutoff := s.now().Add(-s.maxAge)

	s.mu.Lock()
	inUse := s.inUse
	s.mu.Unlock()

	for _, root := range s.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}

		for _, entry := range entries {
			if inUse != nil && inUse(entry.Name()) {
				continue
			}

			path := filepath.Join(root, entry.Name())
			size, modified, err := inspect(path)
			if err != nil {
				continue
			}
			if modified.After(cutoff) {
				continue
			}

			if err := os.RemoveAll(path); err != nil {
				errs = append(errs, err)
				continue
			}
			result.Removed++
			result.Bytes += size
			logger.Debug("Removed stale entry", "path", path, "modified", modified)
		}
	}

	return result, errors.Join(errs...)
}

// inspect 返回条目的总大小以及其中最新的修改时间
func inspect(path string) (uint64, time.Time, error) {
	var (
		total  uint64
		newest time.Time
	)
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		if !d.IsDir() {
			total += uint64(info.Size())
		}
		return nil
	})
	return total, newest, err
}
