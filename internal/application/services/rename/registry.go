package rename

import (
	"sync"
	"time"
)

// DefaultDedupWindow is how long a repeated trigger for the same file is ignored.
const DefaultDedupWindow = 10 * time.Second

// Registry tracks in-flight rename attempts per Telegram file ID.
// Check-then-set happens under one lock, so two workers cannot both claim
// the same file inside the window.
type Registry struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

// NewRegistry creates a registry with the given de-duplication window.
func NewRegistry(window time.Duration) *Registry {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Registry{
		window:  window,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// TryAcquire records an attempt for fileID. It returns false when another
// attempt started less than one window ago. The returned stamp must be
// passed to Release.
func (r *Registry) TryAcquire(fileID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if started, ok := r.entries[fileID]; ok && now.Sub(started) < r.window {
		return time.Time{}, false
	}
	r.entries[fileID] = now
	return now, true
}

// Release removes the entry for fileID if it still belongs to the attempt
// identified by stamp. A newer attempt that took over after the window is
// left alone.
func (r *Registry) Release(fileID string, stamp time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.entries[fileID]; ok && current.Equal(stamp) {
		delete(r.entries, fileID)
	}
}

// Contains reports whether fileID has an entry.
func (r *Registry) Contains(fileID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[fileID]
	return ok
}

// Len returns the number of tracked files.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
