// Package inventory owns the per-category capacity locks. Every mutation of
// a category's available capacity must happen while holding the mutex the
// registry hands out for that category.
package inventory

import "sync"

type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[string]*sync.Mutex),
	}
}

// Get returns the mutex for categoryID, creating it on first use. Callers on
// the same category always receive the same mutex.
func (r *Registry) Get(categoryID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[categoryID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[categoryID] = lock
	}
	return lock
}
