package engine

import "sync"

// targetLocks serializes operations per target identity. Acceptance must
// re-validate the FREE precondition and grant the role as one unit relative
// to any other operation touching the same target; operations on different
// targets stay independent.
type targetLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTargetLocks() *targetLocks {
	return &targetLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key, creating it on first use, and returns the
// unlock function. Entries are kept for the engine lifetime; the map is
// bounded by the number of distinct users seen.
func (t *targetLocks) lock(key string) func() {
	t.mu.Lock()
	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m.Unlock
}
