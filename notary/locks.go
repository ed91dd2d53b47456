package notary

import (
	"sort"
	"sync"
)

// lockManager serializes notarizations that touch the same nym, account or
// record. Locks are always taken in canonical key order so two requests
// over an overlapping set cannot deadlock. Above the per-key locks sits a
// barrier: most requests share it, while a settlement that reaches state
// no key can name holds it exclusively and runs alone.
type lockManager struct {
	barrier sync.RWMutex

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockManager() *lockManager {
	return &lockManager{locks: make(map[string]*sync.Mutex)}
}

// acquire takes the locks for the given keys and returns the release
// function. Duplicate keys are locked once. With solo set the keys are
// ignored and the whole dispatch barrier is held instead.
func (m *lockManager) acquire(keys []string, solo bool) func() {
	if solo {
		m.barrier.Lock()
		return m.barrier.Unlock
	}
	m.barrier.RLock()

	sort.Strings(keys)
	taken := make([]*sync.Mutex, 0, len(keys))
	var last string
	for i, k := range keys {
		if i > 0 && k == last {
			continue
		}
		last = k
		l := m.lock(k)
		l.Lock()
		taken = append(taken, l)
	}
	return func() {
		for i := len(taken) - 1; i >= 0; i-- {
			taken[i].Unlock()
		}
		m.barrier.RUnlock()
	}
}

func (m *lockManager) lock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}
