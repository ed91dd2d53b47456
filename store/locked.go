package store

import (
	"sync"
)

// LockedKVStore guards a shared store with a read write mutex. The btree
// backed stores in this package are not safe for concurrent use, so the
// one live store shared between dispatcher goroutines goes through this
// wrapper. Cache wraps created from it stay private to their goroutine and
// reach the shared tree only through the locked methods here.
type LockedKVStore struct {
	mu *sync.RWMutex
	db CacheableKVStore
}

var _ CacheableKVStore = LockedKVStore{}

// NewLockedKVStore wraps the given store. All access to the wrapped store
// must go through the wrapper from then on.
func NewLockedKVStore(db CacheableKVStore) LockedKVStore {
	return LockedKVStore{
		mu: new(sync.RWMutex),
		db: db,
	}
}

// Get reads the key under a shared lock.
func (l LockedKVStore) Get(key []byte) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db.Get(key)
}

// Has checks the key under a shared lock.
func (l LockedKVStore) Has(key []byte) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db.Has(key)
}

// Set writes the key under an exclusive lock.
func (l LockedKVStore) Set(key, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Set(key, value)
}

// Delete removes the key under an exclusive lock.
func (l LockedKVStore) Delete(key []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Delete(key)
}

// Iterator copies the requested range under a shared lock, so no caller
// walks the shared tree after the lock is gone.
func (l LockedKVStore) Iterator(start, end []byte) (Iterator, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, err := l.db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return drain(it)
}

// ReverseIterator copies the requested range under a shared lock.
func (l LockedKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, err := l.db.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return drain(it)
}

// CacheWrap returns a private scratchpad whose reads fall through to the
// locked store and whose Write flushes through the locked methods.
func (l LockedKVStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(l, NewNonAtomicBatch(l), nil)
}

// drain copies a live iterator into a detached one and closes the source.
func drain(it Iterator) (Iterator, error) {
	defer it.Close()
	var data []Pair
	for it.Valid() {
		data = append(data, Pair{Key: it.Key(), Value: it.Value()})
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return NewSliceIterator(data), nil
}
