package notary

import (
	"testing"
	"time"
)

func TestLockManagerSerializesOverlappingKeys(t *testing.T) {
	m := newLockManager()
	release := m.acquire([]string{"a|one", "a|two"}, false)

	acquired := make(chan struct{})
	go func() {
		r := m.acquire([]string{"a|two", "a|three"}, false)
		r()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("overlapping acquisition must wait")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock never released")
	}
}

func TestLockManagerSoloWaitsForSharedHolders(t *testing.T) {
	m := newLockManager()
	release := m.acquire([]string{"a|one"}, false)

	soloDone := make(chan struct{})
	go func() {
		r := m.acquire(nil, true)
		r()
		close(soloDone)
	}()

	select {
	case <-soloDone:
		t.Fatal("solo acquisition must wait for shared holders")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-soloDone:
	case <-time.After(time.Second):
		t.Fatal("barrier never released")
	}
}

func TestLockManagerDuplicateKeys(t *testing.T) {
	m := newLockManager()
	release := m.acquire([]string{"a|one", "a|one", "n|x"}, false)
	release()
	release = m.acquire([]string{"a|one", "n|x"}, false)
	release()
}
