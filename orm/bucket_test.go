package orm

import (
	"encoding/json"
	"testing"

	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/store"
)

type counter struct {
	Count int64 `json:"count"`
}

func (c *counter) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func (c *counter) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, c)
}

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func TestModelBucketRoundtrip(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts")

	if err := b.Put(db, []byte("one"), &counter{Count: 1}); err != nil {
		t.Fatalf("cannot put: %+v", err)
	}

	var got counter
	if err := b.One(db, []byte("one"), &got); err != nil {
		t.Fatalf("cannot get: %+v", err)
	}
	if got.Count != 1 {
		t.Fatalf("want 1, got %d", got.Count)
	}

	if err := b.One(db, []byte("two"), &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestModelBucketRejectsInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts")

	err := b.Put(db, []byte("bad"), &counter{Count: -1})
	if !errors.ErrModel.Is(err) {
		t.Fatalf("want model error, got %+v", err)
	}
	if ok, _ := b.Has(db, []byte("bad")); ok {
		t.Fatal("invalid model must not be persisted")
	}
}

func TestModelBucketDelete(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts")

	if err := b.Delete(db, []byte("gone")); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}

	if err := b.Put(db, []byte("gone"), &counter{Count: 5}); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(db, []byte("gone")); err != nil {
		t.Fatalf("cannot delete: %+v", err)
	}
	if ok, _ := b.Has(db, []byte("gone")); ok {
		t.Fatal("entity must be removed")
	}
}

func TestBucketsDoNotCollide(t *testing.T) {
	db := store.MemStore()
	a := NewModelBucket("aaa")
	b := NewModelBucket("aab")

	if err := a.Put(db, []byte("k"), &counter{Count: 1}); err != nil {
		t.Fatal(err)
	}
	if err := b.Put(db, []byte("k"), &counter{Count: 2}); err != nil {
		t.Fatal(err)
	}

	var got counter
	if err := a.One(db, []byte("k"), &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 1 {
		t.Fatalf("bucket keys collided: %d", got.Count)
	}
}

func TestIterate(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts")
	other := NewModelBucket("other")

	for i, key := range []string{"a", "b", "c"} {
		if err := b.Put(db, []byte(key), &counter{Count: int64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := other.Put(db, []byte("x"), &counter{Count: 99}); err != nil {
		t.Fatal(err)
	}

	var keys []string
	err := b.Iterate(db, func(key, raw []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Fatalf("want [a b c], got %v", keys)
	}
}

func TestSequence(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("cnts", "id")

	if n, err := s.NextInt(db); err != nil || n != 1 {
		t.Fatalf("want 1, got %d (%+v)", n, err)
	}
	if n, err := s.NextInt(db); err != nil || n != 2 {
		t.Fatalf("want 2, got %d (%+v)", n, err)
	}
	if latest, _, err := s.Latest(db); err != nil || latest != 2 {
		t.Fatalf("want 2, got %d (%+v)", latest, err)
	}
}
