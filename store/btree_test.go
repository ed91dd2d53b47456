package store

import (
	"bytes"
	"testing"
)

func TestCacheWrapWriteAndDiscard(t *testing.T) {
	base := MemStore()
	if err := base.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}

	// discarded writes never reach the parent
	cache := base.CacheWrap()
	if err := cache.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete([]byte("a")); err != nil {
		t.Fatal(err)
	}
	cache.Discard()

	if v, _ := base.Get([]byte("a")); !bytes.Equal(v, []byte("1")) {
		t.Fatalf("parent value lost on discard: %q", v)
	}
	if h, _ := base.Has([]byte("b")); h {
		t.Fatal("discarded write leaked to parent")
	}

	// written changes are applied as one unit
	cache = base.CacheWrap()
	if err := cache.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Write(); err != nil {
		t.Fatal(err)
	}

	if h, _ := base.Has([]byte("a")); h {
		t.Fatal("delete not applied on write")
	}
	if v, _ := base.Get([]byte("b")); !bytes.Equal(v, []byte("2")) {
		t.Fatalf("set not applied on write: %q", v)
	}
}

func TestCacheWrapShadowsParent(t *testing.T) {
	base := MemStore()
	if err := base.Set([]byte("k"), []byte("old")); err != nil {
		t.Fatal(err)
	}

	cache := base.CacheWrap()
	if err := cache.Set([]byte("k"), []byte("new")); err != nil {
		t.Fatal(err)
	}

	if v, _ := cache.Get([]byte("k")); !bytes.Equal(v, []byte("new")) {
		t.Fatalf("cache must shadow parent, got %q", v)
	}
	if v, _ := base.Get([]byte("k")); !bytes.Equal(v, []byte("old")) {
		t.Fatalf("parent must be untouched, got %q", v)
	}

	if err := cache.Delete([]byte("k")); err != nil {
		t.Fatal(err)
	}
	if v, _ := cache.Get([]byte("k")); v != nil {
		t.Fatalf("delete must shadow parent, got %q", v)
	}
}

func TestNestedCacheWrap(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	inner := outer.CacheWrap()

	if err := inner.Set([]byte("x"), []byte("9")); err != nil {
		t.Fatal(err)
	}
	if err := inner.Write(); err != nil {
		t.Fatal(err)
	}

	if v, _ := outer.Get([]byte("x")); !bytes.Equal(v, []byte("9")) {
		t.Fatalf("inner write must land in outer, got %q", v)
	}
	if h, _ := base.Has([]byte("x")); h {
		t.Fatal("inner write must not reach base before outer writes")
	}

	if err := outer.Write(); err != nil {
		t.Fatal(err)
	}
	if v, _ := base.Get([]byte("x")); !bytes.Equal(v, []byte("9")) {
		t.Fatalf("outer write must land in base, got %q", v)
	}
}

func TestIteratorMergesCacheAndParent(t *testing.T) {
	base := MemStore()
	for _, kv := range [][2]string{{"a", "1"}, {"c", "3"}, {"e", "5"}} {
		if err := base.Set([]byte(kv[0]), []byte(kv[1])); err != nil {
			t.Fatal(err)
		}
	}

	cache := base.CacheWrap()
	if err := cache.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Set([]byte("c"), []byte("overwritten")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete([]byte("e")); err != nil {
		t.Fatal(err)
	}

	it, err := cache.Iterator(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	var keys, values []string
	for ; it.Valid(); must(t, it.Next) {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}

	wantKeys := []string{"a", "b", "c"}
	wantValues := []string{"1", "2", "overwritten"}
	if len(keys) != len(wantKeys) {
		t.Fatalf("want %v, got %v", wantKeys, keys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] || values[i] != wantValues[i] {
			t.Fatalf("position %d: want %s=%s, got %s=%s",
				i, wantKeys[i], wantValues[i], keys[i], values[i])
		}
	}
}

func TestReverseIterator(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "b", "c"} {
		if err := base.Set([]byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	cache := base.CacheWrap()
	if err := cache.Delete([]byte("b")); err != nil {
		t.Fatal(err)
	}

	it, err := cache.ReverseIterator(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	var keys []string
	for ; it.Valid(); must(t, it.Next) {
		keys = append(keys, string(it.Key()))
	}
	if len(keys) != 2 || keys[0] != "c" || keys[1] != "a" {
		t.Fatalf("want [c a], got %v", keys)
	}
}

func must(t *testing.T, fn func() error) {
	t.Helper()
	if err := fn(); err != nil {
		t.Fatal(err)
	}
}
