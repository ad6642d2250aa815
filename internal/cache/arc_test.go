package cache

import "testing"

func TestLRU(t *testing.T) {
	t.Parallel()

	c, err := NewLRU(2)
	if err != nil {
		t.Fatalf("new lru: %v", err)
	}

	c.Add("a", []int{1, 2})
	v, ok := Lookup[[]int](c, "a")
	if !ok || len(v) != 2 {
		t.Fatalf("expected cached slice got %v %v", v, ok)
	}

	if _, ok := Lookup[string](c, "a"); ok {
		t.Error("expected type mismatch to miss")
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected deleted key to miss")
	}

	c.Add("b", 1)
	c.Add("c", 2)
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected empty cache got %d", c.Len())
	}
}

func TestNewLRUInvalidSize(t *testing.T) {
	t.Parallel()

	if _, err := NewLRU(0); err == nil {
		t.Error("expected error for size 0")
	}
}

func TestLookupNilCache(t *testing.T) {
	t.Parallel()

	if _, ok := Lookup[int](nil, "a"); ok {
		t.Error("expected nil cache to miss")
	}
}
