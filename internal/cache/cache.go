package cache

// Cache stores decoded store reads between writes.
type Cache interface {
	Get(key interface{}) (interface{}, bool)
	Add(key, value interface{})
	Delete(key interface{})
	Purge()
}

// Lookup fetches key from c and asserts it to T. A nil cache always misses.
func Lookup[T any](c Cache, key interface{}) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}

	t, ok := v.(T)
	return t, ok
}
