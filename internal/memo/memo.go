// Package memo provides a lazily populated value table keyed by field
// identifiers, with selective eviction.
//
// A Table is not safe for concurrent use. Compute functions may read other
// keys of the same table.
package memo

// Table holds computed values until they are evicted.
type Table[K comparable] struct {
	values map[K]any
}

// New returns an empty table.
func New[K comparable]() *Table[K] {
	return &Table[K]{values: make(map[K]any)}
}

// Get returns the cached value for key, computing and storing it on first use.
func Get[K comparable, T any](t *Table[K], key K, compute func() T) T {
	if v, ok := t.values[key]; ok {
		return v.(T)
	}
	v := compute()
	t.values[key] = v
	return v
}

// Has reports whether key currently holds a value.
func (t *Table[K]) Has(key K) bool {
	_, ok := t.values[key]
	return ok
}

// Evict removes every key for which match returns true and returns how many
// were removed.
func (t *Table[K]) Evict(match func(K) bool) int {
	n := 0
	for key := range t.values {
		if match(key) {
			delete(t.values, key)
			n++
		}
	}
	return n
}

// Reset removes every value.
func (t *Table[K]) Reset() {
	clear(t.values)
}

// Len returns the number of cached values.
func (t *Table[K]) Len() int {
	return len(t.values)
}
