// Package ordmap provides an insertion-indexed map: a hash lookup that
// also supports positional access, used by the object and rule stores
// to give conflict analysis a stable, deterministic iteration order.
//
// Map is not safe for concurrent use on its own; callers (ObjectStore,
// RuleStore) hold their own mutex around it.
package ordmap

// Map is an insertion-ordered mapping from K to V.
type Map[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: make(map[K]int)}
}

// Get returns the value stored at k, if any.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if i, ok := m.index[k]; ok {
		return m.vals[i], true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is present.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Set inserts or overwrites the value at k, preserving k's existing
// position if it was already present. It reports the previous value
// and whether one existed.
func (m *Map[K, V]) Set(k K, v V) (old V, existed bool) {
	if i, ok := m.index[k]; ok {
		old = m.vals[i]
		m.vals[i] = v
		return old, true
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	var zero V
	return zero, false
}

// Delete removes k, compacting the backing slices and reindexing every
// key that shifted. It reports the removed value and whether k was
// present.
func (m *Map[K, V]) Delete(k K) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	old := m.vals[i]
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return old, true
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return len(m.keys) }

// At returns the key/value pair at position i.
func (m *Map[K, V]) At(i int) (K, V, bool) {
	if i < 0 || i >= len(m.keys) {
		var k K
		var v V
		return k, v, false
	}
	return m.keys[i], m.vals[i], true
}

// PositionOf returns k's insertion-order index.
func (m *Map[K, V]) PositionOf(k K) (int, bool) {
	i, ok := m.index[k]
	return i, ok
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns a copy of the values in insertion order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, len(m.vals))
	copy(out, m.vals)
	return out
}

// Range calls f for every entry in insertion order, stopping early if f
// returns false.
func (m *Map[K, V]) Range(f func(k K, v V) bool) {
	for i, k := range m.keys {
		if !f(k, m.vals[i]) {
			return
		}
	}
}
