// Package store holds the two mutable stores the evolve loop reads and
// writes each tick: the object store (tagged instances + untagged
// pools) and the rule store (rules + their aggregate untagged demand).
// Each store guards its maps with a single sync.RWMutex.
package store

import (
	"sync"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/ordmap"
)

// ObjectStore holds tagged object instances and untagged pool counters,
// maintaining the invariant that amounts[T] == (sum of tagged instance
// amounts of T) + untaggedPool[T] for every type T.
type ObjectStore struct {
	mu            sync.RWMutex
	tagged        *ordmap.Map[objects.Tag, objects.Object]
	untaggedPool  *ordmap.Map[objects.Type, uint64]
	amounts       *ordmap.Map[objects.Type, uint64]
}

// NewObjectStore creates an empty object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		tagged:       ordmap.New[objects.Tag, objects.Object](),
		untaggedPool: ordmap.New[objects.Type, uint64](),
		amounts:      ordmap.New[objects.Type, uint64](),
	}
}

func (s *ObjectStore) addAmount(t objects.Type, delta uint64) {
	cur, _ := s.amounts.Get(t)
	s.amounts.Set(t, cur+delta)
}

func (s *ObjectStore) subAmount(t objects.Type, delta uint64) {
	cur, _ := s.amounts.Get(t)
	if delta > cur {
		delta = cur
	}
	s.amounts.Set(t, cur-delta)
}

// Contains reports whether tag names a tagged instance.
func (s *ObjectStore) Contains(tag objects.Tag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagged.Contains(tag)
}

// Get returns the tagged instance at tag, for reading.
func (s *ObjectStore) Get(tag objects.Tag) (objects.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagged.Get(tag)
}

// Insert stores obj at tag, adjusting the per-type amount counter. If a
// prior entry existed at tag its amount is subtracted first, so the
// counter update and the instance swap are atomic with respect to any
// reader holding the store's lock. Returns the replaced object, if any.
func (s *ObjectStore) Insert(tag objects.Tag, obj objects.Object) (replaced objects.Object, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.tagged.Get(tag); ok {
		s.subAmount(prev.ObjType(), prev.Amount())
		s.tagged.Set(tag, obj)
		s.addAmount(obj.ObjType(), obj.Amount())
		return prev, true
	}
	s.tagged.Set(tag, obj)
	s.addAmount(obj.ObjType(), obj.Amount())
	return nil, false
}

// Remove deletes the tagged instance at tag, adjusting the per-type
// amount counter. Returns the removed object, if any.
func (s *ObjectStore) Remove(tag objects.Tag) (objects.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.tagged.Delete(tag)
	if !ok {
		return nil, false
	}
	s.subAmount(obj.ObjType(), obj.Amount())
	return obj, true
}

// BatchGetStrict resolves each tag in order, preserving position: a
// missing tag yields a nil/false slot instead of being dropped.
func (s *ObjectStore) BatchGetStrict(tags []objects.Tag) []objects.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]objects.Object, len(tags))
	for i, t := range tags {
		if o, ok := s.tagged.Get(t); ok {
			out[i] = o
		}
	}
	return out
}

// BatchGetSkip resolves each tag, omitting tags that are absent —
// the returned slice is compacted and may be shorter than tags.
func (s *ObjectStore) BatchGetSkip(tags []objects.Tag) []objects.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]objects.Object, 0, len(tags))
	for _, t := range tags {
		if o, ok := s.tagged.Get(t); ok {
			out = append(out, o)
		}
	}
	return out
}

// BatchRemoveStrict removes each tag in order, preserving position.
func (s *ObjectStore) BatchRemoveStrict(tags []objects.Tag) []objects.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]objects.Object, len(tags))
	for i, t := range tags {
		if obj, ok := s.tagged.Delete(t); ok {
			s.subAmount(obj.ObjType(), obj.Amount())
			out[i] = obj
		}
	}
	return out
}

// BatchRemoveSkip removes each tag, omitting tags that were absent.
func (s *ObjectStore) BatchRemoveSkip(tags []objects.Tag) []objects.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]objects.Object, 0, len(tags))
	for _, t := range tags {
		if obj, ok := s.tagged.Delete(t); ok {
			s.subAmount(obj.ObjType(), obj.Amount())
			out = append(out, obj)
		}
	}
	return out
}

// IncreaseUntagged adds amount units of t's untagged pool.
func (s *ObjectStore) IncreaseUntagged(t objects.Type, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := s.untaggedPool.Get(t)
	s.untaggedPool.Set(t, cur+amount)
	s.addAmount(t, amount)
}

// DecreaseUntagged removes amount units from t's untagged pool. A
// decrease that would take the pool below zero is rejected without
// mutating anything; the caller logs the underflow and carries on.
func (s *ObjectStore) DecreaseUntagged(t objects.Type, amount uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := s.untaggedPool.Get(t)
	if amount > cur {
		return false
	}
	s.untaggedPool.Set(t, cur-amount)
	s.subAmount(t, amount)
	return true
}

// RemoveUntagged zeroes t's untagged pool unconditionally. The
// aggregate amount retains whatever tagged instances of t still
// contribute.
func (s *ObjectStore) RemoveUntagged(t objects.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, _ := s.untaggedPool.Get(t)
	if pool == 0 {
		return
	}
	s.subAmount(t, pool)
	s.untaggedPool.Set(t, 0)
}

// AmountOf returns the recorded total amount for t (tagged + untagged).
func (s *ObjectStore) AmountOf(t objects.Type) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.amounts.Get(t)
	return v
}

// UntaggedPoolOf returns the untagged-only portion of t's amount.
func (s *ObjectStore) UntaggedPoolOf(t objects.Type) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.untaggedPool.Get(t)
	return v
}

// Amounts returns a snapshot of every type's recorded total amount.
func (s *ObjectStore) Amounts() map[objects.Type]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[objects.Type]uint64, s.amounts.Len())
	s.amounts.Range(func(t objects.Type, v uint64) bool {
		out[t] = v
		return true
	})
	return out
}

// PositionOf returns a type's insertion-order index among types that
// have ever had an amount recorded.
func (s *ObjectStore) PositionOf(t objects.Type) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amounts.PositionOf(t)
}

// Iter calls f for every tagged instance, stopping early if f returns
// false. f must not call back into the store — it is invoked under
// the store's read lock.
func (s *ObjectStore) Iter(f func(tag objects.Tag, obj objects.Object) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.tagged.Range(f)
}

// TagsOfType returns the tags of every tagged instance whose type is t
// and whose tag is not present in exclude. Used by the conflict
// analyser to sample rand_tagged candidates.
func (s *ObjectStore) TagsOfType(t objects.Type, exclude map[objects.Tag]struct{}) []objects.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []objects.Tag
	s.tagged.Range(func(tag objects.Tag, obj objects.Object) bool {
		if obj.ObjType() != t {
			return true
		}
		if _, skip := exclude[tag]; skip {
			return true
		}
		out = append(out, tag)
		return true
	})
	return out
}

// Len returns the number of tagged instances.
func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagged.Len()
}
