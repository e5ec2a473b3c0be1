package store

import (
	"sync"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/ordmap"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
)

// RuleStore holds rules keyed by tag, in insertion order, alongside an
// aggregate per-type untagged-demand table so the conflict analyser can
// detect over-subscription in O(types) instead of O(rules x types).
type RuleStore struct {
	mu     sync.RWMutex
	rules  *ordmap.Map[objects.Tag, *rules.Rule]
	demand *ordmap.Map[objects.Type, uint64]
}

// NewRuleStore creates an empty rule store.
func NewRuleStore() *RuleStore {
	return &RuleStore{
		rules:  ordmap.New[objects.Tag, *rules.Rule](),
		demand: ordmap.New[objects.Type, uint64](),
	}
}

func (rs *RuleStore) addDemand(r *rules.Rule) {
	for _, u := range r.Condition.Untagged {
		cur, _ := rs.demand.Get(u.Type)
		rs.demand.Set(u.Type, cur+u.Amount)
	}
}

func (rs *RuleStore) subDemand(r *rules.Rule) {
	for _, u := range r.Condition.Untagged {
		cur, _ := rs.demand.Get(u.Type)
		if u.Amount > cur {
			cur = u.Amount
		}
		rs.demand.Set(u.Type, cur-u.Amount)
	}
}

// Insert adds or replaces the rule at tag, keeping the demand table in
// sync: a replaced rule's demand is subtracted before the new rule's is
// added. Returns whether a prior rule occupied tag.
func (rs *RuleStore) Insert(tag objects.Tag, r *rules.Rule) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if prev, ok := rs.rules.Get(tag); ok {
		rs.subDemand(prev)
		rs.rules.Set(tag, r)
		rs.addDemand(r)
		return true
	}
	rs.rules.Set(tag, r)
	rs.addDemand(r)
	return false
}

// Remove deletes the rule at tag, subtracting its untagged demand.
func (rs *RuleStore) Remove(tag objects.Tag) (*rules.Rule, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r, ok := rs.rules.Delete(tag)
	if !ok {
		return nil, false
	}
	rs.subDemand(r)
	return r, true
}

// Get returns the rule at tag.
func (rs *RuleStore) Get(tag objects.Tag) (*rules.Rule, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.rules.Get(tag)
}

// Len returns the number of registered rules.
func (rs *RuleStore) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.rules.Len()
}

// TagAt returns the tag of the rule at position pos.
func (rs *RuleStore) TagAt(pos int) (objects.Tag, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	t, _, ok := rs.rules.At(pos)
	return t, ok
}

// ConditionAt returns the condition of the rule at position pos.
func (rs *RuleStore) ConditionAt(pos int) (rules.Condition, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, r, ok := rs.rules.At(pos)
	if !ok {
		return rules.Condition{}, false
	}
	return r.Condition, true
}

// EffectAt returns the effect list of the rule at position pos.
func (rs *RuleStore) EffectAt(pos int) (rules.Effect, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, r, ok := rs.rules.At(pos)
	if !ok {
		return nil, false
	}
	return r.Effect, true
}

// DemandOf returns the aggregate untagged demand for type t summed
// across every currently registered rule.
func (rs *RuleStore) DemandOf(t objects.Type) uint64 {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	v, _ := rs.demand.Get(t)
	return v
}

// DemandTable returns a snapshot of the aggregate demand table.
func (rs *RuleStore) DemandTable() map[objects.Type]uint64 {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make(map[objects.Type]uint64, rs.demand.Len())
	rs.demand.Range(func(t objects.Type, v uint64) bool {
		out[t] = v
		return true
	})
	return out
}
