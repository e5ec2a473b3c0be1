package rules

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// RuleTypeName is the runtime type name every Rule object reports
// through ObjType; its group is always objects.GroupRule.
const RuleTypeName = "Rule"

// Rule is a triple (tag, Condition, Effect). Rules are themselves
// typed objects with group = Rule, so a rule store doubles as an
// object store keyed by rule tag.
type Rule struct {
	Tag       objects.Tag
	Condition Condition
	Effect    Effect
}

func (r *Rule) ObjTag() objects.Tag { return r.Tag }
func (r *Rule) ObjType() objects.Type {
	return objects.Type{Name: RuleTypeName, Group: objects.GroupRule}
}
func (r *Rule) Amount() uint64 { return 1 }
func (r *Rule) As() any        { return r }

// Descriptor is a per-tick snapshot of one applicable rule: its
// position in rule-store insertion order (so applying it never
// re-randomises), the random tags the analyser already sampled for it,
// and — once the parallel executor's pre-pass has run — the objects it
// pre-took.
type Descriptor struct {
	RulePos   int
	Tag       objects.Tag
	Condition Condition
	Effect    Effect
	SkipTake  bool

	// RandomSelections holds, per DemandRandomTags entry in condition
	// order, the tags the analyser sampled for it.
	RandomSelections [][]objects.Tag

	// TakeSet/TakeRand are filled by the parallel executor's first pass
	// for descriptors that are not SkipTake. TakeSet holds specific-tag
	// Take objects keyed by tag; TakeRand holds, per random-tags group,
	// the Take-mode objects removed from the store.
	TakeSet  map[objects.Tag]objects.Object
	TakeRand [][]objects.Object

	// Aborted is set by the executor if a pre-computed tag turned out
	// missing at resolution time; the descriptor is skipped rather
	// than run.
	Aborted bool
}
