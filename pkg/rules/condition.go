// Package rules defines a rule's demand (Condition) and action (Effect)
// side, plus the Rule object itself and the resolved-object view effect
// functions receive when their rule runs.
package rules

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// UseMode declares how a demanded tagged object is exposed to an
// effect function.
type UseMode int

const (
	UseNone UseMode = iota
	UseTag
	UseRef
	UseTake
)

func (m UseMode) String() string {
	switch m {
	case UseNone:
		return "None"
	case UseTag:
		return "Tag"
	case UseRef:
		return "Ref"
	case UseTake:
		return "Take"
	default:
		return "Unknown"
	}
}

// UntaggedDemand asks for amount units of Type from the untagged pool.
// Take marks the amount as consumed (decremented) rather than merely
// checked for availability.
type UntaggedDemand struct {
	Type   objects.Type
	Amount uint64
	Take   bool
}

// TaggedKind distinguishes a demand for one specific tag from a demand
// for k tags sampled uniformly at random from a type.
type TaggedKind int

const (
	DemandSpecificTag TaggedKind = iota
	DemandRandomTags
)

// TaggedDemand is one entry in a condition's ordered tagged-demand list.
type TaggedDemand struct {
	Kind TaggedKind

	// Used when Kind == DemandSpecificTag.
	Tag objects.Tag

	// Used when Kind == DemandRandomTags.
	RandType objects.Type
	RandK    int

	UseMode UseMode
}

// Condition is a rule's demand: what must hold for the rule to be a
// candidate for application this tick.
type Condition struct {
	Untagged []UntaggedDemand
	Tagged   []TaggedDemand
}

// SkipTake reports whether no demand in this condition uses UseTake —
// an optimisation hint so the effect executor's parallel pre-pass can
// skip a rule entirely instead of pre-removing nothing.
func (c Condition) SkipTake() bool {
	for _, u := range c.Untagged {
		if u.Take {
			return false
		}
	}
	for _, t := range c.Tagged {
		if t.UseMode == UseTake {
			return false
		}
	}
	return true
}

// RandomDemandCount returns how many DemandRandomTags entries this
// condition declares, in order — the width of the random-selections
// queue an executable descriptor must carry.
func (c Condition) RandomDemandCount() int {
	n := 0
	for _, t := range c.Tagged {
		if t.Kind == DemandRandomTags {
			n++
		}
	}
	return n
}
