package rules

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// ConditionBuilder assembles a Condition declaratively. The use-mode
// setters (ByRef, ByTake, ByTag, NoUse) apply to the most recently
// added tagged demand; calling one before any tagged demand exists is
// a no-op.
type ConditionBuilder struct {
	c Condition

	// lastGroup counts the trailing tagged demands a SomeTagged call
	// added, so a following use-mode setter covers the whole group
	// instead of just the last entry.
	lastGroup int
}

// NewCondition starts an empty condition.
func NewCondition() *ConditionBuilder {
	return &ConditionBuilder{}
}

// SomeUntagged demands amount units of t from the untagged pool.
func (b *ConditionBuilder) SomeUntagged(t objects.Type, amount uint64) *ConditionBuilder {
	b.c.Untagged = append(b.c.Untagged, UntaggedDemand{Type: t, Amount: amount})
	return b
}

// TakeUntagged demands amount units of t and consumes them on
// application instead of merely requiring their presence.
func (b *ConditionBuilder) TakeUntagged(t objects.Type, amount uint64) *ConditionBuilder {
	b.c.Untagged = append(b.c.Untagged, UntaggedDemand{Type: t, Amount: amount, Take: true})
	return b
}

// TheTagged demands the object at exactly tag. Use-mode defaults to
// None until one of the setters overrides it.
func (b *ConditionBuilder) TheTagged(tag objects.Tag) *ConditionBuilder {
	b.c.Tagged = append(b.c.Tagged, TaggedDemand{Kind: DemandSpecificTag, Tag: tag})
	b.lastGroup = 0
	return b
}

// SomeTagged demands each of tags specifically, all sharing whatever
// use-mode setter follows.
func (b *ConditionBuilder) SomeTagged(tags ...objects.Tag) *ConditionBuilder {
	for _, t := range tags {
		b.c.Tagged = append(b.c.Tagged, TaggedDemand{Kind: DemandSpecificTag, Tag: t})
	}
	b.lastGroup = len(tags)
	return b
}

// RandTagged demands k distinct objects of type t, sampled uniformly
// at analysis time.
func (b *ConditionBuilder) RandTagged(t objects.Type, k int) *ConditionBuilder {
	b.c.Tagged = append(b.c.Tagged, TaggedDemand{Kind: DemandRandomTags, RandType: t, RandK: k})
	b.lastGroup = 0
	return b
}

func (b *ConditionBuilder) setMode(m UseMode) *ConditionBuilder {
	n := b.lastGroup
	if n == 0 {
		n = 1
	}
	for i := len(b.c.Tagged) - n; i < len(b.c.Tagged); i++ {
		if i >= 0 {
			b.c.Tagged[i].UseMode = m
		}
	}
	b.lastGroup = 0
	return b
}

// ByRef exposes the preceding tagged demand to the effect function as
// a borrowed object.
func (b *ConditionBuilder) ByRef() *ConditionBuilder { return b.setMode(UseRef) }

// ByTake moves the preceding tagged demand's object out of the store
// and into the effect function.
func (b *ConditionBuilder) ByTake() *ConditionBuilder { return b.setMode(UseTake) }

// ByTag exposes only the preceding tagged demand's tag.
func (b *ConditionBuilder) ByTag() *ConditionBuilder { return b.setMode(UseTag) }

// NoUse checks the preceding tagged demand's presence without exposing
// anything to the effect function.
func (b *ConditionBuilder) NoUse() *ConditionBuilder { return b.setMode(UseNone) }

// Build returns the assembled condition.
func (b *ConditionBuilder) Build() Condition { return b.c }

// EffectBuilder assembles an Effect list in declaration order.
type EffectBuilder struct {
	e Effect
}

// NewEffect starts an empty effect list.
func NewEffect() *EffectBuilder {
	return &EffectBuilder{}
}

// AddOp appends an already-constructed operation.
func (b *EffectBuilder) AddOp(op Op) *EffectBuilder {
	b.e = append(b.e, op)
	return b
}

// CreateObj appends an operation that calls f to produce one object.
func (b *EffectBuilder) CreateObj(f func(*ResolvedObjects) objects.Object) *EffectBuilder {
	return b.AddOp(CreateObj{F: f})
}

// CreateObjs appends an operation that calls f to produce many objects.
func (b *EffectBuilder) CreateObjs(f func(*ResolvedObjects) []objects.Object) *EffectBuilder {
	return b.AddOp(CreateObjs{F: f})
}

// RemoveObj appends an operation that calls f for one tag to remove.
func (b *EffectBuilder) RemoveObj(f func(*ResolvedObjects) objects.Tag) *EffectBuilder {
	return b.AddOp(RemoveObj{F: f})
}

// RemoveObjs appends an operation that calls f for tags to remove.
func (b *EffectBuilder) RemoveObjs(f func(*ResolvedObjects) []objects.Tag) *EffectBuilder {
	return b.AddOp(RemoveObjs{F: f})
}

// IncreaseUntagged appends a pool increase of amount units of t.
func (b *EffectBuilder) IncreaseUntagged(t objects.Type, amount uint64) *EffectBuilder {
	return b.AddOp(IncreaseUntagged{Type: t, Amount: amount})
}

// DecreaseUntagged appends a pool decrease of amount units of t.
func (b *EffectBuilder) DecreaseUntagged(t objects.Type, amount uint64) *EffectBuilder {
	return b.AddOp(DecreaseUntagged{Type: t, Amount: amount})
}

// StopMem appends a Stop, halting the membrane after the tick commits.
func (b *EffectBuilder) StopMem() *EffectBuilder {
	return b.AddOp(Stop{})
}

// Build returns the assembled effect list.
func (b *EffectBuilder) Build() Effect { return b.e }
