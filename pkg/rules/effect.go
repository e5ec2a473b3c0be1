package rules

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// Op is one operation in an effect list. The set of implementations
// is closed; the effect-list interpreter (pkg/executor) type-switches
// over them.
type Op interface{ isEffectOp() }

// CreateObj calls F to produce one new tagged object.
type CreateObj struct{ F func(*ResolvedObjects) objects.Object }

// CreateObjs calls F to produce zero or more new tagged objects.
type CreateObjs struct{ F func(*ResolvedObjects) []objects.Object }

// RemoveObj calls F to compute the tag of an object to remove.
type RemoveObj struct{ F func(*ResolvedObjects) objects.Tag }

// RemoveObjs calls F to compute zero or more tags to remove.
type RemoveObjs struct{ F func(*ResolvedObjects) []objects.Tag }

// IncreaseUntagged adds Amount units of Type to the untagged pool.
type IncreaseUntagged struct {
	Type   objects.Type
	Amount uint64
}

// DecreaseUntagged removes Amount units of Type from the untagged pool.
type DecreaseUntagged struct {
	Type   objects.Type
	Amount uint64
}

// RemoveUntagged zeroes the untagged pool for Type.
type RemoveUntagged struct{ Type objects.Type }

// Stop sets the engine's shared halt flag.
type Stop struct{}

// Pause requests the membrane pause after this tick. Reserved; a no-op
// in this core.
type Pause struct{}

// DissolveMem is reserved for the hierarchical orchestration layer this
// core does not implement. A no-op here.
type DissolveMem struct{}

func (CreateObj) isEffectOp()        {}
func (CreateObjs) isEffectOp()       {}
func (RemoveObj) isEffectOp()        {}
func (RemoveObjs) isEffectOp()       {}
func (IncreaseUntagged) isEffectOp() {}
func (DecreaseUntagged) isEffectOp() {}
func (RemoveUntagged) isEffectOp()   {}
func (Stop) isEffectOp()             {}
func (Pause) isEffectOp()            {}
func (DissolveMem) isEffectOp()      {}

// Effect is an ordered list of operations a rule performs once applied.
type Effect []Op
