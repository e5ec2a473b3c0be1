package builtin

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// GenericTypeName is the runtime type name every Generic object reports.
const GenericTypeName = "Generic"

// Generic is a tagged object carrying an opaque payload a scenario
// doesn't need to typecheck against — the counterpart to Num for
// scenarios that just need to move some data between rules without
// the engine caring what shape it is.
type Generic struct {
	Tag     objects.Tag
	Payload any
}

func (g *Generic) ObjTag() objects.Tag { return g.Tag }
func (g *Generic) ObjType() objects.Type {
	return objects.Type{Name: GenericTypeName, Group: objects.GroupNormal}
}
func (g *Generic) Amount() uint64 { return 1 }
func (g *Generic) As() any        { return g }

// NewGeneric creates a Generic object wrapping payload.
func NewGeneric(tag objects.Tag, payload any) *Generic {
	return &Generic{Tag: tag, Payload: payload}
}
