// Package builtin supplies ready-made object kinds — a numeric object
// and an opaque-payload object — plus the send/receive rule preset
// built on pkg/channel.
package builtin

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// NumTypeName is the runtime type name every Num object reports.
const NumTypeName = "Num"

// Num is a tagged object whose payload is a single counter value —
// the numeric-payload object every membrane-computing toy scenario
// needs (token counts, generation counters, scenario-specific tallies).
type Num struct {
	Tag   objects.Tag
	Value int64
}

func (n *Num) ObjTag() objects.Tag   { return n.Tag }
func (n *Num) ObjType() objects.Type { return objects.Type{Name: NumTypeName, Group: objects.GroupNormal} }
func (n *Num) Amount() uint64        { return 1 }
func (n *Num) As() any               { return n }

// NewNum creates a Num object holding value.
func NewNum(tag objects.Tag, value int64) *Num {
	return &Num{Tag: tag, Value: value}
}
