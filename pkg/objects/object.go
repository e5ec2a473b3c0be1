// Package objects defines the membrane engine's type-erased object model:
// the tagged/untagged unit every rule demands, produces, and consumes.
package objects

import "github.com/ethereum/go-ethereum/common"

// Tag is the hash/equality key that addresses a tagged object instance.
// It is unique among tagged objects within one membrane; callers (the
// identifier generator, see pkg/idgen) are responsible for not handing
// out duplicates.
type Tag = common.Hash

// Group classifies an object's runtime type alongside its type name.
type Group int

const (
	GroupNormal Group = iota
	GroupRule
	GroupMembrane
	GroupCom
	GroupLog
)

func (g Group) String() string {
	switch g {
	case GroupNormal:
		return "Normal"
	case GroupRule:
		return "Rule"
	case GroupMembrane:
		return "Membrane"
	case GroupCom:
		return "Com"
	case GroupLog:
		return "Log"
	default:
		return "Unknown"
	}
}

// Type is an object's runtime type identity: a name plus the group it
// belongs to. Two objects share a type iff both fields match.
type Type struct {
	Name  string
	Group Group
}

// Object is anything the store can hold: a tagged instance or the
// conceptual unit counted by an untagged pool. Amount is 1 for every
// tagged instance; untagged pools track amount only in the store, not
// per-object.
type Object interface {
	ObjTag() Tag
	ObjType() Type
	Amount() uint64
	// As returns the concrete value behind the interface, for callers
	// that need to downcast via a type assertion or the As generic helper.
	As() any
}

// As downcasts o to its concrete variant T.
func As[T any](o Object) (T, bool) {
	v, ok := o.As().(T)
	return v, ok
}
