// Package idgen hands out fresh, collision-free tags for
// CreateObj/CreateObjs effect functions to stamp onto the objects they
// build. The engine core never mints tags itself; it assumes whatever
// tags it is given are unique, and duplicates are a caller error.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
)

// Generator mints unique tags by hashing a monotonically increasing
// counter alongside a caller-supplied label, so two generators seeded
// with different labels never collide even if their counters align.
type Generator struct {
	label   string
	counter atomic.Uint64
}

// New creates a Generator whose tags are namespaced under label —
// typically the membrane's own tag, or a rule's tag, so objects it
// creates are traceable to their origin.
func New(label string) *Generator {
	return &Generator{label: label}
}

// Next mints a fresh tag.
func (g *Generator) Next() objects.Tag {
	n := g.counter.Add(1)
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("%s:%d", g.label, n)))
}

// NextN mints n fresh tags.
func (g *Generator) NextN(n int) []objects.Tag {
	out := make([]objects.Tag, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
