package idgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextIsUnique(t *testing.T) {
	g := New("rule-1")
	a := g.Next()
	b := g.Next()
	require.NotEqual(t, a, b)
}

func TestDifferentLabelsDontCollide(t *testing.T) {
	g1 := New("a")
	g2 := New("b")
	require.NotEqual(t, g1.Next(), g2.Next())
}

func TestNextNCount(t *testing.T) {
	g := New("batch")
	tags := g.NextN(5)
	require.Len(t, tags, 5)
	seen := make(map[[32]byte]bool)
	for _, tg := range tags {
		seen[tg] = true
	}
	require.Len(t, seen, 5)
}
