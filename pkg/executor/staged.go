package executor

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// AmountDelta is one IncreaseUntagged/DecreaseUntagged op captured
// during effect-list interpretation, staged for the commit pass.
type AmountDelta struct {
	Type   objects.Type
	Amount uint64
}

// StagedMutation buffers one descriptor's effect-list output before it
// is committed to the store. Nothing here touches the store directly —
// that is the point of staging: the parallel pass's second stage only
// ever reads.
type StagedMutation struct {
	ToAdd    []objects.Object
	ToRemove []objects.Tag
	ToIncr   []AmountDelta
	ToDecr   []AmountDelta
	// RemoveUntaggedTypes lists RemoveUntagged(T) ops, applied after
	// ToDecr/ToIncr in the same order the effect list declared them.
	RemoveUntaggedTypes []objects.Type
}
