// Package conflict implements the per-tick conflict-analysis pass:
// classifying every currently-registered rule into a parallel-safe
// subset, a sequential (conflicting) subset, or silently dropping it as
// not-applicable this tick.
//
// Two rules conflict when their chosen tag sets overlap, or when the
// aggregate untagged demand on some type exceeds what the store holds.
// Rules that collide on a tag are both moved to the sequential subset,
// so neither permanently wins the contended object; the sequential
// pass's shuffle then decides per tick.
package conflict

import (
	"math/rand"
	"sync"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
	"github.com/sanketsaagar/membrane-sim/pkg/store"
)

// Mode selects one of the algorithm's skeleton variants: the general
// pass, or an optimisation used when the rule population is statically
// known to be tagged-only, untagged-only, or never safe to
// parallelise.
type Mode int

const (
	ModeGeneral Mode = iota
	ModeTaggedOnly
	ModeUntaggedOnly
	ModeNoParallel
)

// Result is the analyser's per-tick output: two ordered lists of
// executable descriptors. A third, implicit set — rules that turned
// out not applicable this tick — is simply omitted from both.
type Result struct {
	Parallel    []rules.Descriptor
	Conflicting []rules.Descriptor
}

// Analyser runs the conflict-analysis pass. It owns the only source of
// randomness the pass uses (rand_tagged sampling); given a fixed seed,
// Analyse is deterministic.
type Analyser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an analyser seeded for deterministic random-tags sampling.
func New(seed int64) *Analyser {
	return &Analyser{rng: rand.New(rand.NewSource(seed))}
}

type candidate struct {
	pos              int
	tag              objects.Tag
	cond             rules.Condition
	eff              rules.Effect
	chosen           map[objects.Tag]struct{}
	randomSelections [][]objects.Tag
}

// Analyse classifies every rule in objStore/ruleStore. objStore and
// ruleStore are only read, never mutated.
func (a *Analyser) Analyse(objStore *store.ObjectStore, ruleStore *store.RuleStore, mode Mode) Result {
	n := ruleStore.Len()
	released := make(map[objects.Type]uint64)
	var applicable []candidate

	// Step 1: per-rule applicability.
	for pos := 0; pos < n; pos++ {
		tag, ok := ruleStore.TagAt(pos)
		if !ok {
			continue
		}
		cond, _ := ruleStore.ConditionAt(pos)
		eff, _ := ruleStore.EffectAt(pos)

		if mode != ModeTaggedOnly {
			ok := true
			for _, u := range cond.Untagged {
				if objStore.AmountOf(u.Type) < u.Amount {
					ok = false
					break
				}
			}
			if !ok {
				for _, u := range cond.Untagged {
					released[u.Type] += u.Amount
				}
				continue
			}
		}

		chosen := make(map[objects.Tag]struct{})
		var randomSelections [][]objects.Tag
		failed := false
		if mode != ModeUntaggedOnly {
		tagLoop:
			for _, td := range cond.Tagged {
				switch td.Kind {
				case rules.DemandSpecificTag:
					if !objStore.Contains(td.Tag) {
						failed = true
						break tagLoop
					}
					chosen[td.Tag] = struct{}{}
				case rules.DemandRandomTags:
					candidates := objStore.TagsOfType(td.RandType, chosen)
					if len(candidates) < td.RandK {
						failed = true
						break tagLoop
					}
					sel := a.sample(candidates, td.RandK)
					for _, t := range sel {
						chosen[t] = struct{}{}
					}
					randomSelections = append(randomSelections, sel)
				}
			}
		}
		if failed {
			continue
		}

		applicable = append(applicable, candidate{
			pos: pos, tag: tag, cond: cond, eff: eff,
			chosen: chosen, randomSelections: randomSelections,
		})
	}

	if mode == ModeNoParallel {
		conflicting := make([]rules.Descriptor, 0, len(applicable))
		for _, c := range applicable {
			conflicting = append(conflicting, toDescriptor(c))
		}
		return Result{Conflicting: conflicting}
	}

	conflicted := make(map[int]struct{})

	// Step 2: tagged conflict detection.
	if mode != ModeUntaggedOnly {
		type firstSeen struct{ pos int }
		used := make(map[objects.Tag]firstSeen)
		for _, c := range applicable {
			for t := range c.chosen {
				if first, ok := used[t]; ok {
					conflicted[c.pos] = struct{}{}
					conflicted[first.pos] = struct{}{}
				} else {
					used[t] = firstSeen{pos: c.pos}
				}
			}
		}
	}

	// Step 3: untagged conflict detection.
	if mode != ModeTaggedOnly {
		conflictTypes := make(map[objects.Type]struct{})
		for t, total := range ruleStore.DemandTable() {
			if total > objStore.AmountOf(t)+released[t] {
				conflictTypes[t] = struct{}{}
			}
		}
		if len(conflictTypes) > 0 {
			for _, c := range applicable {
				if _, already := conflicted[c.pos]; already {
					continue
				}
				for _, u := range c.cond.Untagged {
					if _, bad := conflictTypes[u.Type]; bad {
						conflicted[c.pos] = struct{}{}
						break
					}
				}
			}
		}
	}

	// Step 4: partition, preserving rule-store order in both lists.
	result := Result{}
	for _, c := range applicable {
		d := toDescriptor(c)
		if _, bad := conflicted[c.pos]; bad {
			result.Conflicting = append(result.Conflicting, d)
		} else {
			result.Parallel = append(result.Parallel, d)
		}
	}
	return result
}

func toDescriptor(c candidate) rules.Descriptor {
	return rules.Descriptor{
		RulePos:          c.pos,
		Tag:              c.tag,
		Condition:        c.cond,
		Effect:           c.eff,
		SkipTake:         c.cond.SkipTake(),
		RandomSelections: c.randomSelections,
	}
}

// sample draws k distinct elements uniformly at random from candidates
// without replacement, via an index shuffle.
func (a *Analyser) sample(candidates []objects.Tag, k int) []objects.Tag {
	if k <= 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}
	a.rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	out := make([]objects.Tag, k)
	for i := 0; i < k; i++ {
		out[i] = candidates[idx[i]]
	}
	return out
}
