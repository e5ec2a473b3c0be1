// Package executor is the effect-application pass: given the conflict
// analyser's two descriptor lists, it resolves each rule's demanded
// objects and applies its effect list to the object store.
//
// RunParallel works in three stages: a single-threaded Take pre-pass,
// an errgroup fan-out that stages mutations without touching the
// store, and a single-threaded commit. RunSequential handles the
// conflicting subset one rule at a time with re-verification.
package executor

import (
	"context"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
	"github.com/sanketsaagar/membrane-sim/pkg/store"
	"github.com/sanketsaagar/membrane-sim/pkg/telemetry"
)

// Executor applies resolved effect lists against a single object store.
type Executor struct {
	store  *store.ObjectStore
	halt   *HaltFlag
	logger telemetry.Logger

	created atomic.Uint64
	removed atomic.Uint64
}

// Stats is a running tally of objects this executor has committed.
type Stats struct {
	Created uint64
	Removed uint64
}

// Stats returns the cumulative count of objects added/removed across
// every commit this executor has made.
func (e *Executor) Stats() Stats {
	return Stats{Created: e.created.Load(), Removed: e.removed.Load()}
}

// NewExecutor creates an Executor bound to store and halt. A nil logger
// is replaced with telemetry.NoopLogger{}.
func NewExecutor(st *store.ObjectStore, halt *HaltFlag, logger telemetry.Logger) *Executor {
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	return &Executor{store: st, halt: halt, logger: logger}
}

// RunParallel applies the parallel-safe descriptor subset in three
// passes: a single-threaded Take pre-pass, a concurrent resolve+stage
// pass that never touches the store, and a single-threaded commit pass
// applied in rule-store order. descs is mutated in place (TakeSet,
// TakeRand, Aborted).
func (e *Executor) RunParallel(ctx context.Context, descs []rules.Descriptor) error {
	for i := range descs {
		d := &descs[i]
		if d.SkipTake {
			continue
		}
		if !e.preTake(d) {
			e.logger.Errorf(telemetry.CategoryExceptions, "rule %x: take-demanded object missing at pre-pass, skipping", d.Tag)
			d.Aborted = true
		}
	}

	staged := make([]StagedMutation, len(descs))
	g, _ := errgroup.WithContext(ctx)
	for i := range descs {
		i := i
		if descs[i].Aborted {
			continue
		}
		g.Go(func() error {
			d := &descs[i]
			resolved, missing := resolveForParallel(d, e.store)
			if len(missing) > 0 {
				e.logger.Errorf(telemetry.CategoryExceptions, "rule %x: missing object %x at resolve, skipping", d.Tag, missing[0])
				d.Aborted = true
				return nil
			}
			mutation, ok := e.safeInterpret(d.Effect, resolved, d.Tag)
			if !ok {
				d.Aborted = true
				return nil
			}
			staged[i] = mutation
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range descs {
		if descs[i].Aborted {
			continue
		}
		e.commit(staged[i])
	}
	return nil
}

// RunSequential applies the conflicting descriptor subset one at a
// time, in an order drawn from rng so no rule starves across ticks.
// Each rule's applicability is re-verified against the current store
// before it resolves and commits: an earlier rule in the pass may have
// consumed objects a later one needs, in which case the later rule is
// silently skipped. Every still-applicable rule runs even after one
// of them raises the halt flag; the tick completes as a unit.
func (e *Executor) RunSequential(descs []rules.Descriptor, rng *rand.Rand) {
	order := rng.Perm(len(descs))
	for _, idx := range order {
		d := &descs[idx]
		resolved, ok := verifyAndResolveSequential(d, e.store)
		if !ok {
			continue
		}
		e.removed.Add(uint64(takeCount(d.Condition)))
		mutation, ok := e.safeInterpret(d.Effect, resolved, d.Tag)
		if ok {
			e.commit(mutation)
		}
	}
}

// safeInterpret runs interpretEffect, recovering any panic an effect
// function raises. A panicking rule poisons the halt flag, and its
// staged mutation is discarded entirely rather than partially
// committed: whatever interpretEffect built up to the point of the
// panic cannot be trusted.
func (e *Executor) safeInterpret(eff rules.Effect, resolved *rules.ResolvedObjects, tag objects.Tag) (mutation StagedMutation, ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf(telemetry.CategoryExceptions, "rule %x: effect function panicked: %v", tag, r)
			e.halt.Poison()
			mutation = StagedMutation{}
			ok = false
		}
	}()
	mutation = interpretEffect(eff, resolved, e.halt)
	return mutation, ok
}

// preTake removes every Take-mode object a descriptor's condition
// demands, verifying all are still present before removing any — a
// partial pre-take would strand objects outside the store if a later
// demand in the same rule turned out missing.
func (e *Executor) preTake(d *rules.Descriptor) bool {
	for _, td := range d.Condition.Tagged {
		if td.Kind == rules.DemandSpecificTag && td.UseMode == rules.UseTake {
			if !e.store.Contains(td.Tag) {
				return false
			}
		}
	}
	randIdx := 0
	for _, td := range d.Condition.Tagged {
		if td.Kind != rules.DemandRandomTags {
			continue
		}
		if td.UseMode == rules.UseTake {
			for _, t := range d.RandomSelections[randIdx] {
				if !e.store.Contains(t) {
					return false
				}
			}
		}
		randIdx++
	}
	for _, u := range d.Condition.Untagged {
		if u.Take && e.store.UntaggedPoolOf(u.Type) < u.Amount {
			return false
		}
	}

	d.TakeSet = make(map[objects.Tag]objects.Object)
	for _, td := range d.Condition.Tagged {
		if td.Kind == rules.DemandSpecificTag && td.UseMode == rules.UseTake {
			obj, _ := e.store.Remove(td.Tag)
			d.TakeSet[td.Tag] = obj
			e.removed.Add(1)
		}
	}
	d.TakeRand = make([][]objects.Object, d.Condition.RandomDemandCount())
	randIdx = 0
	for _, td := range d.Condition.Tagged {
		if td.Kind != rules.DemandRandomTags {
			continue
		}
		if td.UseMode == rules.UseTake {
			tags := d.RandomSelections[randIdx]
			objs := make([]objects.Object, len(tags))
			for i, t := range tags {
				objs[i], _ = e.store.Remove(t)
				e.removed.Add(1)
			}
			d.TakeRand[randIdx] = objs
		}
		randIdx++
	}
	for _, u := range d.Condition.Untagged {
		if u.Take {
			e.store.DecreaseUntagged(u.Type, u.Amount)
			e.removed.Add(u.Amount)
		}
	}
	return true
}

// commit applies one staged mutation in a fixed order: removals before
// additions, so a rule that removes and re-creates the same tag lands
// on the new instance, then untagged decreases, increases, and
// whole-pool clears last.
func (e *Executor) commit(m StagedMutation) {
	for _, tag := range m.ToRemove {
		if _, ok := e.store.Remove(tag); ok {
			e.removed.Add(1)
		}
	}
	for _, obj := range m.ToAdd {
		e.store.Insert(obj.ObjTag(), obj)
		e.created.Add(1)
	}
	for _, d := range m.ToDecr {
		if !e.store.DecreaseUntagged(d.Type, d.Amount) {
			e.logger.Errorf(telemetry.CategoryExceptions, "untagged decrease of %d %s underflowed, rejected", d.Amount, d.Type.Name)
		}
	}
	for _, d := range m.ToIncr {
		e.store.IncreaseUntagged(d.Type, d.Amount)
	}
	for _, t := range m.RemoveUntaggedTypes {
		e.store.RemoveUntagged(t)
	}
}
