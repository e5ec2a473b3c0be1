package scenario

import (
	"github.com/sanketsaagar/membrane-sim/pkg/builtin"
	"github.com/sanketsaagar/membrane-sim/pkg/channel"
	"github.com/sanketsaagar/membrane-sim/pkg/conflict"
	"github.com/sanketsaagar/membrane-sim/pkg/idgen"
	"github.com/sanketsaagar/membrane-sim/pkg/membrane"
	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
	"github.com/sanketsaagar/membrane-sim/pkg/telemetry"
)

var numType = objects.Type{Name: builtin.NumTypeName, Group: objects.GroupNormal}

// buildCreateAndStop: an empty membrane whose one rule creates an
// object and halts in the same tick.
func buildCreateAndStop(seed int64, params map[string]int, logger telemetry.Logger) (*Result, error) {
	m := membrane.New(tagFromByte(1), seed, logger)
	gen := idgen.New("create-and-stop")

	r1 := &rules.Rule{
		Tag: tagFromByte(2),
		Effect: rules.Effect{
			rules.CreateObj{F: func(*rules.ResolvedObjects) objects.Object {
				return builtin.NewNum(gen.Next(), int64(intParam(params, "value", 1)))
			}},
			rules.Stop{},
		},
	}

	if err := m.Init(nil, nil, []*rules.Rule{r1}); err != nil {
		return nil, err
	}
	return &Result{Membranes: map[string]*membrane.Membrane{"main": m}}, nil
}

// buildTaggedConflict: two rules both demand the same specific tag by
// Ref, so the analyser's tag-conflict pass puts both in the
// conflicting set (sequential execution) even though Ref never removes
// the shared object. Each also stops the membrane so the tick halts
// deterministically instead of re-matching forever.
func buildTaggedConflict(seed int64, params map[string]int, logger telemetry.Logger) (*Result, error) {
	m := membrane.New(tagFromByte(1), seed, logger)
	// Both rules demand only specific tags, never an untagged amount:
	// the population is statically tagged-only, so the analyser can
	// skip the untagged-demand phase entirely.
	m.SetMode(conflict.ModeTaggedOnly)
	a := tagFromByte(2)
	gen := idgen.New("tagged-conflict")

	mkRule := func(tag objects.Tag) *rules.Rule {
		return &rules.Rule{
			Tag: tag,
			Condition: rules.Condition{
				Tagged: []rules.TaggedDemand{{Kind: rules.DemandSpecificTag, Tag: a, UseMode: rules.UseRef}},
			},
			Effect: rules.Effect{
				rules.CreateObj{F: func(r *rules.ResolvedObjects) objects.Object {
					obj, ok := r.Ref(a)
					if !ok {
						return nil
					}
					seen, _ := objects.As[*builtin.Num](obj)
					val := int64(0)
					if seen != nil {
						val = seen.Value
					}
					return builtin.NewNum(gen.Next(), val)
				}},
				rules.Stop{},
			},
		}
	}

	r1 := mkRule(tagFromByte(3))
	r2 := mkRule(tagFromByte(4))

	seedObj := builtin.NewNum(a, int64(intParam(params, "value", 7)))
	if err := m.Init([]objects.Object{seedObj}, nil, []*rules.Rule{r1, r2}); err != nil {
		return nil, err
	}
	return &Result{Membranes: map[string]*membrane.Membrane{"main": m}}, nil
}

// buildUntaggedOversubscription: two rules each Take 7 of a 10-unit
// untagged pool. Both land in conflicting; the sequential pass lets
// exactly one of them through.
func buildUntaggedOversubscription(seed int64, params map[string]int, logger telemetry.Logger) (*Result, error) {
	m := membrane.New(tagFromByte(1), seed, logger)
	// Both rules demand only an untagged amount, never a specific or
	// random tag: the population is statically untagged-only, so the
	// analyser can skip the tagged-demand/conflict phases entirely.
	m.SetMode(conflict.ModeUntaggedOnly)

	pool := intParam(params, "pool", 10)
	demand := intParam(params, "demand", 7)

	mkRule := func(tag objects.Tag) *rules.Rule {
		return &rules.Rule{
			Tag:       tag,
			Condition: rules.NewCondition().TakeUntagged(numType, uint64(demand)).Build(),
			Effect:    rules.Effect{},
		}
	}

	r1 := mkRule(tagFromByte(2))
	r2 := mkRule(tagFromByte(3))

	if err := m.Init(nil, map[objects.Type]uint64{numType: uint64(pool)}, []*rules.Rule{r1, r2}); err != nil {
		return nil, err
	}
	return &Result{Membranes: map[string]*membrane.Membrane{"main": m}}, nil
}

// buildSendReceive: two membranes wired by a channel pair. The left
// membrane seeds an outbox entry bound for its
// channel end; its send/receive rule flushes it; the right membrane's
// send/receive rule drains the payload into its own store.
func buildSendReceive(seed int64, params map[string]int, logger telemetry.Logger) (*Result, error) {
	capacity := intParam(params, "capacity", 4)

	cA, cB := channel.NewChannelPair(tagFromByte(10), tagFromByte(11), capacity)
	stats := &builtin.SendReceiveStats{}

	left := membrane.New(tagFromByte(1), seed, logger)
	right := membrane.New(tagFromByte(2), seed+1, logger)

	payloadTag := tagFromByte(20)
	payload := builtin.NewNum(payloadTag, int64(intParam(params, "value", 42)))
	entry := builtin.NewSendMsgEntry(cA.ObjTag(), payload)
	leftOutbox := builtin.NewSendMsg(tagFromByte(21), []*builtin.SendMsgEntry{entry})
	// right has nothing queued to send, but the rule still demands a
	// SendMsg to sample — an empty outbox makes its condition
	// satisfiable for one tick. With no entries it counts as fully
	// delivered, so that tick drains the channel and removes the outbox;
	// after it right's rule is no longer applicable and right pauses.
	rightOutbox := builtin.NewSendMsg(tagFromByte(22), nil)

	leftRule := builtin.NewSendReceiveRule(tagFromByte(30), []objects.Tag{cA.ObjTag()}, stats)
	rightRule := builtin.NewSendReceiveRule(tagFromByte(31), []objects.Tag{cB.ObjTag()}, stats)

	if err := left.Init([]objects.Object{cA, leftOutbox}, nil, []*rules.Rule{leftRule}); err != nil {
		return nil, err
	}
	if err := right.Init([]objects.Object{cB, rightOutbox}, nil, []*rules.Rule{rightRule}); err != nil {
		return nil, err
	}

	return &Result{
		Membranes: map[string]*membrane.Membrane{"left": left, "right": right},
		Stats:     stats,
	}, nil
}

// buildTakeOwnership: a rule demands one randomly-sampled tag of the
// seeded type by Take and re-creates it under a fresh tag, preserving
// its inner value. It stops the membrane in the same tick; otherwise
// the freshly re-created object would satisfy the same random demand
// next tick and it would never settle.
func buildTakeOwnership(seed int64, params map[string]int, logger telemetry.Logger) (*Result, error) {
	m := membrane.New(tagFromByte(1), seed, logger)
	gen := idgen.New("take-ownership")

	x := tagFromByte(2)
	r1 := &rules.Rule{
		Tag:       tagFromByte(3),
		Condition: rules.NewCondition().RandTagged(numType, 1).ByTake().Build(),
		Effect: rules.NewEffect().
			CreateObj(func(r *rules.ResolvedObjects) objects.Object {
				obj, ok := r.TheRandTagged(0, 0)
				if !ok {
					return nil
				}
				old, _ := objects.As[*builtin.Num](obj)
				val := int64(0)
				if old != nil {
					val = old.Value
				}
				return builtin.NewNum(gen.Next(), val)
			}).
			StopMem().
			Build(),
	}

	seedObj := builtin.NewNum(x, int64(intParam(params, "value", 5)))
	if err := m.Init([]objects.Object{seedObj}, nil, []*rules.Rule{r1}); err != nil {
		return nil, err
	}
	return &Result{Membranes: map[string]*membrane.Membrane{"main": m}}, nil
}

// buildPauseThenExtend: a membrane with no rules pauses on its first
// tick; OnPause adds a rule and resumes it, so a second Start call
// makes progress.
func buildPauseThenExtend(seed int64, params map[string]int, logger telemetry.Logger) (*Result, error) {
	m := membrane.New(tagFromByte(1), seed, logger)
	if err := m.Init(nil, nil, nil); err != nil {
		return nil, err
	}
	gen := idgen.New("pause-then-extend")

	result := &Result{Membranes: map[string]*membrane.Membrane{"main": m}}
	result.OnPause = func(res *Result) {
		extra := &rules.Rule{
			Tag: tagFromByte(9),
			Effect: rules.Effect{
				rules.CreateObj{F: func(*rules.ResolvedObjects) objects.Object {
					return builtin.NewNum(gen.Next(), int64(intParam(params, "value", 1)))
				}},
				rules.Stop{},
			},
		}
		m.RuleStore().Insert(extra.Tag, extra)
		_ = m.Resume()
	}
	return result, nil
}
