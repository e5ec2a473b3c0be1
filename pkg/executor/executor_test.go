package executor

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
	"github.com/sanketsaagar/membrane-sim/pkg/store"
)

type fakeObj struct {
	tag objects.Tag
	typ objects.Type
	amt uint64
}

func (f fakeObj) ObjTag() objects.Tag   { return f.tag }
func (f fakeObj) ObjType() objects.Type { return f.typ }
func (f fakeObj) Amount() uint64        { return f.amt }
func (f fakeObj) As() any               { return f }

var coinType = objects.Type{Name: "Coin", Group: objects.GroupNormal}

func tagN(n byte) objects.Tag {
	var t objects.Tag
	t[31] = n
	return t
}

func TestRunParallelCommitsRefAndCreate(t *testing.T) {
	st := store.NewObjectStore()
	src := tagN(1)
	st.Insert(src, fakeObj{tag: src, typ: coinType, amt: 1})

	dst := tagN(2)
	desc := rules.Descriptor{
		RulePos: 0,
		Tag:     tagN(99),
		Condition: rules.Condition{
			Tagged: []rules.TaggedDemand{
				{Kind: rules.DemandSpecificTag, Tag: src, UseMode: rules.UseRef},
			},
		},
		Effect: rules.Effect{
			rules.CreateObj{F: func(r *rules.ResolvedObjects) objects.Object {
				if _, ok := r.Ref(src); !ok {
					return nil
				}
				return fakeObj{tag: dst, typ: coinType, amt: 1}
			}},
		},
		SkipTake: true,
	}

	halt := &HaltFlag{}
	ex := NewExecutor(st, halt, nil)
	require.NoError(t, ex.RunParallel(context.Background(), []rules.Descriptor{desc}))

	require.True(t, st.Contains(src), "ref-mode demand must not remove the object")
	require.True(t, st.Contains(dst))
}

func TestRunParallelTakeRemovesObject(t *testing.T) {
	st := store.NewObjectStore()
	src := tagN(1)
	st.Insert(src, fakeObj{tag: src, typ: coinType, amt: 1})

	desc := rules.Descriptor{
		Tag: tagN(99),
		Condition: rules.Condition{
			Tagged: []rules.TaggedDemand{
				{Kind: rules.DemandSpecificTag, Tag: src, UseMode: rules.UseTake},
			},
		},
		Effect: rules.Effect{
			rules.RemoveObj{F: func(r *rules.ResolvedObjects) objects.Tag {
				obj, _ := r.Take(src)
				return obj.ObjTag()
			}},
		},
	}
	desc.SkipTake = desc.Condition.SkipTake()
	require.False(t, desc.SkipTake)

	halt := &HaltFlag{}
	ex := NewExecutor(st, halt, nil)
	require.NoError(t, ex.RunParallel(context.Background(), []rules.Descriptor{desc}))

	require.False(t, st.Contains(src))
}

func TestRunParallelAbortsOnMissingTake(t *testing.T) {
	st := store.NewObjectStore()
	missing := tagN(7)

	desc := rules.Descriptor{
		Tag: tagN(99),
		Condition: rules.Condition{
			Tagged: []rules.TaggedDemand{
				{Kind: rules.DemandSpecificTag, Tag: missing, UseMode: rules.UseTake},
			},
		},
		Effect: rules.Effect{rules.Stop{}},
	}
	desc.SkipTake = desc.Condition.SkipTake()

	halt := &HaltFlag{}
	ex := NewExecutor(st, halt, nil)
	descs := []rules.Descriptor{desc}
	require.NoError(t, ex.RunParallel(context.Background(), descs))

	require.True(t, descs[0].Aborted)
	require.False(t, halt.IsSet(), "aborted rule's Stop effect must not run")
}

func TestRunParallelStopHaltsButStillCommits(t *testing.T) {
	st := store.NewObjectStore()
	dst := tagN(2)
	desc := rules.Descriptor{
		Tag:      tagN(99),
		SkipTake: true,
		Effect: rules.Effect{
			rules.CreateObj{F: func(*rules.ResolvedObjects) objects.Object {
				return fakeObj{tag: dst, typ: coinType, amt: 1}
			}},
			rules.Stop{},
		},
	}

	halt := &HaltFlag{}
	ex := NewExecutor(st, halt, nil)
	require.NoError(t, ex.RunParallel(context.Background(), []rules.Descriptor{desc}))

	require.True(t, halt.IsSet())
	require.True(t, st.Contains(dst), "tick stays atomic: the commit happens even though Stop fired")
}

func TestRunSequentialSkipsStarvedRule(t *testing.T) {
	st := store.NewObjectStore()
	coin := tagN(1)
	st.Insert(coin, fakeObj{tag: coin, typ: coinType, amt: 1})

	takeIt := rules.Descriptor{
		Tag: tagN(10),
		Condition: rules.Condition{
			Tagged: []rules.TaggedDemand{{Kind: rules.DemandSpecificTag, Tag: coin, UseMode: rules.UseTake}},
		},
		Effect: rules.Effect{
			rules.RemoveObj{F: func(r *rules.ResolvedObjects) objects.Tag {
				o, _ := r.Take(coin)
				return o.ObjTag()
			}},
		},
	}
	alsoWantsIt := rules.Descriptor{
		Tag: tagN(11),
		Condition: rules.Condition{
			Tagged: []rules.TaggedDemand{{Kind: rules.DemandSpecificTag, Tag: coin, UseMode: rules.UseTake}},
		},
		Effect: rules.Effect{
			rules.RemoveObj{F: func(r *rules.ResolvedObjects) objects.Tag {
				o, _ := r.Take(coin)
				return o.ObjTag()
			}},
		},
	}

	halt := &HaltFlag{}
	ex := NewExecutor(st, halt, nil)
	descs := []rules.Descriptor{takeIt, alsoWantsIt}
	ex.RunSequential(descs, rand.New(rand.NewSource(1)))

	require.False(t, st.Contains(coin), "exactly one of the two competing rules consumes it")
}

func TestRunParallelPanicPoisonsHaltAndDiscardsMutation(t *testing.T) {
	st := store.NewObjectStore()
	dst := tagN(2)
	desc := rules.Descriptor{
		Tag:      tagN(99),
		SkipTake: true,
		Effect: rules.Effect{
			rules.CreateObj{F: func(*rules.ResolvedObjects) objects.Object {
				return fakeObj{tag: dst, typ: coinType, amt: 1}
			}},
			rules.RemoveObj{F: func(*rules.ResolvedObjects) objects.Tag {
				panic("effect function blew up")
			}},
		},
	}

	halt := &HaltFlag{}
	ex := NewExecutor(st, halt, nil)
	require.NoError(t, ex.RunParallel(context.Background(), []rules.Descriptor{desc}))

	require.True(t, halt.IsSet(), "a panicking effect function poisons the halt flag")
	require.False(t, st.Contains(dst), "a panicked rule's staged mutation is discarded, not partially committed")
}

func TestRunSequentialPanicPoisonsHaltAndDiscardsMutation(t *testing.T) {
	st := store.NewObjectStore()
	dst := tagN(2)
	desc := rules.Descriptor{
		Tag: tagN(99),
		Effect: rules.Effect{
			rules.CreateObj{F: func(*rules.ResolvedObjects) objects.Object {
				return fakeObj{tag: dst, typ: coinType, amt: 1}
			}},
			rules.RemoveObj{F: func(*rules.ResolvedObjects) objects.Tag {
				panic("effect function blew up")
			}},
		},
	}

	halt := &HaltFlag{}
	ex := NewExecutor(st, halt, nil)
	ex.RunSequential([]rules.Descriptor{desc}, rand.New(rand.NewSource(1)))

	require.True(t, halt.IsSet())
	require.False(t, st.Contains(dst))
}
