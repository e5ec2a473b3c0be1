package conflict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
	"github.com/sanketsaagar/membrane-sim/pkg/store"
)

type fakeObj struct {
	tag objects.Tag
	typ objects.Type
}

func (f fakeObj) ObjTag() objects.Tag   { return f.tag }
func (f fakeObj) ObjType() objects.Type { return f.typ }
func (f fakeObj) Amount() uint64        { return 1 }
func (f fakeObj) As() any               { return f }

var coinType = objects.Type{Name: "Coin", Group: objects.GroupNormal}

func tagN(n byte) objects.Tag {
	var t objects.Tag
	t[31] = n
	return t
}

func newStores() (*store.ObjectStore, *store.RuleStore) {
	return store.NewObjectStore(), store.NewRuleStore()
}

func refRule(tag, demand objects.Tag) *rules.Rule {
	return &rules.Rule{
		Tag: tag,
		Condition: rules.Condition{
			Tagged: []rules.TaggedDemand{{Kind: rules.DemandSpecificTag, Tag: demand, UseMode: rules.UseRef}},
		},
	}
}

func TestAnalyseTaggedConflictMarksBothRules(t *testing.T) {
	objStore, ruleStore := newStores()
	shared := tagN(1)
	objStore.Insert(shared, fakeObj{tag: shared, typ: coinType})

	r1 := refRule(tagN(10), shared)
	r2 := refRule(tagN(11), shared)
	ruleStore.Insert(r1.Tag, r1)
	ruleStore.Insert(r2.Tag, r2)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Empty(t, res.Parallel, "a contended tag sends both claimants to the sequential subset")
	require.Len(t, res.Conflicting, 2)
	require.Equal(t, r1.Tag, res.Conflicting[0].Tag, "rule-store insertion order is preserved within the list")
	require.Equal(t, r2.Tag, res.Conflicting[1].Tag)
}

func TestAnalyseTaggedNonOverlapWhenDisjoint(t *testing.T) {
	objStore, ruleStore := newStores()
	a1, a2 := tagN(1), tagN(2)
	objStore.Insert(a1, fakeObj{tag: a1, typ: coinType})
	objStore.Insert(a2, fakeObj{tag: a2, typ: coinType})

	r1 := refRule(tagN(10), a1)
	r2 := refRule(tagN(11), a2)
	ruleStore.Insert(r1.Tag, r1)
	ruleStore.Insert(r2.Tag, r2)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Len(t, res.Parallel, 2)
	require.Empty(t, res.Conflicting)
}

func untaggedRule(tag objects.Tag, typ objects.Type, amount uint64) *rules.Rule {
	return &rules.Rule{
		Tag: tag,
		Condition: rules.Condition{
			Untagged: []rules.UntaggedDemand{{Type: typ, Amount: amount, Take: true}},
		},
	}
}

func TestAnalyseUntaggedOversubscriptionMarksBothConflicting(t *testing.T) {
	objStore, ruleStore := newStores()
	objStore.IncreaseUntagged(coinType, 10)

	r1 := untaggedRule(tagN(10), coinType, 7)
	r2 := untaggedRule(tagN(11), coinType, 7)
	ruleStore.Insert(r1.Tag, r1)
	ruleStore.Insert(r2.Tag, r2)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Empty(t, res.Parallel, "7+7 > 10: neither rule is safe to run in parallel")
	require.Len(t, res.Conflicting, 2)
}

func TestAnalyseUntaggedNonOversubscriptionStaysParallel(t *testing.T) {
	objStore, ruleStore := newStores()
	objStore.IncreaseUntagged(coinType, 10)

	r1 := untaggedRule(tagN(10), coinType, 3)
	r2 := untaggedRule(tagN(11), coinType, 3)
	ruleStore.Insert(r1.Tag, r1)
	ruleStore.Insert(r2.Tag, r2)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Len(t, res.Parallel, 2, "3+3 <= 10: both rules commute")
	require.Empty(t, res.Conflicting)
}

func TestAnalyseUntaggedInsufficientAmountDropsRule(t *testing.T) {
	objStore, ruleStore := newStores()
	objStore.IncreaseUntagged(coinType, 5)

	r1 := untaggedRule(tagN(10), coinType, 6)
	ruleStore.Insert(r1.Tag, r1)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Empty(t, res.Parallel)
	require.Empty(t, res.Conflicting, "amount-5 < demand-6: rule is silently not-applicable")
}

func randTagRule(tag objects.Tag, typ objects.Type, k int) *rules.Rule {
	return &rules.Rule{
		Tag: tag,
		Condition: rules.Condition{
			Tagged: []rules.TaggedDemand{{Kind: rules.DemandRandomTags, RandType: typ, RandK: k, UseMode: rules.UseRef}},
		},
	}
}

func TestAnalyseRandTaggedExactCandidatesSucceeds(t *testing.T) {
	objStore, ruleStore := newStores()
	for i := byte(1); i <= 3; i++ {
		tg := tagN(i)
		objStore.Insert(tg, fakeObj{tag: tg, typ: coinType})
	}
	r := randTagRule(tagN(10), coinType, 3)
	ruleStore.Insert(r.Tag, r)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Len(t, res.Parallel, 1)
	require.Len(t, res.Parallel[0].RandomSelections, 1)
	require.Len(t, res.Parallel[0].RandomSelections[0], 3)
}

func TestAnalyseRandTaggedOneShortFails(t *testing.T) {
	objStore, ruleStore := newStores()
	for i := byte(1); i <= 2; i++ {
		tg := tagN(i)
		objStore.Insert(tg, fakeObj{tag: tg, typ: coinType})
	}
	r := randTagRule(tagN(10), coinType, 3)
	ruleStore.Insert(r.Tag, r)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Empty(t, res.Parallel)
	require.Empty(t, res.Conflicting, "only 2 candidates for k=3: not-applicable, not conflicting")
}

func TestAnalyseTaggedOnlyModeSkipsUntaggedPhase(t *testing.T) {
	// A tagged-only rule population still carries an untagged demand
	// that the pool can't satisfy. ModeGeneral would drop it as
	// not-applicable; ModeTaggedOnly skips the untagged-amount check,
	// so the rule is treated as applicable purely on its tagged demand.
	objStore, ruleStore := newStores()
	shared := tagN(1)
	objStore.Insert(shared, fakeObj{tag: shared, typ: coinType})

	r := &rules.Rule{
		Tag: tagN(10),
		Condition: rules.Condition{
			Untagged: []rules.UntaggedDemand{{Type: coinType, Amount: 99}},
			Tagged:   []rules.TaggedDemand{{Kind: rules.DemandSpecificTag, Tag: shared, UseMode: rules.UseRef}},
		},
	}
	ruleStore.Insert(r.Tag, r)

	general := New(1).Analyse(objStore, ruleStore, ModeGeneral)
	require.Empty(t, general.Parallel, "insufficient untagged amount: dropped under the general pass")
	require.Empty(t, general.Conflicting)

	taggedOnly := New(1).Analyse(objStore, ruleStore, ModeTaggedOnly)
	require.Len(t, taggedOnly.Parallel, 1, "ModeTaggedOnly never checks the untagged demand, so the rule is applicable")
}

func TestAnalyseUntaggedOnlyModeSkipsTaggedPhase(t *testing.T) {
	// An untagged-only rule population still names a specific tag that
	// is absent. ModeGeneral would drop it as not-applicable;
	// ModeUntaggedOnly skips the tagged-demand resolution entirely,
	// so the rule is treated as applicable purely on its untagged
	// demand.
	objStore, ruleStore := newStores()
	objStore.IncreaseUntagged(coinType, 10)
	missing := tagN(1)

	r := &rules.Rule{
		Tag: tagN(10),
		Condition: rules.Condition{
			Untagged: []rules.UntaggedDemand{{Type: coinType, Amount: 5}},
			Tagged:   []rules.TaggedDemand{{Kind: rules.DemandSpecificTag, Tag: missing, UseMode: rules.UseRef}},
		},
	}
	ruleStore.Insert(r.Tag, r)

	general := New(1).Analyse(objStore, ruleStore, ModeGeneral)
	require.Empty(t, general.Parallel, "missing specific tag: dropped under the general pass")
	require.Empty(t, general.Conflicting)

	untaggedOnly := New(1).Analyse(objStore, ruleStore, ModeUntaggedOnly)
	require.Len(t, untaggedOnly.Parallel, 1, "ModeUntaggedOnly never resolves the tagged demand, so the rule is applicable")
}

func TestAnalyseEmptyStoresPauseCandidate(t *testing.T) {
	objStore, ruleStore := newStores()
	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeGeneral)

	require.Empty(t, res.Parallel)
	require.Empty(t, res.Conflicting, "empty rule set: both lists empty, caller transitions to Pause")
}

func TestAnalyseNoParallelModeForcesSequential(t *testing.T) {
	objStore, ruleStore := newStores()
	a1, a2 := tagN(1), tagN(2)
	objStore.Insert(a1, fakeObj{tag: a1, typ: coinType})
	objStore.Insert(a2, fakeObj{tag: a2, typ: coinType})

	r1 := refRule(tagN(10), a1)
	r2 := refRule(tagN(11), a2)
	ruleStore.Insert(r1.Tag, r1)
	ruleStore.Insert(r2.Tag, r2)

	a := New(1)
	res := a.Analyse(objStore, ruleStore, ModeNoParallel)

	require.Empty(t, res.Parallel)
	require.Len(t, res.Conflicting, 2, "no-parallel mode: every applicable rule goes straight to conflicting")
}

func TestAnalyseDeterministicGivenSameSeed(t *testing.T) {
	build := func() (*store.ObjectStore, *store.RuleStore) {
		objStore, ruleStore := newStores()
		for i := byte(1); i <= 5; i++ {
			tg := tagN(i)
			objStore.Insert(tg, fakeObj{tag: tg, typ: coinType})
		}
		r := randTagRule(tagN(10), coinType, 2)
		ruleStore.Insert(r.Tag, r)
		return objStore, ruleStore
	}

	objStore1, ruleStore1 := build()
	res1 := New(42).Analyse(objStore1, ruleStore1, ModeGeneral)

	objStore2, ruleStore2 := build()
	res2 := New(42).Analyse(objStore2, ruleStore2, ModeGeneral)

	require.Equal(t, res1.Parallel[0].RandomSelections, res2.Parallel[0].RandomSelections)
}
