package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
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

func TestInsertRemoveRoundTripsAmount(t *testing.T) {
	s := NewObjectStore()
	tg := tagN(1)

	_, existed := s.Insert(tg, fakeObj{tag: tg, typ: coinType, amt: 1})
	require.False(t, existed)
	require.Equal(t, uint64(1), s.AmountOf(coinType))

	_, ok := s.Remove(tg)
	require.True(t, ok)
	require.Equal(t, uint64(0), s.AmountOf(coinType))
}

func TestInsertReplaceAdjustsAmountNotDouble(t *testing.T) {
	s := NewObjectStore()
	tg := tagN(1)

	s.Insert(tg, fakeObj{tag: tg, typ: coinType, amt: 1})
	replaced, existed := s.Insert(tg, fakeObj{tag: tg, typ: coinType, amt: 1})
	require.True(t, existed)
	require.NotNil(t, replaced)
	require.Equal(t, uint64(1), s.AmountOf(coinType), "re-insert at the same tag must not double-count")
}

func TestIncreaseDecreaseUntaggedRoundTrips(t *testing.T) {
	s := NewObjectStore()
	s.IncreaseUntagged(coinType, 5)
	require.Equal(t, uint64(5), s.AmountOf(coinType))

	ok := s.DecreaseUntagged(coinType, 5)
	require.True(t, ok)
	require.Equal(t, uint64(0), s.AmountOf(coinType))
}

func TestDecreaseUntaggedBelowZeroRejected(t *testing.T) {
	s := NewObjectStore()
	s.IncreaseUntagged(coinType, 3)

	ok := s.DecreaseUntagged(coinType, 4)
	require.False(t, ok)
	require.Equal(t, uint64(3), s.AmountOf(coinType), "rejected decrease must not mutate the pool")
}

func TestAmountConsistencyAcrossTaggedAndUntagged(t *testing.T) {
	s := NewObjectStore()
	s.IncreaseUntagged(coinType, 10)
	tg := tagN(1)
	s.Insert(tg, fakeObj{tag: tg, typ: coinType, amt: 1})

	require.Equal(t, uint64(11), s.AmountOf(coinType))
	require.Equal(t, uint64(10), s.UntaggedPoolOf(coinType))
}

func TestRemoveUntaggedZeroesPoolKeepsTaggedContribution(t *testing.T) {
	s := NewObjectStore()
	s.IncreaseUntagged(coinType, 10)
	tg := tagN(1)
	s.Insert(tg, fakeObj{tag: tg, typ: coinType, amt: 1})

	s.RemoveUntagged(coinType)

	require.Equal(t, uint64(0), s.UntaggedPoolOf(coinType))
	require.Equal(t, uint64(1), s.AmountOf(coinType), "tagged instance's contribution to the aggregate survives")
}

func TestBatchGetStrictPreservesPositionForMissing(t *testing.T) {
	s := NewObjectStore()
	a, b := tagN(1), tagN(2)
	s.Insert(a, fakeObj{tag: a, typ: coinType, amt: 1})

	out := s.BatchGetStrict([]objects.Tag{a, b})
	require.Len(t, out, 2)
	require.NotNil(t, out[0])
	require.Nil(t, out[1])
}

func TestBatchGetSkipCompacts(t *testing.T) {
	s := NewObjectStore()
	a, b := tagN(1), tagN(2)
	s.Insert(a, fakeObj{tag: a, typ: coinType, amt: 1})

	out := s.BatchGetSkip([]objects.Tag{a, b})
	require.Len(t, out, 1)
}

func TestTagsOfTypeExcludesChosen(t *testing.T) {
	s := NewObjectStore()
	a, b := tagN(1), tagN(2)
	s.Insert(a, fakeObj{tag: a, typ: coinType, amt: 1})
	s.Insert(b, fakeObj{tag: b, typ: coinType, amt: 1})

	out := s.TagsOfType(coinType, map[objects.Tag]struct{}{a: {}})
	require.Equal(t, []objects.Tag{b}, out)
}
