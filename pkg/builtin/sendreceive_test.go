package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketsaagar/membrane-sim/pkg/channel"
	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
)

func tag(n byte) objects.Tag {
	var t objects.Tag
	t[31] = n
	return t
}

func TestSendReceiveRuleDeliversAndDrains(t *testing.T) {
	chA, chB := channel.NewChannelPair(tag(1), tag(2), 4)

	payloadTag := tag(10)
	payload := NewNum(payloadTag, 42)
	entry := NewSendMsgEntry(chA.ObjTag(), payload)
	msg := NewSendMsg(tag(20), []*SendMsgEntry{entry})

	stats := &SendReceiveStats{}
	r := NewSendReceiveRule(tag(99), []objects.Tag{chA.ObjTag()}, stats)

	b := rules.NewBuilder()
	b.PutSpecific(chA.ObjTag(), rules.UseRef, chA)
	b.PutRandomGroup(rules.UseRef, []objects.Tag{msg.ObjTag()}, []objects.Object{msg})
	resolved := b.Build()

	removeOp := r.Effect[0].(rules.RemoveObjs)
	removed := removeOp.F(resolved)
	require.Equal(t, []objects.Tag{msg.ObjTag()}, removed, "fully delivered SendMsg is removed")

	delivered, pending, _ := stats.Snapshot()
	require.Equal(t, uint64(1), delivered)
	require.Equal(t, uint64(0), pending)

	got, ok := chB.TryRecv()
	require.True(t, ok)
	require.Equal(t, payloadTag, got.ObjTag())
}

func TestSendReceiveRuleLeavesPartialDeliveryPending(t *testing.T) {
	chA, _ := channel.NewChannelPair(tag(1), tag(2), 0) // zero capacity: TrySend always fails

	entry := NewSendMsgEntry(chA.ObjTag(), NewNum(tag(10), 1))
	msg := NewSendMsg(tag(20), []*SendMsgEntry{entry})

	stats := &SendReceiveStats{}
	r := NewSendReceiveRule(tag(99), []objects.Tag{chA.ObjTag()}, stats)

	b := rules.NewBuilder()
	b.PutSpecific(chA.ObjTag(), rules.UseRef, chA)
	b.PutRandomGroup(rules.UseRef, []objects.Tag{msg.ObjTag()}, []objects.Object{msg})
	resolved := b.Build()

	removeOp := r.Effect[0].(rules.RemoveObjs)
	removed := removeOp.F(resolved)
	require.Empty(t, removed, "SendMsg survives while any entry is still pending")

	_, pending, _ := stats.Snapshot()
	require.Equal(t, uint64(1), pending)

	// The entry's payload must have been restored, not lost.
	payload, ok := entry.TryTake()
	require.True(t, ok)
	require.Equal(t, tag(10), payload.ObjTag())
}

func TestDrainChannelsCreatesReceivedObjects(t *testing.T) {
	chA, chB := channel.NewChannelPair(tag(1), tag(2), 4)
	require.True(t, chB.TrySend(NewNum(tag(7), 99)))

	stats := &SendReceiveStats{}
	b := rules.NewBuilder()
	b.PutSpecific(chA.ObjTag(), rules.UseRef, chA)
	resolved := b.Build()

	out := drainChannels(resolved, []objects.Tag{chA.ObjTag()}, stats)
	require.Len(t, out, 1)
	require.Equal(t, tag(7), out[0].ObjTag())

	_, _, received := stats.Snapshot()
	require.Equal(t, uint64(1), received)
}
