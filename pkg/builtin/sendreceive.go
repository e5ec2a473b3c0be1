package builtin

import (
	"github.com/sanketsaagar/membrane-sim/pkg/channel"
	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
)

// NewSendReceiveRule builds the inter-membrane transport rule: it
// demands Ref access to a fixed set of known channels plus one
// randomly sampled SendMsg object, tries to flush every entry in that
// SendMsg across the channel its tag names, removes the SendMsg once
// every entry is delivered, and drains one pending value off each
// known channel into a freshly created object.
//
// stats may be nil; when non-nil its counters accumulate across ticks.
func NewSendReceiveRule(ruleTag objects.Tag, channelTags []objects.Tag, stats *SendReceiveStats) *rules.Rule {
	cond := rules.NewCondition()
	for _, ct := range channelTags {
		cond.TheTagged(ct).ByRef()
	}
	cond.RandTagged(objects.Type{Name: SendMsgTypeName, Group: objects.GroupCom}, 1).ByRef()

	return &rules.Rule{
		Tag:       ruleTag,
		Condition: cond.Build(),
		Effect: rules.NewEffect().
			RemoveObjs(func(r *rules.ResolvedObjects) []objects.Tag {
				return flushSendMsg(r, stats)
			}).
			CreateObjs(func(r *rules.ResolvedObjects) []objects.Object {
				return drainChannels(r, channelTags, stats)
			}).
			Build(),
	}
}

func flushSendMsg(r *rules.ResolvedObjects, stats *SendReceiveStats) []objects.Tag {
	msgObj, ok := r.TheRandTagged(0, 0)
	if !ok {
		return nil
	}
	msg, ok := objects.As[*SendMsg](msgObj)
	if !ok {
		return nil
	}

	allDelivered := true
	var delivered, pending uint64
	for _, entry := range msg.Entries {
		payload, ok := entry.TryTake()
		if !ok {
			// Already delivered by an earlier tick.
			continue
		}
		chObj, ok := r.Ref(entry.channelTag)
		if !ok {
			entry.Put(payload)
			allDelivered = false
			pending++
			continue
		}
		ch, ok := objects.As[*channel.Channel](chObj)
		if !ok || !ch.TrySend(payload) {
			entry.Put(payload)
			allDelivered = false
			pending++
			continue
		}
		delivered++
	}
	stats.addDelivered(delivered)
	stats.addPending(pending)

	if !allDelivered {
		return nil
	}
	return []objects.Tag{msg.ObjTag()}
}

func drainChannels(r *rules.ResolvedObjects, channelTags []objects.Tag, stats *SendReceiveStats) []objects.Object {
	var out []objects.Object
	var received uint64
	for _, tag := range channelTags {
		chObj, ok := r.Ref(tag)
		if !ok {
			continue
		}
		ch, ok := objects.As[*channel.Channel](chObj)
		if !ok {
			continue
		}
		if obj, ok := ch.TryRecv(); ok {
			out = append(out, obj)
			received++
		}
	}
	stats.addReceived(received)
	return out
}
