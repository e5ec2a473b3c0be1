package builtin

import (
	"sync"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
)

// SendMsgTypeName is the runtime type name every SendMsg object
// reports.
const SendMsgTypeName = "SendMsg"

// SendMsgEntry is one outgoing payload bound for one named channel.
// The effect function that flushes it only ever holds a shared borrow
// of the enclosing SendMsg, so the entry carries its own mutex: two
// deliveries racing for the same payload cannot double-send it.
type SendMsgEntry struct {
	mu         sync.Mutex
	payload    objects.Object
	channelTag objects.Tag
}

// NewSendMsgEntry creates an entry bound for the channel at channelTag.
func NewSendMsgEntry(channelTag objects.Tag, payload objects.Object) *SendMsgEntry {
	return &SendMsgEntry{channelTag: channelTag, payload: payload}
}

// TryTake atomically removes and returns the entry's payload, if it
// hasn't already been delivered (or claimed by a racing attempt).
func (e *SendMsgEntry) TryTake() (objects.Object, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.payload == nil {
		return nil, false
	}
	p := e.payload
	e.payload = nil
	return p, true
}

// Put restores payload after a failed delivery attempt (the channel
// was full, or the expected channel object wasn't resolved this tick).
func (e *SendMsgEntry) Put(payload objects.Object) {
	e.mu.Lock()
	e.payload = payload
	e.mu.Unlock()
}

// Delivered reports whether the entry's payload has already been sent.
func (e *SendMsgEntry) Delivered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload == nil
}

// SendMsg is a tagged object bundling every pending outbox entry a
// send/receive rule instance will try to flush this tick. It is
// sampled via a rand_tagged demand, Ref-mode: the object itself is
// borrowed, never taken, since its entries carry their own locking.
type SendMsg struct {
	Tag     objects.Tag
	Entries []*SendMsgEntry
}

func (m *SendMsg) ObjTag() objects.Tag { return m.Tag }
func (m *SendMsg) ObjType() objects.Type {
	return objects.Type{Name: SendMsgTypeName, Group: objects.GroupCom}
}
func (m *SendMsg) Amount() uint64 { return 1 }
func (m *SendMsg) As() any        { return m }

// NewSendMsg creates a SendMsg wrapping entries.
func NewSendMsg(tag objects.Tag, entries []*SendMsgEntry) *SendMsg {
	return &SendMsg{Tag: tag, Entries: entries}
}

// SendReceiveStats tallies send/receive effect outcomes across ticks.
// A nil *SendReceiveStats is always safe to pass; every method is a
// no-op on a nil receiver.
type SendReceiveStats struct {
	mu        sync.Mutex
	delivered uint64
	pending   uint64
	received  uint64
}

func (s *SendReceiveStats) addDelivered(n uint64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.delivered += n
	s.mu.Unlock()
}

func (s *SendReceiveStats) addPending(n uint64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.pending += n
	s.mu.Unlock()
}

func (s *SendReceiveStats) addReceived(n uint64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.received += n
	s.mu.Unlock()
}

// Snapshot returns the running totals. Safe to call on a nil receiver
// (returns the zero value).
func (s *SendReceiveStats) Snapshot() (delivered, pending, received uint64) {
	if s == nil {
		return 0, 0, 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered, s.pending, s.received
}
