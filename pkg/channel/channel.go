// Package channel implements the inter-membrane communication
// primitive: a capacity-bounded FIFO between two membranes, exposed as
// a pair of Com-group objects so a rule's condition can demand one by
// tag like any other object.
package channel

import (
	"context"
	"errors"

	"github.com/sanketsaagar/membrane-sim/pkg/objects"
)

// ChannelTypeName is the runtime type name reported by every Channel,
// Sender and Receiver object.
const ChannelTypeName = "Channel"

// ErrChannelClosed is returned by Send/Recv once the channel has been
// closed from either end.
var ErrChannelClosed = errors.New("channel: closed")

func chanType() objects.Type {
	return objects.Type{Name: ChannelTypeName, Group: objects.GroupCom}
}

// Channel is one bidirectional end of a membrane-to-membrane link: it
// reads what its peer sent and sends what its peer will read.
type Channel struct {
	tag    objects.Tag
	send   chan objects.Object
	recv   chan objects.Object
	closed chan struct{}
}

// NewChannelPair creates two Channel ends wired to each other, each
// buffered to capacity. Closing either end closes both.
func NewChannelPair(tagA, tagB objects.Tag, capacity int) (a, b *Channel) {
	c1 := make(chan objects.Object, capacity)
	c2 := make(chan objects.Object, capacity)
	closed := make(chan struct{})
	a = &Channel{tag: tagA, send: c2, recv: c1, closed: closed}
	b = &Channel{tag: tagB, send: c1, recv: c2, closed: closed}
	return a, b
}

func (c *Channel) ObjTag() objects.Tag   { return c.tag }
func (c *Channel) ObjType() objects.Type { return chanType() }
func (c *Channel) Amount() uint64        { return 1 }
func (c *Channel) As() any               { return c }

// Send delivers obj to the peer end, blocking until there is buffer
// space or ctx is cancelled. A closed pair rejects the send even when
// buffer space remains.
func (c *Channel) Send(ctx context.Context, obj objects.Object) error {
	select {
	case <-c.closed:
		return ErrChannelClosed
	default:
	}
	select {
	case c.send <- obj:
		return nil
	case <-c.closed:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv blocks for the next object the peer sent, until one arrives,
// the pair is closed, or ctx is cancelled. Objects already buffered
// when the pair closes are still drained before ErrChannelClosed.
func (c *Channel) Recv(ctx context.Context) (objects.Object, error) {
	select {
	case obj := <-c.recv:
		return obj, nil
	default:
	}
	select {
	case obj := <-c.recv:
		return obj, nil
	case <-c.closed:
		return nil, ErrChannelClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryRecv returns the next pending object without blocking.
func (c *Channel) TryRecv() (objects.Object, bool) {
	select {
	case obj := <-c.recv:
		return obj, true
	default:
		return nil, false
	}
}

// TrySend delivers obj without blocking, reporting whether there was
// buffer space. Effect functions must use this instead of Send: a
// full peer is a retry-next-tick condition, not a reason to stall the
// worker pool mid-tick.
func (c *Channel) TrySend(obj objects.Object) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- obj:
		return true
	default:
		return false
	}
}

// Close closes both ends of the pair. Subsequent Send/Recv calls
// return ErrChannelClosed.
func (c *Channel) Close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}

// Sender is the send-only end of a one-directional link.
type Sender struct {
	tag  objects.Tag
	send chan objects.Object
}

func (s *Sender) ObjTag() objects.Tag   { return s.tag }
func (s *Sender) ObjType() objects.Type { return chanType() }
func (s *Sender) Amount() uint64        { return 1 }
func (s *Sender) As() any               { return s }

func (s *Sender) Send(ctx context.Context, obj objects.Object) error {
	select {
	case s.send <- obj:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend is the non-blocking counterpart used from effect functions.
func (s *Sender) TrySend(obj objects.Object) bool {
	select {
	case s.send <- obj:
		return true
	default:
		return false
	}
}

// Receiver is the receive-only end of a one-directional link.
type Receiver struct {
	tag  objects.Tag
	recv chan objects.Object
}

func (r *Receiver) ObjTag() objects.Tag   { return r.tag }
func (r *Receiver) ObjType() objects.Type { return chanType() }
func (r *Receiver) Amount() uint64        { return 1 }
func (r *Receiver) As() any               { return r }

func (r *Receiver) Recv(ctx context.Context) (objects.Object, error) {
	select {
	case obj := <-r.recv:
		return obj, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Receiver) TryRecv() (objects.Object, bool) {
	select {
	case obj := <-r.recv:
		return obj, true
	default:
		return nil, false
	}
}

// NewSendReceivePair creates a one-directional link: a Sender only the
// sending membrane holds, and a Receiver only the receiving membrane
// holds.
func NewSendReceivePair(tagS, tagR objects.Tag, capacity int) (*Sender, *Receiver) {
	ch := make(chan objects.Object, capacity)
	return &Sender{tag: tagS, send: ch}, &Receiver{tag: tagR, recv: ch}
}
