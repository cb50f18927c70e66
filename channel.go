package chanx

import (
	"fmt"
	"sync"

	"github.com/chanlab/chanx/internal/ringbuffer"
	"github.com/chanlab/chanx/internal/wakelist"
)

// Channel is a bounded, thread-safe, typed message channel. Capacity
// is fixed at creation; capacity 0 is rejected (see Create) rather
// than modeled as true unbuffered rendezvous.
//
// Three synchronization primitives guard a Channel:
//   - mu, guarding buf/closed/subs.
//   - semSlots, a counting semaphore (Go buffered chan struct{}) with
//     initial value capacity: senders acquire a permit before they may
//     append, receivers release one after they remove.
//   - semItems, the mirror image with initial value 0: receivers
//     acquire a permit before they may remove, senders release one
//     after they append.
//
// Close is broadcast via closeCh, a channel closed exactly once. A Go
// close() wakes every goroutine blocked receiving from it
// simultaneously, standing in for a chain-wake-up choreography
// (posting once per axis, each wakee re-posting before returning) that
// would otherwise be needed to work around semaphores that only ever
// wake a single waiter per post; Go's native broadcast-on-close has no
// such limitation, so there is nothing left to chain. See DESIGN.md
// for the full justification.
type Channel[T any] struct {
	mu     sync.Mutex
	buf    *ringbuffer.Buffer[T]
	closed bool
	subs   *wakelist.List

	closeCh  chan struct{}
	semSlots chan struct{}
	semItems chan struct{}
}

// Stats is a point-in-time snapshot of a Channel's data-model fields,
// useful for metrics and the observability server.
type Stats struct {
	Capacity    int
	ItemCount   int
	SlotCount   int
	Closed      bool
	Subscribers int
}

// Create allocates a Channel with the given fixed capacity. capacity
// must be >= 1: zero-capacity rendezvous channels are rejected rather
// than supported, a call recorded as a decision in DESIGN.md.
func Create[T any](capacity int) (*Channel[T], error) {
	if capacity < 1 {
		return nil, ErrBadCapacity
	}

	c := &Channel[T]{
		buf:      ringbuffer.New[T](capacity),
		subs:     wakelist.New(),
		closeCh:  make(chan struct{}),
		semSlots: make(chan struct{}, capacity),
		semItems: make(chan struct{}, capacity),
	}
	for i := 0; i < capacity; i++ {
		c.semSlots <- struct{}{}
	}
	return c, nil
}

// Send blocks until a slot is free and v is appended, or the channel
// is closed.
func (c *Channel[T]) Send(v T) (Status, error) {
	if c == nil {
		return GenError, ErrNilChannel
	}

	select {
	case <-c.semSlots:
	case <-c.closeCh:
		return ClosedError, ErrClosed
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.releaseSlot() // give back the slot we reserved but never used
		return ClosedError, ErrClosed
	}
	c.buf.Add(v)
	c.postItemLocked()
	c.mu.Unlock()
	return Success, nil
}

// Receive blocks until an item is available and removed into *out, or
// the channel is closed with nothing left to drain.
func (c *Channel[T]) Receive(out *T) (Status, error) {
	if c == nil {
		return GenError, ErrNilChannel
	}

	if !c.tryAcquireItem() {
		select {
		case <-c.semItems:
		case <-c.closeCh:
			return ClosedError, ErrClosed
		}
	}

	c.mu.Lock()
	*out = c.buf.Remove()
	c.postSlotLocked()
	c.mu.Unlock()
	return Success, nil
}

// TrySend behaves like Send but never blocks: it returns ChannelFull
// if no slot is immediately free. A closed channel always reports
// ClosedError, even when also full.
func (c *Channel[T]) TrySend(v T) (Status, error) {
	if c == nil {
		return GenError, ErrNilChannel
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ClosedError, ErrClosed
	}
	if !c.tryReserveSlotLocked() {
		c.mu.Unlock()
		return ChannelFull, ErrFull
	}
	c.buf.Add(v)
	c.postItemLocked()
	c.mu.Unlock()
	return Success, nil
}

// TryReceive behaves like Receive but never blocks: it returns
// ChannelEmpty on an open, empty channel. A closed-and-drained channel
// reports ClosedError.
func (c *Channel[T]) TryReceive(out *T) (Status, error) {
	if c == nil {
		return GenError, ErrNilChannel
	}

	c.mu.Lock()
	if c.tryAcquireItem() {
		*out = c.buf.Remove()
		c.postSlotLocked()
		c.mu.Unlock()
		return Success, nil
	}
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return ClosedError, ErrClosed
	}
	return ChannelEmpty, ErrEmpty
}

// Close transitions the channel to closed exactly once, waking every
// blocked Send, Receive, and Select that has this channel among its
// candidates. A second Close returns ClosedError and has no other
// observable effect.
func (c *Channel[T]) Close() (Status, error) {
	if c == nil {
		return GenError, ErrNilChannel
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ClosedError, ErrClosed
	}
	c.closed = true
	close(c.closeCh)
	c.notifySubscribersLocked()
	c.mu.Unlock()
	return Success, nil
}

// Destroy releases the channel's resources. It requires the channel
// to already be closed with no live select subscribers; the caller is
// responsible for having joined every goroutine that might still call
// Send/Receive/Select on it.
func (c *Channel[T]) Destroy() (Status, error) {
	if c == nil {
		return GenError, ErrNilChannel
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		return DestroyError, ErrNotClosed
	}
	if c.subs.Len() > 0 {
		return DestroyError, fmt.Errorf("chanx: destroy with %d live select subscriber(s): %w", c.subs.Len(), ErrNotClosed)
	}
	c.buf = nil
	c.subs = nil
	return Success, nil
}

// Stats returns a snapshot of the channel's data-model fields.
func (c *Channel[T]) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buf == nil { // destroyed
		return Stats{Closed: c.closed}
	}
	return Stats{
		Capacity:    c.buf.Cap(),
		ItemCount:   c.buf.Len(),
		SlotCount:   c.buf.Cap() - c.buf.Len(),
		Closed:      c.closed,
		Subscribers: c.subs.Len(),
	}
}

// -- internal helpers shared by the blocking/non-blocking paths --

func (c *Channel[T]) tryReserveSlotLocked() bool {
	select {
	case <-c.semSlots:
		return true
	default:
		return false
	}
}

// tryAcquireItem grabs a semItems permit if one is immediately
// available. It does not require the channel lock: the semaphore has
// its own internal synchronization, independent of mu. Receive calls
// this first (unlocked) to prefer draining an already-available item
// over observing closure, implementing a drain-then-close policy for
// receive on a closed, non-empty channel.
func (c *Channel[T]) tryAcquireItem() bool {
	select {
	case <-c.semItems:
		return true
	default:
		return false
	}
}

// postItemLocked releases one semItems permit and wakes every
// subscriber. Must be called with mu held: subscriber broadcast must
// happen under the channel's lock so a waking Select sees a
// consistent view of buf/closed.
func (c *Channel[T]) postItemLocked() {
	select {
	case c.semItems <- struct{}{}:
	default:
	}
	c.notifySubscribersLocked()
}

func (c *Channel[T]) postSlotLocked() {
	c.releaseSlot()
	c.notifySubscribersLocked()
}

func (c *Channel[T]) releaseSlot() {
	select {
	case c.semSlots <- struct{}{}:
	default:
	}
}

func (c *Channel[T]) notifySubscribersLocked() {
	c.subs.ForEach(func(tok wakelist.Token) {
		tok.(*selectToken).post()
	})
}
