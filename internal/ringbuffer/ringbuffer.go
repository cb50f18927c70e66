// Package ringbuffer implements the bounded element buffer collaborator
// (component A): a fixed-capacity, FIFO-ordered store of opaque values.
//
// Callers own all synchronization — Buffer performs no locking of its
// own, following the head/tail ring in
// go-server/pkg/websocket/ring_buffer.go, minus the lock-free atomics:
// here the owning Channel's mutex already serializes every access, so
// there is nothing left for the buffer itself to coordinate.
package ringbuffer

// Buffer is a fixed-capacity circular FIFO of elements of type T.
type Buffer[T any] struct {
	slots []T
	head  int // index of the oldest element
	count int // number of elements currently stored
}

// New creates a buffer with room for exactly capacity elements.
// capacity must be >= 1; callers are expected to validate this (see
// Channel.Create, which rejects capacity 0 before ever constructing a
// Buffer).
func New[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{slots: make([]T, capacity)}
}

// Add appends v to the tail. Precondition: Len() < Cap().
func (b *Buffer[T]) Add(v T) {
	tail := (b.head + b.count) % len(b.slots)
	b.slots[tail] = v
	b.count++
}

// Remove returns and clears the head element. Precondition: Len() > 0.
func (b *Buffer[T]) Remove() T {
	var zero T
	v := b.slots[b.head]
	b.slots[b.head] = zero // drop the reference so it can be GC'd
	b.head = (b.head + 1) % len(b.slots)
	b.count--
	return v
}

// Len returns the number of buffered elements.
func (b *Buffer[T]) Len() int { return b.count }

// Cap returns the buffer's fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.slots) }
