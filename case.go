package chanx

// Direction says which non-blocking operation a Case asks Select to
// attempt against its channel.
type Direction int

const (
	// SendDir attempts TrySend.
	SendDir Direction = iota
	// RecvDir attempts TryReceive.
	RecvDir
)

// erasedChannel is implemented by every *Channel[T]. It lets Select
// register waiters on and poll a list of channels whose element types
// differ from one call site to the next — the same problem Go's own
// reflect.Select solves for built-in channels, without reflection.
type erasedChannel interface {
	// tryOpErased attempts the non-blocking form of dir against the
	// boxed value. For SendDir, *box holds the value to send (unused
	// on return). For RecvDir, *box is overwritten with the received
	// value on Success.
	tryOpErased(dir Direction, box *any) (Status, error)
	registerWaiter(tok *selectToken) selectHandle
	unregisterWaiter(h selectHandle)
}

// Case is one candidate operation passed to Select. Build one with
// Send or Recv.
type Case struct {
	ch     erasedChannel
	dir    Direction
	box    any
	assign func(any)
}

// Send builds a Case that attempts to send v on ch.
func Send[T any](ch *Channel[T], v T) Case {
	return Case{ch: ch, dir: SendDir, box: v}
}

// Recv builds a Case that attempts to receive from ch into *dest.
// dest is written only if this case is the one Select completes.
func Recv[T any](ch *Channel[T], dest *T) Case {
	return Case{
		ch:  ch,
		dir: RecvDir,
		assign: func(v any) {
			*dest = v.(T)
		},
	}
}

func (c *Channel[T]) tryOpErased(dir Direction, box *any) (Status, error) {
	if c == nil {
		return GenError, ErrNilChannel
	}
	switch dir {
	case SendDir:
		v, _ := (*box).(T)
		return c.TrySend(v)
	case RecvDir:
		var out T
		st, err := c.TryReceive(&out)
		if st == Success {
			*box = out
		}
		return st, err
	default:
		return GenError, ErrNilChannel
	}
}
