package chanx

import (
	"errors"

	"github.com/chanlab/chanx/internal/wakelist"
)

// selectToken is the wake token a single Select invocation owns: a
// counting semaphore of capacity 1, posted by any channel operation
// that mutates state while this token is registered as a subscriber,
// waited on when a scan finds nothing ready. Its lifetime is strictly
// contained within one Select call.
type selectToken struct {
	sem chan struct{}
}

func newSelectToken() *selectToken {
	return &selectToken{sem: make(chan struct{}, 1)}
}

// post is idempotent between waits: a capacity-1 buffer means a
// second post before the next wait is a no-op, which is fine — a
// select only needs to know "something changed, re-scan", not how
// many times.
func (t *selectToken) post() {
	select {
	case t.sem <- struct{}{}:
	default:
	}
}

func (t *selectToken) wait() {
	<-t.sem
}

type selectHandle = wakelist.Handle

func (c *Channel[T]) registerWaiter(tok *selectToken) selectHandle {
	if c == nil {
		return selectHandle{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs.Insert(tok)
}

func (c *Channel[T]) unregisterWaiter(h selectHandle) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs.Remove(h)
}

// ErrNoCases is returned by Select when called with zero candidates.
var ErrNoCases = errors.New("chanx: select requires at least one case")

// Select performs exactly one of the candidate operations in cases,
// as soon as any becomes ready, and reports which. It blocks if none
// is ready yet:
//
//  1. Create a token local to this call.
//  2. Register it on every candidate channel, all channels before any
//     polling, so a transition between polling candidate 0 and
//     candidate n-1 is never lost.
//  3. Repeatedly scan candidates in order; the first one whose
//     non-blocking form reports Success, ClosedError, or GenError wins.
//     A full scan with nothing ready parks on the token.
//  4. Unregister from every channel (even on error) before returning.
func Select(cases ...Case) (int, Status, error) {
	if len(cases) == 0 {
		return -1, GenError, ErrNoCases
	}

	tok := newSelectToken()
	handles := make([]selectHandle, len(cases))
	for i, cs := range cases {
		handles[i] = cs.ch.registerWaiter(tok)
	}
	defer func() {
		for i, cs := range cases {
			cs.ch.unregisterWaiter(handles[i])
		}
	}()

	for {
		for i, cs := range cases {
			box := cs.box
			st, err := cs.ch.tryOpErased(cs.dir, &box)
			switch st {
			case ChannelFull, ChannelEmpty:
				continue
			default:
				if cs.dir == RecvDir && st == Success {
					cs.assign(box)
				}
				return i, st, err
			}
		}
		tok.wait()
	}
}
