// Package wakelist implements the subscriber registry collaborator: an
// unordered collection of wake tokens, supporting O(1) insert/remove
// and O(n) find-by-identity enumeration.
//
// container/list, the stdlib's own doubly-linked list, backs this
// registry directly (see DESIGN.md) — there is no pack example of a
// third-party registry type that fits better.
package wakelist

import "container/list"

// Token is the opaque wake handle a List stores. The List never
// dereferences it beyond pointer identity (for Find) and handing it
// back to ForEach's callback.
type Token any

// Handle identifies a previously-inserted Token for O(1) removal.
type Handle struct {
	elem *list.Element
}

// List is the subscriber registry. The zero value is not usable; use
// New. A List has no internal synchronization — callers hold the
// owning channel's lock for every call, including ForEach.
type List struct {
	l *list.List
}

// New creates an empty registry.
func New() *List {
	return &List{l: list.New()}
}

// Insert adds tok to the registry and returns a handle for later
// removal. O(1) amortized.
func (s *List) Insert(tok Token) Handle {
	return Handle{elem: s.l.PushBack(tok)}
}

// Remove removes the entry identified by h. O(1). container/list
// tracks which list an element belongs to, so removing an already-
// removed handle is a safe no-op.
func (s *List) Remove(h Handle) {
	if h.elem == nil {
		return
	}
	s.l.Remove(h.elem)
}

// Find returns the handle for tok by pointer identity, and whether it
// was present. O(n).
func (s *List) Find(tok Token) (Handle, bool) {
	for e := s.l.Front(); e != nil; e = e.Next() {
		if e.Value == tok {
			return Handle{elem: e}, true
		}
	}
	return Handle{}, false
}

// ForEach calls fn once per currently-registered token, in no
// particular order. fn must not mutate the List.
func (s *List) ForEach(fn func(Token)) {
	for e := s.l.Front(); e != nil; e = e.Next() {
		fn(e.Value)
	}
}

// Len returns the number of registered tokens.
func (s *List) Len() int { return s.l.Len() }
