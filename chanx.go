// Package chanx implements a bounded, thread-safe, typed message channel
// with a multi-way Select primitive, in the spirit of Go's built-in
// channels and select statement but usable as an ordinary library type:
// a Channel[T] can be stored in a struct field, passed around, and
// selected on alongside Channel[T]s of other element types.
package chanx
