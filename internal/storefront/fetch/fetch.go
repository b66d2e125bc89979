// Package fetch models the outcome of a collaborator call as a value:
// Ok carries data, Unavailable carries the reason it could not be had.
// Callers map Unavailable to a default instead of branching on errors.
package fetch

import "errors"

// ErrEmpty marks a successful call that returned nothing usable
var ErrEmpty = errors.New("empty result")

// Result is Ok(value) or Unavailable(err)
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

func Unavailable[T any](err error) Result[T] {
	if err == nil {
		err = ErrEmpty
	}
	return Result[T]{err: err}
}

// From wraps a conventional (value, error) pair
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Unavailable[T](err)
	}
	return Ok(value)
}

func (r Result[T]) IsOk() bool { return r.ok }

// Err is nil for Ok results
func (r Result[T]) Err() error { return r.err }

func (r Result[T]) Value() (T, bool) { return r.value, r.ok }

// OrDefault returns the value when Ok and def otherwise
func (r Result[T]) OrDefault(def T) T {
	if r.ok {
		return r.value
	}
	return def
}

// NonEmpty demotes an Ok but empty list to Unavailable(ErrEmpty)
func NonEmpty[T any](r Result[[]T]) Result[[]T] {
	if r.ok && len(r.value) == 0 {
		return Unavailable[[]T](ErrEmpty)
	}
	return r
}

// Map transforms an Ok value and passes Unavailable through unchanged
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.ok {
		return Unavailable[U](r.err)
	}
	return Ok(f(r.value))
}
