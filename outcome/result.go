// Package outcome carries the success/failure contract returned by every
// domain operation: a value on success, a human-readable message either way.
package outcome

import "fmt"

// Result is the outcome of a domain operation. A failed Result may still
// carry a partial value (see FailWith).
type Result[T any] struct {
	value    T
	hasValue bool
	message  string
	ok       bool
}

// Pass builds a successful result.
func Pass[T any](value T, message string) Result[T] {
	return Result[T]{value: value, hasValue: true, message: message, ok: true}
}

// Fail builds a failed result with no value.
func Fail[T any](message string) Result[T] {
	return Result[T]{message: message}
}

// Failf builds a failed result with a formatted message.
func Failf[T any](format string, args ...any) Result[T] {
	return Result[T]{message: fmt.Sprintf(format, args...)}
}

// FailWith builds a failed result that still carries a partial value.
func FailWith[T any](value T, message string) Result[T] {
	return Result[T]{value: value, hasValue: true, message: message}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.ok
}

// Message returns the human-readable status message.
func (r Result[T]) Message() string {
	return r.message
}

// Get returns the value and whether one is present.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.hasValue
}

// Value returns the carried value. Reading the value of a failure that has
// none is a programming error and panics.
func (r Result[T]) Value() T {
	if !r.hasValue {
		panic(fmt.Sprintf("outcome: no value on failed result: %s", r.message))
	}
	return r.value
}

// Err converts a failure into an error for callers that bridge into
// error-returning code. It is nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	return &Rejection{Message: r.message}
}

// Rejection is the error form of a failed Result.
type Rejection struct {
	Message string
}

func (e *Rejection) Error() string {
	return e.Message
}

// Map transforms the value of a result, keeping its status and message.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{message: r.message, ok: r.ok, hasValue: r.hasValue}
	if r.hasValue {
		out.value = fn(r.value)
	}
	return out
}
