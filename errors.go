package gostreams

import (
	"errors"
	"fmt"
)

// ErrBufferOverflow is the error used to terminate a nested stream whose
// producer emitted more elements than its granted credit, overflowing the
// prefetch buffer.
var ErrBufferOverflow = errors.New("nested producer exceeded its granted credit")

// errNonPositiveRequest reports a Request call with n == 0. The request is
// ignored and the error goes to the fallback handler.
var errNonPositiveRequest = errors.New("request amount must be positive")

// errNilNestedStream reports a mapper that returned a nil publisher.
var errNilNestedStream = errors.New("mapper returned a nil publisher")

// A MapperError wraps a mapper failure together with the outer element that
// caused it.
type MapperError[T any] struct {
	// Element is the outer stream's element the mapper rejected.
	Element T

	// Err is the mapper's error.
	Err error
}

// Error implements error.
func (e *MapperError[T]) Error() string {
	return fmt.Sprintf("map element %v: %v", e.Element, e.Err)
}

// Unwrap returns the mapper's error.
func (e *MapperError[T]) Unwrap() error {
	return e.Err
}
