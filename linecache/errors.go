package linecache

import (
	"errors"
	"fmt"
)

var (
	// ErrLineOutOfRange is returned when a line number lies outside the buffer.
	ErrLineOutOfRange = errors.New("linecache: line out of range")

	// ErrOffsetOutOfRange is returned when an offset lies outside [0, len].
	ErrOffsetOutOfRange = errors.New("linecache: offset out of range")

	// ErrBufferTooLarge is returned for buffers whose newline counts do not
	// fit the index.
	ErrBufferTooLarge = errors.New("linecache: buffer too large")
)

// RangeError describes a query outside the tracked buffer.
type RangeError struct {
	Kind  error // ErrLineOutOfRange or ErrOffsetOutOfRange
	Value int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %d (buffer length %d)", e.Kind, e.Value, e.Len)
}

func (e *RangeError) Unwrap() error {
	return e.Kind
}
