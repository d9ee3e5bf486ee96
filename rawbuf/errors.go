package rawbuf

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is the sentinel wrapped by every *RangeError.
var ErrOutOfRange = errors.New("rawbuf: range out of bounds")

// RangeError reports a copy range that does not fit the buffer.
//
// errors.Is(err, ErrOutOfRange) holds for every RangeError.
type RangeError struct {
	Start int
	End   int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("rawbuf: range %d..%d out of range for buffer of length %d", e.Start, e.End, e.Len)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }
