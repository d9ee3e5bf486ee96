package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

// Int64ToInt converts int64 to int safely.
func Int64ToInt(v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, fmt.Errorf("%w: %d cannot be converted to int", ErrOverflow, v)
	}
	return int(v), nil
}

// SizeToInt converts a byte count reported by a store to int. Negative
// sizes are rejected.
func SizeToInt(v int64) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrOverflow, v)
	}
	return Int64ToInt(v)
}
