package rawbuf

import "slices"

// Truncate returns buf with its length reset to zero. Capacity is kept for
// reuse and no per-element work is done, so it is only meant for element
// types without cleanup obligations.
func Truncate[T any](buf []T) []T {
	return buf[:0]
}

// shortCopy copies src into dst, which must have the same length. Most
// copies on the verifier hot path are one or two elements long.
func shortCopy[T any](dst, src []T) {
	switch len(src) {
	case 1:
		dst[0] = src[0]
	case 2:
		*(*[2]T)(dst) = [2]T(src)
	default:
		copy(dst, src)
	}
}

// Append appends all elements of src to dst, reserving capacity first, and
// returns the extended slice.
func Append[T any](dst, src []T) []T {
	if len(src) == 0 {
		return dst
	}

	n := len(dst)
	dst = slices.Grow(dst, len(src))[:n+len(src)]
	shortCopy(dst[n:], src)
	return dst
}

// CopyRange appends a copy of buf[start:end] to buf and returns the
// extended slice.
//
// The range is checked against the current length before anything is
// copied. On failure buf is returned unchanged together with a *RangeError.
func CopyRange(buf []byte, start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(buf) {
		return buf, &RangeError{Start: start, End: end, Len: len(buf)}
	}

	count := end - start
	if count == 0 {
		return buf, nil
	}

	n := len(buf)
	buf = slices.Grow(buf, count)[:n+count]
	// The source lies entirely before n, so it cannot overlap the
	// destination even after a reallocation.
	shortCopy(buf[n:], buf[start:end])
	return buf, nil
}
