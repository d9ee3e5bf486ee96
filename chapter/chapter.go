package chapter

import (
	"github.com/hupe1980/mmcore/rawbuf"
)

// Marker is the horizontal rule that opens every chapter header.
const Marker = "#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#"

const (
	// "#*#*" read as a little-endian word, "*#*#" read as a big-endian one.
	wordHashStar = 0x2a232a23
	// "*#*#" read as a little-endian word, "#*#*" read as a big-endian one.
	wordStarHash = 0x232a232a

	// stride is the number of words skipped between probes. 19 words are
	// 76 bytes, so at least one probe lands fully inside any 79-byte rule.
	stride = 19
)

func isPunct(c byte) bool { return c == '#' || c == '*' }

func isEOL(c byte) bool { return c == '\r' || c == '\n' }

// hunt returns the offset of an aligned word holding four consecutive rule
// characters. It is guaranteed to report a hit if buf holds a run of at
// least 79 of them.
func hunt(buf []byte) (int, bool) {
	skip, n := rawbuf.AlignedWords(buf)
	for i := 0; i < n; i += stride {
		off := skip + i*rawbuf.WordSize
		if w := rawbuf.Word32(buf, off); w == wordHashStar || w == wordStarHash {
			return off, true
		}
	}
	return 0, false
}

// validate checks whether the rule character at mid belongs to a real
// chapter header and returns the offset of its opening '$'.
func validate(buf []byte, mid int) (int, bool) {
	// back up to the beginning of the line
	for mid > 0 && isPunct(buf[mid]) {
		mid--
	}
	if !isEOL(buf[mid]) {
		return 0, false
	}

	// the line must be the full rule
	if len(buf)-mid < len(Marker)+1 || string(buf[mid+1:mid+1+len(Marker)]) != Marker {
		return 0, false
	}

	for mid > 0 && isEOL(buf[mid]) {
		mid--
	}

	// the previous line must be exactly "$("
	if mid >= 2 && buf[mid] == '(' && buf[mid-1] == '$' && isEOL(buf[mid-2]) {
		return mid - 1, true
	}
	return 0, false
}

// Find returns the offset of the '$' opening the first chapter header in
// buf. It reports false if there is none.
func Find(buf []byte) (int, bool) {
	offset := 0
	for {
		mid, ok := hunt(buf)
		if !ok {
			return 0, false
		}

		if pos, ok := validate(buf, mid); ok {
			return offset + pos, true
		}

		buf = buf[mid+1:]
		offset += mid + 1
	}
}

// FindAll returns the offsets of all chapter headers in buf in ascending
// order.
func FindAll(buf []byte) []int {
	var out []int
	base := 0
	for base < len(buf) {
		pos, ok := Find(buf[base:])
		if !ok {
			break
		}
		out = append(out, base+pos)
		base += pos + 1
	}
	return out
}
