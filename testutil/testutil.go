package testutil

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
)

// ChapterRule is the 79-character horizontal rule that opens a chapter
// header.
const ChapterRule = "#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#*#"

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Word returns n random alphanumeric characters.
func (r *RNG) Word(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wordLocked(n)
}

func (r *RNG) wordLocked(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return b
}

// Text returns roughly n bytes of printable text split into lines of 1-80
// characters. It never contains '#', '*' or '$'.
func (r *RNG) Text(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textLocked(n)
}

func (r *RNG) textLocked(n int) []byte {
	var buf bytes.Buffer
	buf.Grow(n + 81)
	for buf.Len() < n {
		buf.Write(r.wordLocked(1 + r.rand.Intn(80)))
		if r.rand.Intn(8) == 0 {
			buf.WriteString("\r\n")
		} else {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// Database returns a synthetic database of the given number of chapters,
// each followed by about bodySize bytes of text, together with the offset of
// the '$' that opens every chapter header.
//
// The text contains decoys that must not be mistaken for chapter headers:
// closing rules, short rules and section headers.
func (r *RNG) Database(chapters, bodySize int) ([]byte, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString("$( Synthetic database $)\n")

	headers := make([]int, 0, chapters)
	for i := range chapters {
		buf.Write(r.textLocked(r.rand.Intn(bodySize + 1)))

		eol := "\n"
		if r.rand.Intn(4) == 0 {
			eol = "\r\n"
		}
		headers = append(headers, buf.Len())
		fmt.Fprintf(&buf, "$(%s%s%s  CHAPTER %d  GENERATED%s%s%s$)%s",
			eol, ChapterRule, eol, i+1, eol, ChapterRule, eol, eol)

		switch r.rand.Intn(3) {
		case 0:
			// section header, same shape with a different rule
			fmt.Fprintf(&buf, "$(\n%s\n  Section %d\n$)\n", bytes.Repeat([]byte("=-"), 39), i)
		case 1:
			// rule fragment too short to be a header
			fmt.Fprintf(&buf, "$(\n%s\n$)\n", ChapterRule[:40])
		}
	}
	buf.Write(r.textLocked(bodySize / 2))

	return buf.Bytes(), headers
}

// FixedWidthLines returns rows copies of line, each terminated by '\n'.
func FixedWidthLines(line []byte, rows int) []byte {
	buf := make([]byte, 0, rows*(len(line)+1))
	for range rows {
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	return buf
}
