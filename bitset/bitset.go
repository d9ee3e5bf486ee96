package bitset

import (
	"fmt"
	"iter"
	"math/bits"
	"strconv"
	"strings"
)

// wordBits is the number of indices held by one word.
const wordBits = 64

// Bitset is a set of non-negative integers with an inline first word and
// an optional overflow slice.
//
// The zero value is an empty set ready to use.
type Bitset struct {
	head uint64
	// tail is a pointer so the empty case costs one word instead of three.
	tail *[]uint64
}

// New creates a new empty Bitset. It does not allocate.
func New() Bitset {
	return Bitset{}
}

func checkBit(bit int) {
	if bit < 0 {
		panic(fmt.Sprintf("bitset: negative index %d", bit))
	}
}

// locate returns the tail word index and the mask for bit >= wordBits.
func locate(bit int) (int, uint64) {
	return bit/wordBits - 1, uint64(1) << uint(bit%wordBits)
}

func (b *Bitset) words() []uint64 {
	if b.tail == nil {
		return nil
	}
	return *b.tail
}

// growTail makes sure the overflow slice holds at least n words and returns
// it. Growth is by exact need; the slice never shrinks.
func (b *Bitset) growTail(n int) []uint64 {
	if b.tail == nil {
		t := make([]uint64, n)
		b.tail = &t
		return t
	}

	t := *b.tail
	if len(t) < n {
		t = append(t, make([]uint64, n-len(t))...)
		*b.tail = t
	}
	return t
}

// Set adds bit to the set.
//
// Set panics if bit is negative.
func (b *Bitset) Set(bit int) {
	if uint(bit) < wordBits {
		b.head |= 1 << uint(bit)
		return
	}
	checkBit(bit)

	word, mask := locate(bit)
	t := b.growTail(word + 1)
	t[word] |= mask
}

// Has reports whether bit is in the set. Indices beyond the allocated
// storage, including negative ones, report false.
func (b *Bitset) Has(bit int) bool {
	if uint(bit) < wordBits {
		return b.head&(1<<uint(bit)) != 0
	}
	if bit < 0 {
		return false
	}

	word, mask := locate(bit)
	t := b.words()
	return word < len(t) && t[word]&mask != 0
}

// Replace adds bit to the set and returns whether it was already present.
// It is equivalent to calling Has followed by Set.
//
// Replace panics if bit is negative.
func (b *Bitset) Replace(bit int) bool {
	if uint(bit) < wordBits {
		mask := uint64(1) << uint(bit)
		old := b.head&mask != 0
		b.head |= mask
		return old
	}
	checkBit(bit)

	word, mask := locate(bit)
	t := b.words()

	var old bool
	if word >= len(t) {
		// Fresh words are zero, so the bit cannot have been present.
		t = b.growTail(word + 1)
	} else {
		old = t[word]&mask != 0
	}
	t[word] |= mask
	return old
}

// Or adds every member of other to b. Words of b beyond the length of
// other's overflow are left untouched. other is not modified.
func (b *Bitset) Or(other *Bitset) {
	b.head |= other.head
	if other.tail == nil {
		return
	}

	src := *other.tail
	dst := b.growTail(len(src))
	for i, w := range src {
		dst[i] |= w
	}
}

// Clone returns a deep copy of b. The copy never shares overflow storage
// with the original.
func (b *Bitset) Clone() Bitset {
	c := Bitset{head: b.head}
	if b.tail != nil {
		t := make([]uint64, len(*b.tail))
		copy(t, *b.tail)
		c.tail = &t
	}
	return c
}

// All returns an iterator over the members of the set in ascending order.
// Each call starts over from the lowest member.
func (b *Bitset) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		w := b.head
		offset := 0
		tail := b.words()

		for {
			for w == 0 {
				if len(tail) == 0 {
					return
				}
				offset += wordBits
				w = tail[0]
				tail = tail[1:]
			}

			tz := bits.TrailingZeros64(w)
			// clear the lowest set bit
			w &= w - 1

			if !yield(offset + tz) {
				return
			}
		}
	}
}

// AppendTo appends all members in ascending order to buf and returns the
// extended slice.
func (b *Bitset) AppendTo(buf []int) []int {
	for w := b.head; w != 0; w &= w - 1 {
		buf = append(buf, bits.TrailingZeros64(w))
	}
	for i, w := range b.words() {
		base := (i + 1) * wordBits
		for ; w != 0; w &= w - 1 {
			buf = append(buf, base+bits.TrailingZeros64(w))
		}
	}
	return buf
}

// Len returns the number of members.
func (b *Bitset) Len() int {
	n := bits.OnesCount64(b.head)
	for _, w := range b.words() {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (b *Bitset) IsEmpty() bool {
	if b.head != 0 {
		return false
	}
	for _, w := range b.words() {
		if w != 0 {
			return false
		}
	}
	return true
}

// String formats the set as {a b c}.
func (b *Bitset) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for bit := range b.All() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteString(strconv.Itoa(bit))
	}
	sb.WriteByte('}')
	return sb.String()
}
