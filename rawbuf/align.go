package rawbuf

import (
	"encoding/binary"
	"unsafe"
)

// Alignment is the byte alignment used by AllocAligned (one cache line).
const Alignment = 64

// WordSize is the width in bytes of the words returned by Word32.
const WordSize = 4

// AllocAligned allocates a byte slice of the given size whose first byte
// sits on an Alignment boundary.
//
// It allocates slightly more memory than requested; the underlying array is
// kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // address is only inspected, never dereferenced
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AlignedWords locates the maximal 4-byte aligned interior of buf. skip is
// the number of leading bytes before the first aligned address and n is the
// number of whole aligned words that follow. Buffers shorter than one word
// report n == 0.
func AlignedWords(buf []byte) (skip, n int) {
	if len(buf) < WordSize {
		return 0, 0
	}

	start := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // address is only inspected, never dereferenced
	end := start + uintptr(len(buf))

	skip = int(-start & (WordSize - 1))
	n = int(((end &^ (WordSize - 1)) - (start + uintptr(skip))) / WordSize)
	return skip, n
}

// Word32 reads the native-endian 32-bit word at buf[off:off+4].
func Word32(buf []byte, off int) uint32 {
	return binary.NativeEndian.Uint32(buf[off : off+WordSize])
}
