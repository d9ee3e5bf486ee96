package linecache

import (
	"bytes"
	"math"
	"sort"
)

const (
	pageSize  = 256
	blockSize = 128 // largest run an int8 counter can absorb
)

// maxLen is the largest buffer the uint32 samples can describe.
const maxLen = math.MaxUint32 - 1

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// Buffer is a handle to a buffer tracked by a Cache.
type Buffer struct {
	id   uint64
	data []byte
}

// Bytes returns the tracked contents.
func (b Buffer) Bytes() []byte { return b.data }

// Len returns the length of the tracked contents.
func (b Buffer) Len() int { return len(b.data) }

type key struct {
	id  uint64
	len int
}

// Cache memoizes line indexes for tracked buffers.
type Cache struct {
	next    uint64
	indexes map[key][]uint32
	builds  int
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{indexes: make(map[key][]uint32)}
}

// Track registers data under a new handle.
func (c *Cache) Track(data []byte) Buffer {
	c.next++
	return Buffer{id: c.next, data: data}
}

// Retrack returns b with its contents replaced by data. It is meant for
// buffers that grew by appending; the grown contents get their own index.
func (c *Cache) Retrack(b Buffer, data []byte) Buffer {
	b.data = data
	return b
}

// Builds returns the number of indexes built so far.
func (c *Cache) Builds() int { return c.builds }

// Len returns the number of cached indexes.
func (c *Cache) Len() int { return len(c.indexes) }

// Forget drops the indexes of b. The handle stays usable; a later lookup
// builds a fresh index.
func (c *Cache) Forget(b Buffer) {
	for k := range c.indexes {
		if k.id == b.id {
			delete(c.indexes, k)
		}
	}
}

// Reset drops all cached indexes.
func (c *Cache) Reset() {
	clear(c.indexes)
}

func (c *Cache) index(b Buffer) ([]uint32, error) {
	k := key{id: b.id, len: len(b.data)}
	if idx, ok := c.indexes[k]; ok {
		return idx, nil
	}

	if uint64(len(b.data)) >= maxLen {
		return nil, ErrBufferTooLarge
	}

	idx := buildIndex(b.data)
	c.indexes[k] = idx
	c.builds++
	return idx, nil
}

// buildIndex records the running newline count at every page boundary.
// samples[k] is the number of newlines in buf[:k*pageSize].
func buildIndex(buf []byte) []uint32 {
	samples := make([]uint32, 1, len(buf)/pageSize+1)

	var count uint32
	for len(buf) >= pageSize {
		page := buf[:pageSize]
		buf = buf[pageSize:]

		for len(page) >= blockSize {
			// counting down keeps the comparison result directly usable
			var acc int8
			for _, ch := range page[:blockSize] {
				if ch == '\n' {
					acc--
				}
			}
			page = page[blockSize:]
			count += uint32(-int(acc))
		}
		samples = append(samples, count)
	}

	return samples
}

// lineStart returns the offset of the first byte of the 0-based line.
func lineStart(buf []byte, samples []uint32, line int) (int, bool) {
	if line < 0 {
		return 0, false
	}

	// first page whose sample reaches the line
	page := sort.Search(len(samples), func(i int) bool {
		return int(samples[i]) >= line
	})
	if page == 0 {
		return 0, line == 0
	}

	// the previous page starts before the line, so scan forward from it
	at := int(samples[page-1])
	pos := (page - 1) * pageSize
	for at < line {
		if pos >= len(buf) {
			return 0, false
		}
		if buf[pos] == '\n' {
			at++
		}
		pos++
	}

	return pos, true
}

// Position maps offset to a 1-based line and column. offset may equal the
// buffer length, denoting end of file.
func (c *Cache) Position(b Buffer, offset int) (Position, error) {
	if offset < 0 || offset > len(b.data) {
		return Position{}, &RangeError{Kind: ErrOffsetOutOfRange, Value: offset, Len: len(b.data)}
	}

	samples, err := c.index(b)
	if err != nil {
		return Position{}, err
	}

	base := offset / pageSize * pageSize
	line := int(samples[offset/pageSize]) + bytes.Count(b.data[base:offset], []byte{'\n'})

	start, _ := lineStart(b.data, samples, line)

	return Position{Line: line + 1, Column: offset - start + 1}, nil
}

// Offset maps a 1-based line to the offset of its first byte. The line
// after a trailing newline starts at the buffer length.
func (c *Cache) Offset(b Buffer, line int) (int, error) {
	samples, err := c.index(b)
	if err != nil {
		return 0, err
	}

	start, ok := lineStart(b.data, samples, line-1)
	if !ok {
		return 0, &RangeError{Kind: ErrLineOutOfRange, Value: line, Len: len(b.data)}
	}
	return start, nil
}

// LineEnd returns the offset of the first '\n' at or after offset, or the
// buffer length if there is none.
func LineEnd(data []byte, offset int) int {
	offset = max(offset, 0)
	if offset >= len(data) {
		return len(data)
	}
	if i := bytes.IndexByte(data[offset:], '\n'); i >= 0 {
		return offset + i
	}
	return len(data)
}
