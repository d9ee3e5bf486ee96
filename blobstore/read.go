package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/mmcore/internal/compress"
	"github.com/hupe1980/mmcore/internal/conv"
	"github.com/hupe1980/mmcore/resource"
)

// readChunk is the size of the ReadAt calls used for blobs that are neither
// mappable nor fetchable.
const readChunk = 1 << 20

// Content is the full text of a source.
type Content struct {
	Name string
	Data []byte

	// Mapped reports whether Data aliases the blob (mmap or memory)
	// rather than a private copy.
	Mapped bool

	// Compressed reports whether Data was decompressed from the blob.
	Compressed bool

	release func() error
}

// Close releases the memory budget held by c and, for mapped content, the
// mapping. Data must not be used afterwards.
func (c *Content) Close() error {
	if c == nil || c.release == nil {
		return nil
	}
	release := c.release
	c.release = nil
	return release()
}

// ReadAll returns the full contents of the named blob.
//
// Mappable blobs are returned without copying. Other blobs are fetched
// whole when ctrl sets no IO limit, and otherwise streamed or read in
// chunks metered by that limit. Copies are charged against ctrl's memory
// budget until the Content is closed. Names ending in ".zst" or ".lz4" are
// decompressed.
func ReadAll(ctx context.Context, store Store, name string, ctrl *resource.Controller) (*Content, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("blobstore: open %s: %w", name, err)
	}

	kind := compress.KindOf(name)

	if m, ok := blob.(Mappable); ok && kind == compress.None {
		data, err := m.Bytes()
		if err != nil {
			_ = blob.Close()
			return nil, fmt.Errorf("blobstore: map %s: %w", name, err)
		}
		return &Content{Name: name, Data: data, Mapped: true, release: blob.Close}, nil
	}

	defer blob.Close()

	raw, held, err := readBlob(ctx, blob, ctrl)
	if err != nil {
		return nil, fmt.Errorf("blobstore: read %s: %w", name, err)
	}

	data := raw
	if kind != compress.None {
		data, err = compress.Decompress(kind, raw, 0)
		if err != nil {
			ctrl.ReleaseMemory(held)
			return nil, fmt.Errorf("blobstore: %s: %w", name, err)
		}

		if err := ctrl.AcquireMemory(ctx, int64(len(data))); err != nil {
			ctrl.ReleaseMemory(held)
			return nil, err
		}
		ctrl.ReleaseMemory(held)
		held = int64(len(data))
	}

	return &Content{
		Name:       name,
		Data:       data,
		Compressed: kind != compress.None,
		release: func() error {
			ctrl.ReleaseMemory(held)
			return nil
		},
	}, nil
}

// readBlob returns the raw bytes of blob and the number of bytes charged
// to the memory budget for them.
func readBlob(ctx context.Context, blob Blob, ctrl *resource.Controller) ([]byte, int64, error) {
	if m, ok := blob.(Mappable); ok {
		data, err := m.Bytes()
		return data, 0, err
	}

	size := blob.Size()
	if err := ctrl.AcquireMemory(ctx, size); err != nil {
		return nil, 0, err
	}

	data, err := fetch(ctx, blob, size, ctrl)
	if err != nil {
		ctrl.ReleaseMemory(size)
		return nil, 0, err
	}
	return data, size, nil
}

func fetch(ctx context.Context, blob Blob, size int64, ctrl *resource.Controller) ([]byte, error) {
	n, err := conv.SizeToInt(size)
	if err != nil {
		return nil, err
	}

	if f, ok := blob.(Fetcher); ok && !ctrl.IOLimited() {
		return f.Fetch(ctx)
	}

	if s, ok := blob.(Streamer); ok {
		return stream(ctx, s, n, ctrl)
	}

	buf := make([]byte, n)
	for off := int64(0); off < size; {
		chunk := min(int64(readChunk), size-off)
		if err := ctrl.AcquireIO(ctx, int(chunk)); err != nil {
			return nil, err
		}

		got, err := blob.ReadAt(ctx, buf[off:off+chunk], off)
		off += int64(got)
		if err != nil && !(errors.Is(err, io.EOF) && off == size) {
			return nil, err
		}
		if got == 0 {
			return nil, io.ErrUnexpectedEOF
		}
	}
	return buf, nil
}

// stream reads exactly n bytes from s, metered by ctrl's IO limit.
func stream(ctx context.Context, s Streamer, n int, ctrl *resource.Controller) ([]byte, error) {
	rc, err := s.Stream(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, n)
	if _, err := io.ReadFull(resource.NewRateLimitedReader(ctx, rc, ctrl), buf); err != nil {
		return nil, err
	}
	return buf, nil
}
