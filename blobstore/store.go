package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is a read-only view of database sources.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// List returns the names of all blobs starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// WritableStore is a Store that can also publish blobs.
type WritableStore interface {
	Store

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	Close() error
}

// Mappable is an optional interface for Blobs whose contents are already
// addressable in memory.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// Fetcher is an optional interface for Blobs that can retrieve their whole
// contents more efficiently than a sequence of ReadAt calls.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Streamer is an optional interface for Blobs that can be read as one
// stream. ReadAll prefers it when reads are rate limited, so the limit is
// charged as bytes arrive.
type Streamer interface {
	Stream(ctx context.Context) (io.ReadCloser, error)
}

// Source is a named in-memory database text.
type Source struct {
	Name string
	Text []byte
}
