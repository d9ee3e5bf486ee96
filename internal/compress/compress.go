package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Kind identifies a compression format.
type Kind uint8

const (
	// None indicates no compression.
	None Kind = iota
	// LZ4 indicates an LZ4 frame.
	LZ4
	// Zstd indicates a zstd frame.
	Zstd
)

// ErrUnknownKind is returned for an unsupported Kind.
var ErrUnknownKind = errors.New("compress: unknown kind")

// String returns the file extension of the kind without the dot.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zst"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// KindOf derives the compression kind from a source name.
func KindOf(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return Zstd
	case strings.HasSuffix(name, ".lz4"):
		return LZ4
	default:
		return None
	}
}

// Strip removes the compression extension from name.
func Strip(name string) string {
	if k := KindOf(name); k != None {
		return strings.TrimSuffix(name, "."+k.String())
	}
	return name
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress encodes data as a single frame of the given kind.
func Compress(kind Kind, data []byte) ([]byte, error) {
	switch kind {
	case None:
		return data, nil
	case Zstd:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ErrUnknownKind
	}
}

// Decompress decodes a whole frame. sizeHint, if positive, presizes the
// output buffer.
func Decompress(kind Kind, data []byte, sizeHint int) ([]byte, error) {
	switch kind {
	case None:
		return data, nil
	case Zstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(data, make([]byte, 0, max(sizeHint, 0)))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		return out, nil
	case LZ4:
		buf := bytes.NewBuffer(make([]byte, 0, max(sizeHint, 0)))
		if _, err := io.Copy(buf, lz4.NewReader(bytes.NewReader(data))); err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, ErrUnknownKind
	}
}

// NewReader returns a reader decoding r as the given kind.
func NewReader(kind Kind, r io.Reader) (io.ReadCloser, error) {
	switch kind {
	case None:
		return io.NopCloser(r), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, ErrUnknownKind
	}
}
