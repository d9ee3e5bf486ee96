// Package compress decodes compressed database sources.
//
// Sources whose name ends in ".zst" are zstd frames, ".lz4" are LZ4 frames.
// Everything else is passed through unchanged.
package compress
