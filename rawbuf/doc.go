// Package rawbuf provides bulk copy, append and word-read primitives over
// plain-data buffers.
//
// These helpers sit on the parser and segmenter hot paths, where most copies
// are only one or two elements long. They skip per-element work but never
// skip bounds checks that guard memory safety: CopyRange validates its range
// against the current length before copying and reports a *RangeError
// instead of truncating.
//
// # Aligned Access
//
// AlignedWords and Word32 expose the maximal 4-byte aligned interior of a
// byte slice as a sequence of 32-bit words. Reads go through a 4-byte window
// copied out of the slice, never through pointer reinterpretation.
//
// AllocAligned returns buffers that start on a 64-byte boundary, which lets
// tests and benchmarks pin a buffer to a known alignment phase.
package rawbuf
