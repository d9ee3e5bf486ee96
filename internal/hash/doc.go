// Package hash provides the hashes used to detect changed database text.
//
// # Fingerprints
//
// Segments are fingerprinted with 64-bit xxHash. Two segments with equal
// fingerprints and lengths are treated as unchanged between loads:
//
//	fp := hash.Fingerprint(buf[s.Start:s.End])
//
// # Checksums
//
// Whole sources carry a CRC32-Castagnoli checksum so an unchanged reload can
// be recognized without splitting it again:
//
//	sum := hash.CRC32C(data)
package hash
