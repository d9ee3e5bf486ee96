package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint returns the 64-bit xxHash of data.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
