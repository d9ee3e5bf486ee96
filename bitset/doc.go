// Package bitset provides a set of small non-negative integers that reduces
// to plain bit operations for the common case.
//
// # Layout
//
// The first 64 indices live inline in a single word. Indices at or above 64
// spill into an overflow slice that is only allocated the first time such an
// index is set, so an empty or small set never touches the heap:
//
//	head: bits [0, 64)
//	tail: word j covers bits [(j+1)*64, (j+2)*64)
//
// The proof checker uses one Bitset per verification scope to track
// mandatory and disjoint variables. Real databases rarely need more than
// ~40 distinct indices per scope, so the overflow path is kept correct but
// is not tuned for large sparse universes.
//
// # Thread Safety
//
// A Bitset is not safe for concurrent use. Use Clone to give another
// goroutine an independent copy.
package bitset
