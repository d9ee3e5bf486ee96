// Package conv provides checked integer conversions for sizes read from
// untrusted sources such as object store headers.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead.
package conv
