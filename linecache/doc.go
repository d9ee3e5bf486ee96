// Package linecache maps byte offsets in a database buffer to 1-based
// (line, column) positions and back.
//
// The first query against a buffer builds an index holding the running
// newline count at every 256-byte page boundary; later queries reuse it and
// only scan within one page. Indexes are keyed by an explicit buffer handle
// plus the buffer length, so a buffer that grows by appending gets a fresh
// index while an unchanged one never pays twice.
//
// # Usage
//
//	cache := linecache.New()
//	b := cache.Track(text)
//
//	pos, err := cache.Position(b, offset) // pos.Line, pos.Column
//	start, err := cache.Offset(b, pos.Line)
//
// A Cache is meant to be short-lived: one per rendering pass. It is not
// safe for concurrent use.
package linecache
