// Package diag defines diagnostic records produced while processing a
// database and renders them for humans and tools.
//
// A Notation is positioned by a span relative to its Source, which in turn
// carries its own span within the database text; the absolute location of a
// notation is the sum of the two starts.
//
// # Formats
//
//	FormatCompact     set.mm:1204-1210:Error:undefined label label=ax-mp
//	FormatPositioned  set.mm:31:7: error: undefined label label=ax-mp
//	                  <source line>
//	                        ^^^^^^
//	FormatJSON        one JSON object per line (see Record)
//
// Positioned output resolves offsets through a linecache.Cache, so a
// Renderer is cheap to use for many notations against the same text.
package diag
