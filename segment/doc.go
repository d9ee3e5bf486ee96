// Package segment cuts a database buffer into independently processable
// segments at chapter headers and detects which segments changed between
// two versions of a database.
//
// Small databases stay in one piece: splitting only happens when the buffer
// is larger than a threshold (1 MiB by default). Each segment after the
// first starts at the '$' of a chapter header.
//
//	segs, err := segment.Split(ctx, buf, segment.WithController(ctrl))
//	changed := segment.Diff(previous, segs) // indices into segs
//
// A segment is identified by its length and the xxHash of its bytes, so a
// chapter that moved because an earlier one grew is still recognized as
// unchanged.
package segment
