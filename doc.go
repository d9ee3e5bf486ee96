// Package mmcore is the performance substrate of a Metamath verifier.
//
// It loads database text from a blob store, splits it at chapter headers into
// fingerprinted segments so an incremental verifier can skip unchanged work,
// and renders diagnostics with line and column positions.
//
// # Quick Start
//
//	ctx := context.Background()
//	s := mmcore.Open(blobstore.NewLocalStore("./db"), mmcore.WithJobs(4))
//	defer s.Close()
//
//	db, _ := s.Load(ctx, "set.mm")
//	fmt.Println(len(db.Segments), db.Changed.GetCardinality())
//
// Virtual sources shadow the store, which is how editors feed unsaved text:
//
//	db, _ := s.Load(ctx, "set.mm", blobstore.Source{Name: "set.mm", Text: buf})
//
// # Diagnostics
//
// The verifier reports notations back into the session; they are filtered by
// class and rendered against the database text:
//
//	s.Report(notes...)
//	s.Render(os.Stdout, db, s.Diagnostics(diag.Parse, diag.Scope))
//
// # Packages
//
//   - bitset: growable membership set with an inline first word
//   - rawbuf: truncate, append and range-copy helpers plus aligned buffers
//   - chapter: chapter header scanner
//   - linecache: lazily built offset to line/column index
//   - segment: header-aligned splitting, fingerprints and diffs
//   - diag: notations and their renderers
//   - blobstore: local, in-memory, S3 and MinIO sources
//   - resource: worker, memory and IO budgets
package mmcore
