// Package mmap maps database files read-only into memory.
//
// Databases are scanned front to back for chapter headers and then sliced
// into segments, so a mapping avoids copying the file through the page
// cache into the Go heap and lets segments alias the file contents.
//
//	m, err := mmap.Open("set.mm")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op.
//
// Close is idempotent. Callers must not touch slices obtained from Bytes or
// Slice after Close returns.
package mmap
