// Package fs provides the filesystem operations behind atomic local writes,
// with a fault injecting implementation for tests.
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: wraps another FileSystem and fails writes, syncs, closes
//     or renames on demand
//
// Operations take no context.Context: local file operations are not
// interruptible at the syscall level. Slow remote reads go through
// blobstore.Blob instead.
package fs
