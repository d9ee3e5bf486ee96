// Package blobstore provides access to database sources.
//
// Store is the read interface; WritableStore adds atomic publishing.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, blobs are memory-mapped
//   - MemoryStore: in-memory sources (virtual "--text NAME=TEXT" inputs, tests)
//   - s3.Store: Amazon S3, whole-object downloads with the transfer manager
//   - minio.Store: MinIO and other S3-compatible services
//
// # Reading Sources
//
// ReadAll returns a source's full text and hides the differences between
// backends:
//
//	content, err := blobstore.ReadAll(ctx, store, "set.mm.zst", ctrl)
//	if err != nil { ... }
//	defer content.Close()
//
// Mappable blobs are returned without copying. Without an IO limit, blobs
// implementing Fetcher are downloaded in one call. With a limit, Streamer
// bodies are read through a rate-limited reader and all other blobs in
// metered chunks. Copies are budgeted by a resource.Controller. Names ending in
// ".zst" or ".lz4" are decompressed transparently.
package blobstore
