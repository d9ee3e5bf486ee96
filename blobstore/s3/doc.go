// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("databases/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	session := mmcore.Open(store)
//	db, err := session.Load(ctx, "set.mm.zst")
//
// # Features
//
//   - Whole-object downloads with the transfer manager (parallel ranged GETs)
//   - Range reads for partial fetches
//   - Uploads with CRC32C integrity validation
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
