// Package minio provides a blobstore.Store for MinIO and other
// S3-compatible services (Ceph, Garage, SeaweedFS).
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "metamath", "databases/")
//	db, err := mmcore.Open(store).Load(ctx, "set.mm")
//
// Whole-object reads stream a single GET; partial reads use ranged GETs.
package minio
