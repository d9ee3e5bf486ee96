package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/blobstore/minio"
	"github.com/hupe1980/mmcore/blobstore/s3"
)

// storeLocation is a parsed --store value.
type storeLocation struct {
	Scheme   string // "file", "s3" or "minio"
	Endpoint string // minio only
	Bucket   string
	Prefix   string
	Dir      string // file only
}

func parseStoreURI(uri string) (storeLocation, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
		if bucket == "" {
			return storeLocation{}, fmt.Errorf("invalid store %q: missing bucket", uri)
		}
		return storeLocation{Scheme: "s3", Bucket: bucket, Prefix: prefix}, nil

	case strings.HasPrefix(uri, "minio://"):
		parts := strings.SplitN(strings.TrimPrefix(uri, "minio://"), "/", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return storeLocation{}, fmt.Errorf("invalid store %q: expected minio://host/bucket[/prefix]", uri)
		}
		loc := storeLocation{Scheme: "minio", Endpoint: parts[0], Bucket: parts[1]}
		if len(parts) == 3 {
			loc.Prefix = parts[2]
		}
		return loc, nil

	default:
		return storeLocation{Scheme: "file", Dir: strings.TrimPrefix(uri, "file://")}, nil
	}
}

// resolveStore opens the store named by uri. With an empty uri the database
// argument is taken as a local path and the store is its directory.
func resolveStore(ctx context.Context, uri, database string) (blobstore.Store, string, error) {
	if uri == "" {
		if database == "" {
			return nil, "", nil
		}
		return blobstore.NewLocalStore(filepath.Dir(database)), filepath.Base(database), nil
	}

	loc, err := parseStoreURI(uri)
	if err != nil {
		return nil, "", err
	}

	store, err := openStore(ctx, loc)
	if err != nil {
		return nil, "", err
	}
	if database == "" {
		return store, "", nil
	}
	return store, path.Clean(filepath.ToSlash(database)), nil
}

func openStore(ctx context.Context, loc storeLocation) (blobstore.WritableStore, error) {
	switch loc.Scheme {
	case "s3":
		store, err := s3.New(ctx, loc.Bucket, s3.WithPrefix(loc.Prefix))
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return store, nil

	case "minio":
		client, err := miniogo.New(loc.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, loc.Bucket, loc.Prefix), nil

	default:
		dir := loc.Dir
		if dir == "" {
			dir = "."
		}
		return blobstore.NewLocalStore(dir), nil
	}
}
