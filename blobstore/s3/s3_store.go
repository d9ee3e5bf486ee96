package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/mmcore/blobstore"
	"github.com/hupe1980/mmcore/internal/hash"
)

// Options configures a Store created with New.
type Options struct {
	Prefix string
	Region string

	// PartSize is the size of the ranged GETs and upload parts.
	// Default: 8MB
	PartSize int64

	// Concurrency is the number of parallel part transfers.
	// Default: 5
	Concurrency int
}

// Option configures New.
type Option func(*Options)

// WithPrefix sets the key prefix for all blobs.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion overrides the region from the shared AWS configuration.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithPartSize sets the transfer part size.
func WithPartSize(n int64) Option {
	return func(o *Options) { o.PartSize = n }
}

// WithConcurrency sets the number of parallel part transfers.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

func defaultOptions() Options {
	return Options{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
}

// Store implements blobstore.WritableStore for S3.
type Store struct {
	client     Client
	bucket     string
	prefix     string
	partSize   int64
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// New creates a store from the default AWS configuration chain
// (environment, shared config, instance role).
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return newStore(s3.NewFromConfig(cfg), bucket, o), nil
}

// NewStore creates a new S3 blob store around an existing client.
// rootPrefix is prepended to all keys (e.g. "databases/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	o := defaultOptions()
	o.Prefix = rootPrefix
	return newStore(client, bucket, o)
}

func newStore(client Client, bucket string, o Options) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   o.Prefix,
		partSize: o.PartSize,
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.PartSize = o.PartSize
			d.Concurrency = o.Concurrency
		}),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = o.PartSize
			u.Concurrency = o.Concurrency
		}),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open checks that the object exists and returns a handle to it.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &blob{
		client:     s.client,
		downloader: s.downloader,
		bucket:     s.bucket,
		key:        key,
		size:       aws.ToInt64(head.ContentLength),
	}, nil
}

// List returns all blob names with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}

// Put uploads data with CRC32C integrity validation. Blobs up to one part
// are sent with a single PutObject carrying the precomputed checksum; larger
// ones go through the multipart uploader.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)

	if int64(len(data)) <= s.partSize {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:         aws.String(s.bucket),
			Key:            aws.String(key),
			Body:           bytes.NewReader(data),
			ContentLength:  aws.Int64(int64(len(data))),
			ChecksumCRC32C: aws.String(crc32cBase64(data)),
		})
		return err
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(key),
		Body:              bytes.NewReader(data),
		ChecksumAlgorithm: types.ChecksumAlgorithmCrc32c,
	})
	return err
}

// crc32cBase64 returns the checksum in the base64 big-endian form S3 expects.
func crc32cBase64(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], hash.CRC32C(data))
	return base64.StdEncoding.EncodeToString(b[:])
}

var _ blobstore.WritableStore = (*Store)(nil)
