package minio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tendant/content-share/pkg/contentshare"
)

// ErrObjectNotFound is returned when the key does not exist in the bucket
var ErrObjectNotFound = errors.New("object not found")

// Config options for the MinIO backend
type Config struct {
	Endpoint  string // host:port, without scheme
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string

	// Create bucket on startup if it doesn't exist
	CreateBucketIfNotExist bool
}

// Backend is a MinIO implementation of the contentshare.BlobStore interface
type Backend struct {
	client *minio.Client
	bucket string
}

// New creates a new MinIO storage backend
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	if cfg.CreateBucketIfNotExist {
		exists, err := client.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
				return nil, fmt.Errorf("failed to create bucket: %w", err)
			}
		}
	}

	return &Backend{client: client, bucket: cfg.Bucket}, nil
}

// UploadWithParams streams reader into the bucket. A zero size streams with
// unknown length.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params contentshare.UploadParams) error {
	size := params.Size
	if size <= 0 {
		size = -1
	}

	_, err := b.client.PutObject(ctx, b.bucket, params.ObjectKey, reader, size, minio.PutObjectOptions{
		ContentType: params.MimeType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Download opens the stored object
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if _, err := b.client.StatObject(ctx, b.bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	obj, err := b.client.GetObject(ctx, b.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}

// Delete removes the stored object
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}
