// Package s3 implements S3-based blob storage for HarborDrive.
//
// Object keys mirror the filesystem layout: <prefix><ownerID>/<uuid>_<name>.
// The bucket must already exist; the constructor verifies access with a
// HeadBucket call. Pre-signed GET URLs are issued both at upload time and
// on demand via ResolveURL.
//
// S3 characteristics worth keeping in mind:
//   - DeleteObject succeeds for absent keys, which matches the idempotent
//     Delete contract for free.
//   - Writes to the same key are last-write-wins; Put avoids the problem
//     entirely by generating a fresh uuid-prefixed key per upload.
//   - Custom endpoints (MinIO, Localstack) are supported through the
//     client configuration built in pkg/config.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/harborfs/harbordrive/pkg/blob"
	"github.com/harborfs/harbordrive/pkg/drive"
)

// defaultPresignExpiry is how long issued pre-signed URLs stay valid.
const defaultPresignExpiry = time.Hour

// S3BlobStore implements blob.Store using Amazon S3 or S3-compatible
// storage.
//
// Thread Safety:
// The AWS SDK client is safe for concurrent use and every Put targets a
// fresh unique key, so no extra locking is needed.
type S3BlobStore struct {
	client        *awss3.Client
	presigner     *awss3.PresignClient
	bucket        string
	keyPrefix     string
	presignExpiry time.Duration
}

// S3BlobStoreConfig contains configuration for the S3 blob store.
type S3BlobStoreConfig struct {
	// Client is the configured S3 client.
	Client *awss3.Client

	// Bucket is the S3 bucket name. Required; must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	// Example: "harbordrive/" results in keys like "harbordrive/u1/abc_report.pdf".
	KeyPrefix string

	// PresignExpiry is the validity window for pre-signed URLs.
	// Defaults to one hour.
	PresignExpiry time.Duration
}

// NewS3BlobStore creates an S3-backed blob store and verifies bucket
// access.
func NewS3BlobStore(ctx context.Context, cfg S3BlobStoreConfig) (*S3BlobStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}

	if _, err := cfg.Client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &S3BlobStore{
		client:        cfg.Client,
		presigner:     awss3.NewPresignClient(cfg.Client),
		bucket:        cfg.Bucket,
		keyPrefix:     cfg.KeyPrefix,
		presignExpiry: expiry,
	}, nil
}

// Backend implements blob.Store.
func (s *S3BlobStore) Backend() drive.BackendType { return drive.BackendS3 }

// Put implements blob.Store.
//
// The stored key is <prefix><ownerID>/<uuid>_<originalName>. A pre-signed
// GET URL is returned alongside the key, matching what callers record as
// the node's storage URL hint.
func (s *S3BlobStore) Put(ctx context.Context, r io.Reader, size int64, ownerID, originalName string) (*blob.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := storageKey(ownerID, originalName)

	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   r,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload blob %s: %w", key, err)
	}

	url, err := s.presignGet(ctx, key)
	if err != nil {
		// The object is stored; a failed presign only costs the hint.
		url = ""
	}

	return &blob.PutResult{Path: key, URL: url}, nil
}

// Get implements blob.Store.
func (s *S3BlobStore) Get(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(storagePath)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("blob %s: %w", storagePath, blob.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to get blob %s: %w", storagePath, err)
	}
	return out.Body, nil
}

// Delete implements blob.Store. S3 DeleteObject is idempotent by design.
func (s *S3BlobStore) Delete(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(storagePath)),
	}); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", storagePath, err)
	}
	return nil
}

// ResolveURL implements blob.Store, issuing a fresh pre-signed GET URL.
// Returns ("", nil) when the URL cannot be derived.
func (s *S3BlobStore) ResolveURL(ctx context.Context, storagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url, err := s.presignGet(ctx, storagePath)
	if err != nil {
		return "", nil
	}
	return url, nil
}

func (s *S3BlobStore) presignGet(ctx context.Context, storagePath string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(storagePath)),
	}, awss3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *S3BlobStore) objectKey(storagePath string) string {
	return s.keyPrefix + storagePath
}

// storageKey builds the backend-relative key for a new upload. Base
// strips directory components so a name containing "/" cannot nest the
// object under an unexpected key prefix.
func storageKey(ownerID, originalName string) string {
	return ownerID + "/" + uuid.New().String() + "_" + path.Base(originalName)
}

// Compile-time check that S3BlobStore implements blob.Store.
var _ blob.Store = (*S3BlobStore)(nil)
