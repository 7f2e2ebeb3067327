// Package blob defines the storage-backend abstraction that decouples a
// file node's logical identity from its physical bytes.
//
// A blob store manages only raw content. It does NOT manage:
//   - Node metadata (names, hierarchy, timestamps) → pkg/store
//   - Access control → pkg/access
//
// Implementations:
//   - pkg/blob/fs: local filesystem, per-owner subdirectories
//   - pkg/blob/s3: Amazon S3 or S3-compatible storage, pre-signed URLs
//   - pkg/blob/memory: in-memory map, for tests and development
//
// Storage paths are backend-relative (filesystem path or object key) and
// opaque to callers: only the backend that issued a path interprets it.
// All implementations must be safe for concurrent use.
package blob

import (
	"context"
	"io"

	"github.com/harborfs/harbordrive/pkg/drive"
)

// PutResult describes where a stored object landed.
type PutResult struct {
	// Path is the backend-relative storage path (or object key) under
	// which the bytes were persisted.
	Path string

	// URL is an optional backend-issued access hint (e.g. a pre-signed
	// GET URL). Empty when the backend does not issue one at write time.
	URL string
}

// Store is the capability interface over a single blob backend.
type Store interface {
	// Put persists size bytes read from r under a backend-generated
	// unique name scoped to ownerID. It never overwrites an existing
	// object.
	//
	// Returns the storage path (plus an optional access URL), or an
	// error on I/O or network failure.
	Put(ctx context.Context, r io.Reader, size int64, ownerID, originalName string) (*PutResult, error)

	// Get returns a reader over the full content at storagePath. The
	// caller must close it.
	//
	// Returns ErrBlobNotFound (wrapped) when the object is missing.
	Get(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes the object at storagePath. Deleting an already
	// absent object is not an error.
	Delete(ctx context.Context, storagePath string) error

	// ResolveURL returns a best-effort access URL for the object: a
	// pre-signed URL for object storage, a download-route path for the
	// filesystem. Returns ("", nil) rather than failing when no URL can
	// be derived.
	ResolveURL(ctx context.Context, storagePath string) (string, error)

	// Backend identifies the backend variant, recorded on each node's
	// BlobRef at upload time.
	Backend() drive.BackendType
}
