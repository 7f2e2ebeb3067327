// Package fs implements filesystem-based blob storage for HarborDrive.
//
// Objects live under a configured root directory, one subdirectory per
// owner: <root>/users/<ownerID>/<uuid>_<originalName>. The uuid prefix
// makes every stored name unique, so uploads never overwrite each other
// even when a user uploads the same file twice.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/harborfs/harbordrive/pkg/blob"
	"github.com/harborfs/harbordrive/pkg/drive"
)

// downloadRoutePrefix is the route-derived URL prefix returned by
// ResolveURL. The transport layer is expected to serve blobs under it.
const downloadRoutePrefix = "/api/files/download/"

// FSBlobStore implements blob.Store using the local filesystem.
//
// Thread Safety:
// Filesystem operations are safe at the OS level and every Put targets a
// fresh unique name, so concurrent use requires no extra locking.
type FSBlobStore struct {
	root string
}

// NewFSBlobStore creates a filesystem blob store rooted at root.
//
// The root directory and its "users" subdirectory are created on first
// use; per-owner directories are created lazily by Put.
func NewFSBlobStore(ctx context.Context, root string) (*FSBlobStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if root == "" {
		return nil, fmt.Errorf("blob root path is required")
	}

	if err := os.MkdirAll(filepath.Join(root, "users"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}

	return &FSBlobStore{root: root}, nil
}

// Backend implements blob.Store.
func (s *FSBlobStore) Backend() drive.BackendType { return drive.BackendFilesystem }

// Put implements blob.Store.
//
// The object is written with O_EXCL so a (practically impossible) name
// collision fails with ErrBlobExists rather than silently overwriting.
func (s *FSBlobStore) Put(ctx context.Context, r io.Reader, size int64, ownerID, originalName string) (*blob.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ownerDir := filepath.Join(s.root, "users", ownerID)
	if err := os.MkdirAll(ownerDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create owner directory: %w", err)
	}

	name := uuid.New().String() + "_" + filepath.Base(originalName)
	fullPath := filepath.Join(ownerDir, name)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("blob %s: %w", name, blob.ErrBlobExists)
		}
		return nil, fmt.Errorf("failed to create blob file: %w", err)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to close blob file: %w", err)
	}
	if size >= 0 && written != size {
		os.Remove(fullPath)
		return nil, fmt.Errorf("size mismatch: expected %d bytes, wrote %d", size, written)
	}

	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compute relative path: %w", err)
	}

	return &blob.PutResult{Path: filepath.ToSlash(rel)}, nil
}

// Get implements blob.Store.
func (s *FSBlobStore) Get(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.fullPath(storagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", storagePath, blob.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete implements blob.Store. Deleting an absent object succeeds.
func (s *FSBlobStore) Delete(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.fullPath(storagePath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", storagePath, err)
	}
	return nil
}

// ResolveURL implements blob.Store.
//
// Returns a download-route path for existing objects and ("", nil) when
// the object is absent.
func (s *FSBlobStore) ResolveURL(ctx context.Context, storagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := os.Stat(s.fullPath(storagePath)); err != nil {
		return "", nil
	}
	return downloadRoutePrefix + url.PathEscape(storagePath), nil
}

func (s *FSBlobStore) fullPath(storagePath string) string {
	return filepath.Join(s.root, filepath.FromSlash(storagePath))
}

// Compile-time check that FSBlobStore implements blob.Store.
var _ blob.Store = (*FSBlobStore)(nil)
