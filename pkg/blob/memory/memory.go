// Package memory implements in-memory blob storage for HarborDrive.
//
// All content lives in a map and is lost on restart. Intended for tests
// and development; production deployments use the filesystem or S3
// variants.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/harborfs/harbordrive/pkg/blob"
	"github.com/harborfs/harbordrive/pkg/drive"
)

// MemoryBlobStore implements blob.Store backed by a map.
//
// Thread Safety:
// All operations are protected by an RWMutex. Content is copied on read
// and write so caller-owned buffers cannot race with the store.
type MemoryBlobStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{data: make(map[string][]byte)}
}

// Backend implements blob.Store.
func (s *MemoryBlobStore) Backend() drive.BackendType { return drive.BackendMemory }

// Put implements blob.Store.
func (s *MemoryBlobStore) Put(ctx context.Context, r io.Reader, size int64, ownerID, originalName string) (*blob.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if size >= 0 && int64(len(content)) != size {
		return nil, fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(content))
	}

	path := ownerID + "/" + uuid.New().String() + "_" + originalName

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[path]; exists {
		return nil, fmt.Errorf("blob %s: %w", path, blob.ErrBlobExists)
	}
	s.data[path] = content

	return &blob.PutResult{Path: path}, nil
}

// Get implements blob.Store.
func (s *MemoryBlobStore) Get(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	content, exists := s.data[storagePath]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("blob %s: %w", storagePath, blob.ErrBlobNotFound)
	}

	buf := make([]byte, len(content))
	copy(buf, content)
	return io.NopCloser(bytes.NewReader(buf)), nil
}

// Delete implements blob.Store. Deleting an absent object succeeds.
func (s *MemoryBlobStore) Delete(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.data, storagePath)
	s.mu.Unlock()
	return nil
}

// ResolveURL implements blob.Store. The memory backend has no URL scheme,
// so it always reports "not resolvable".
func (s *MemoryBlobStore) ResolveURL(ctx context.Context, storagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// Len returns the number of stored objects. Test helper.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Compile-time check that MemoryBlobStore implements blob.Store.
var _ blob.Store = (*MemoryBlobStore)(nil)
