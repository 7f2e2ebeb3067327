// Package memory implements the registry contracts with in-memory maps.
//
// Data is lost on restart. This implementation exists for tests,
// development, and as the executable reference for the registry
// semantics the BadgerDB implementation must match.
package memory

import (
	"sync"

	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

// MemoryStore implements store.Store with mutex-guarded maps.
//
// Thread Safety:
// A single RWMutex protects all maps. Nodes, shares, and links are copied
// on the way in and out so callers can never mutate stored state through
// a retained pointer.
type MemoryStore struct {
	mu sync.RWMutex

	// nodes maps node id → node.
	nodes map[string]*drive.FileNode

	// shares maps file id → (shared-with id → share).
	shares map[string]map[string]*drive.DirectShare

	// links maps file id → link; tokens maps token → file id.
	links  map[string]*drive.ShareLink
	tokens map[string]string

	closed bool
}

// NewMemoryStore creates an empty in-memory registry store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:  make(map[string]*drive.FileNode),
		shares: make(map[string]map[string]*drive.DirectShare),
		links:  make(map[string]*drive.ShareLink),
		tokens: make(map[string]string),
	}
}

// Close implements store.Store. Every method returns ErrStoreClosed
// afterwards.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.nodes = nil
	s.shares = nil
	s.links = nil
	s.tokens = nil
	return nil
}

func copyNode(n *drive.FileNode) *drive.FileNode {
	out := *n
	if n.ParentID != nil {
		p := *n.ParentID
		out.ParentID = &p
	}
	if n.Blob != nil {
		b := *n.Blob
		out.Blob = &b
	}
	return &out
}

func copyShare(sh *drive.DirectShare) *drive.DirectShare {
	out := *sh
	return &out
}

func copyLink(l *drive.ShareLink) *drive.ShareLink {
	out := *l
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}

// Compile-time check that MemoryStore implements store.Store.
var _ store.Store = (*MemoryStore)(nil)
