package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

// CreateNode implements store.NodeStore.
func (s *MemoryStore) CreateNode(ctx context.Context, node *drive.FileNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}
	if _, exists := s.nodes[node.ID]; exists {
		return fmt.Errorf("node %s already exists", node.ID)
	}
	s.nodes[node.ID] = copyNode(node)
	return nil
}

// GetNode implements store.NodeStore.
func (s *MemoryStore) GetNode(ctx context.Context, id string) (*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	node, exists := s.nodes[id]
	if !exists {
		return nil, fmt.Errorf("node %s: %w", id, store.ErrNodeNotFound)
	}
	return copyNode(node), nil
}

// ListByOwner implements store.NodeStore.
func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string, parentID *string, limit, offset int) ([]*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, store.ErrStoreClosed
	}
	matched := s.collect(func(n *drive.FileNode) bool {
		return n.OwnerID == ownerID && sameParent(n.ParentID, parentID)
	})
	s.mu.RUnlock()

	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// ListChildren implements store.NodeStore.
func (s *MemoryStore) ListChildren(ctx context.Context, parentID string) ([]*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	return s.collect(func(n *drive.FileNode) bool {
		return n.ParentID != nil && *n.ParentID == parentID
	}), nil
}

// SearchByOwner implements store.NodeStore.
func (s *MemoryStore) SearchByOwner(ctx context.Context, ownerID, term string, limit, offset int) ([]*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, store.ErrStoreClosed
	}
	matched := s.collect(matchSearch(ownerID, term))
	s.mu.RUnlock()

	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// RenameNode implements store.NodeStore.
func (s *MemoryStore) RenameNode(ctx context.Context, id, newName string, now time.Time) (*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	node, exists := s.nodes[id]
	if !exists {
		return nil, fmt.Errorf("node %s: %w", id, store.ErrNodeNotFound)
	}
	node.Name = newName
	node.UpdatedAt = now
	return copyNode(node), nil
}

// DeleteNode implements store.NodeStore. Cascades to the node's shares
// and share link under the same lock.
func (s *MemoryStore) DeleteNode(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, store.ErrStoreClosed
	}
	if _, exists := s.nodes[id]; !exists {
		return false, nil
	}
	delete(s.nodes, id)
	delete(s.shares, id)
	if link, ok := s.links[id]; ok {
		delete(s.tokens, link.Token)
		delete(s.links, id)
	}
	return true, nil
}

// CountByOwner implements store.NodeStore.
func (s *MemoryStore) CountByOwner(ctx context.Context, ownerID string, parentID *string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, store.ErrStoreClosed
	}
	count := 0
	for _, n := range s.nodes {
		if n.OwnerID == ownerID && sameParent(n.ParentID, parentID) {
			count++
		}
	}
	return count, nil
}

// CountSearchByOwner implements store.NodeStore.
func (s *MemoryStore) CountSearchByOwner(ctx context.Context, ownerID, term string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, store.ErrStoreClosed
	}
	match := matchSearch(ownerID, term)
	count := 0
	for _, n := range s.nodes {
		if match(n) {
			count++
		}
	}
	return count, nil
}

// FindByNameAndParent implements store.NodeStore.
func (s *MemoryStore) FindByNameAndParent(ctx context.Context, ownerID, name string, parentID *string) (*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	for _, n := range s.nodes {
		if n.OwnerID == ownerID && n.Name == name && sameParent(n.ParentID, parentID) {
			return copyNode(n), nil
		}
	}
	return nil, fmt.Errorf("node %q under parent: %w", name, store.ErrNodeNotFound)
}

// collect returns copies of all nodes matching the predicate.
// Caller must hold at least the read lock.
func (s *MemoryStore) collect(match func(*drive.FileNode) bool) []*drive.FileNode {
	var out []*drive.FileNode
	for _, n := range s.nodes {
		if match(n) {
			out = append(out, copyNode(n))
		}
	}
	return out
}

func matchSearch(ownerID, term string) func(*drive.FileNode) bool {
	needle := strings.ToLower(term)
	return func(n *drive.FileNode) bool {
		if n.OwnerID != ownerID {
			return false
		}
		return strings.Contains(strings.ToLower(n.Name), needle) ||
			strings.Contains(strings.ToLower(n.OriginalName), needle)
	}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// sortNewestFirst orders nodes by creation time descending, with the id
// as a deterministic tie-breaker.
func sortNewestFirst(nodes []*drive.FileNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		}
		return nodes[i].ID > nodes[j].ID
	})
}

func page(nodes []*drive.FileNode, limit, offset int) []*drive.FileNode {
	if offset >= len(nodes) {
		return nil
	}
	nodes = nodes[offset:]
	if limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes
}
