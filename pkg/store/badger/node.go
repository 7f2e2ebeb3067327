package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

// CreateNode implements store.NodeStore.
//
// Writes the node row plus its owner-index entry and, when nested, its
// children-index entry, atomically in one transaction.
func (s *BadgerStore) CreateNode(ctx context.Context, node *drive.FileNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeNode(node)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyNode(node.ID)); err == nil {
			return fmt.Errorf("node %s already exists", node.ID)
		}
		if err := txn.Set(keyNode(node.ID), data); err != nil {
			return fmt.Errorf("failed to store node: %w", err)
		}
		if err := txn.Set(keyOwner(node.OwnerID, node.ID), nil); err != nil {
			return fmt.Errorf("failed to store owner index: %w", err)
		}
		if node.ParentID != nil {
			if err := txn.Set(keyChild(*node.ParentID, node.ID), nil); err != nil {
				return fmt.Errorf("failed to store children index: %w", err)
			}
		}
		return nil
	})
}

// GetNode implements store.NodeStore.
func (s *BadgerStore) GetNode(ctx context.Context, id string) (*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var node *drive.FileNode
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getValue(txn, keyNode(id), fmt.Errorf("node %s: %w", id, store.ErrNodeNotFound))
		if err != nil {
			return err
		}
		node, err = decodeNode(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// ListByOwner implements store.NodeStore.
func (s *BadgerStore) ListByOwner(ctx context.Context, ownerID string, parentID *string, limit, offset int) ([]*drive.FileNode, error) {
	matched, err := s.collectByOwner(ctx, ownerID, func(n *drive.FileNode) bool {
		return sameParent(n.ParentID, parentID)
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// ListChildren implements store.NodeStore.
//
// Scans the children index, so only the folder's own subtree is touched.
func (s *BadgerStore) ListChildren(ctx context.Context, parentID string) ([]*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []*drive.FileNode
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixChildren + parentID + ":")
		for _, key := range scanKeys(txn, prefix) {
			nodeID := string(key[len(prefix):])
			data, err := getValue(txn, keyNode(nodeID), fmt.Errorf("node %s: %w", nodeID, store.ErrNodeNotFound))
			if err != nil {
				return err
			}
			node, err := decodeNode(data)
			if err != nil {
				return err
			}
			children = append(children, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// SearchByOwner implements store.NodeStore.
func (s *BadgerStore) SearchByOwner(ctx context.Context, ownerID, term string, limit, offset int) ([]*drive.FileNode, error) {
	matched, err := s.collectByOwner(ctx, ownerID, matchSearch(term))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(matched)
	return page(matched, limit, offset), nil
}

// RenameNode implements store.NodeStore.
func (s *BadgerStore) RenameNode(ctx context.Context, id, newName string, now time.Time) (*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var renamed *drive.FileNode
	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := getValue(txn, keyNode(id), fmt.Errorf("node %s: %w", id, store.ErrNodeNotFound))
		if err != nil {
			return err
		}
		node, err := decodeNode(data)
		if err != nil {
			return err
		}

		node.Name = newName
		node.UpdatedAt = now

		updated, err := encodeNode(node)
		if err != nil {
			return err
		}
		if err := txn.Set(keyNode(id), updated); err != nil {
			return fmt.Errorf("failed to store renamed node: %w", err)
		}
		renamed = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// DeleteNode implements store.NodeStore.
//
// The node row, its index entries, its direct shares (with their
// recipient back-index), and its share link (with its token index) are
// all removed in one transaction, so a crash can never leave a dangling
// share pointing at a deleted node.
func (s *BadgerStore) DeleteNode(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keyNode(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get node: %w", err)
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		node, err := decodeNode(data)
		if err != nil {
			return err
		}

		if err := txn.Delete(keyNode(id)); err != nil {
			return fmt.Errorf("failed to delete node: %w", err)
		}
		if err := txn.Delete(keyOwner(node.OwnerID, id)); err != nil {
			return fmt.Errorf("failed to delete owner index: %w", err)
		}
		if node.ParentID != nil {
			if err := txn.Delete(keyChild(*node.ParentID, id)); err != nil {
				return fmt.Errorf("failed to delete children index: %w", err)
			}
		}

		// Cascade: direct shares and their recipient back-index.
		sharePrefix := []byte(prefixShare + id + ":")
		for _, key := range scanKeys(txn, sharePrefix) {
			sharedWithID := string(key[len(sharePrefix):])
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete share: %w", err)
			}
			if err := txn.Delete(keyRecipient(sharedWithID, id)); err != nil {
				return fmt.Errorf("failed to delete recipient index: %w", err)
			}
		}

		// Cascade: share link and its token index.
		linkData, err := getValue(txn, keyLink(id), store.ErrLinkNotFound)
		switch {
		case err == nil:
			link, err := decodeLink(linkData)
			if err != nil {
				return err
			}
			if err := txn.Delete(keyToken(link.Token)); err != nil {
				return fmt.Errorf("failed to delete token index: %w", err)
			}
			if err := txn.Delete(keyLink(id)); err != nil {
				return fmt.Errorf("failed to delete link: %w", err)
			}
		case !errors.Is(err, store.ErrLinkNotFound):
			return err
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// CountByOwner implements store.NodeStore.
func (s *BadgerStore) CountByOwner(ctx context.Context, ownerID string, parentID *string) (int, error) {
	matched, err := s.collectByOwner(ctx, ownerID, func(n *drive.FileNode) bool {
		return sameParent(n.ParentID, parentID)
	})
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// CountSearchByOwner implements store.NodeStore.
func (s *BadgerStore) CountSearchByOwner(ctx context.Context, ownerID, term string) (int, error) {
	matched, err := s.collectByOwner(ctx, ownerID, matchSearch(term))
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// FindByNameAndParent implements store.NodeStore.
func (s *BadgerStore) FindByNameAndParent(ctx context.Context, ownerID, name string, parentID *string) (*drive.FileNode, error) {
	matched, err := s.collectByOwner(ctx, ownerID, func(n *drive.FileNode) bool {
		return n.Name == name && sameParent(n.ParentID, parentID)
	})
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("node %q under parent: %w", name, store.ErrNodeNotFound)
	}
	return matched[0], nil
}

// collectByOwner scans the owner index and returns decoded nodes
// matching the predicate.
func (s *BadgerStore) collectByOwner(ctx context.Context, ownerID string, match func(*drive.FileNode) bool) ([]*drive.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*drive.FileNode
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixOwner + ownerID + ":")
		for _, key := range scanKeys(txn, prefix) {
			nodeID := string(key[len(prefix):])
			data, err := getValue(txn, keyNode(nodeID), fmt.Errorf("node %s: %w", nodeID, store.ErrNodeNotFound))
			if err != nil {
				return err
			}
			node, err := decodeNode(data)
			if err != nil {
				return err
			}
			if match(node) {
				matched = append(matched, node)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func matchSearch(term string) func(*drive.FileNode) bool {
	needle := strings.ToLower(term)
	return func(n *drive.FileNode) bool {
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
