package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

// UpsertShare implements store.ShareStore.
func (s *MemoryStore) UpsertShare(ctx context.Context, share *drive.DirectShare) (*drive.DirectShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	byRecipient, ok := s.shares[share.FileID]
	if !ok {
		byRecipient = make(map[string]*drive.DirectShare)
		s.shares[share.FileID] = byRecipient
	}

	if existing, ok := byRecipient[share.SharedWithID]; ok {
		// Re-share updates the grant in place, keeping the original id.
		existing.Permission = share.Permission
		existing.CreatedAt = share.CreatedAt
		return copyShare(existing), nil
	}

	byRecipient[share.SharedWithID] = copyShare(share)
	return copyShare(share), nil
}

// ListSharesByFile implements store.ShareStore.
func (s *MemoryStore) ListSharesByFile(ctx context.Context, fileID string) ([]*drive.DirectShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	var out []*drive.DirectShare
	for _, sh := range s.shares[fileID] {
		out = append(out, copyShare(sh))
	}
	sortSharesNewestFirst(out)
	return out, nil
}

// ListSharesByRecipient implements store.ShareStore.
func (s *MemoryStore) ListSharesByRecipient(ctx context.Context, userID string) ([]*drive.DirectShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	var out []*drive.DirectShare
	for _, byRecipient := range s.shares {
		if sh, ok := byRecipient[userID]; ok {
			out = append(out, copyShare(sh))
		}
	}
	sortSharesNewestFirst(out)
	return out, nil
}

// DeleteShare implements store.ShareStore.
func (s *MemoryStore) DeleteShare(ctx context.Context, fileID, sharedWithID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, store.ErrStoreClosed
	}
	byRecipient, ok := s.shares[fileID]
	if !ok {
		return false, nil
	}
	if _, ok := byRecipient[sharedWithID]; !ok {
		return false, nil
	}
	delete(byRecipient, sharedWithID)
	if len(byRecipient) == 0 {
		delete(s.shares, fileID)
	}
	return true, nil
}

// CreateLink implements store.ShareStore.
func (s *MemoryStore) CreateLink(ctx context.Context, link *drive.ShareLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}
	if _, exists := s.tokens[link.Token]; exists {
		return fmt.Errorf("token collision for link %s", link.ID)
	}
	if old, ok := s.links[link.FileID]; ok {
		// Rotation happens at the service layer, but a stale row must
		// not leave a dangling token index entry.
		delete(s.tokens, old.Token)
	}
	s.links[link.FileID] = copyLink(link)
	s.tokens[link.Token] = link.FileID
	return nil
}

// GetLinkByToken implements store.ShareStore.
func (s *MemoryStore) GetLinkByToken(ctx context.Context, token string) (*drive.ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	fileID, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("token: %w", store.ErrLinkNotFound)
	}
	return copyLink(s.links[fileID]), nil
}

// GetLinkByFile implements store.ShareStore.
func (s *MemoryStore) GetLinkByFile(ctx context.Context, fileID string) (*drive.ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	link, ok := s.links[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, store.ErrLinkNotFound)
	}
	return copyLink(link), nil
}

// DeleteLinkByFile implements store.ShareStore.
func (s *MemoryStore) DeleteLinkByFile(ctx context.Context, fileID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, store.ErrStoreClosed
	}
	link, ok := s.links[fileID]
	if !ok {
		return false, nil
	}
	delete(s.tokens, link.Token)
	delete(s.links, fileID)
	return true, nil
}

// CheckDirectAccess implements store.ShareStore.
func (s *MemoryStore) CheckDirectAccess(ctx context.Context, fileID, userID string) (drive.Permission, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, store.ErrStoreClosed
	}
	if sh, ok := s.shares[fileID][userID]; ok {
		return sh.Permission, true, nil
	}
	return "", false, nil
}

func sortSharesNewestFirst(shares []*drive.DirectShare) {
	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].CreatedAt.Equal(shares[j].CreatedAt) {
			return shares[i].CreatedAt.After(shares[j].CreatedAt)
		}
		return shares[i].ID > shares[j].ID
	})
}
