package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

// UpsertShare implements store.ShareStore.
//
// The (FileID, SharedWithID) pair is the row key, so re-sharing with the
// same recipient overwrites the grant in place. The original id is kept
// so callers holding it keep a stable reference.
func (s *BadgerStore) UpsertShare(ctx context.Context, share *drive.DirectShare) (*drive.DirectShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *share
	err := s.db.Update(func(txn *badger.Txn) error {
		key := keyShare(share.FileID, share.SharedWithID)

		data, err := getValue(txn, key, store.ErrShareNotFound)
		switch {
		case err == nil:
			existing, err := decodeShare(data)
			if err != nil {
				return err
			}
			stored = *existing
			stored.Permission = share.Permission
			stored.CreatedAt = share.CreatedAt
		case !errors.Is(err, store.ErrShareNotFound):
			return err
		}

		encoded, err := encodeShare(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(key, encoded); err != nil {
			return fmt.Errorf("failed to store share: %w", err)
		}
		if err := txn.Set(keyRecipient(share.SharedWithID, share.FileID), nil); err != nil {
			return fmt.Errorf("failed to store recipient index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListSharesByFile implements store.ShareStore.
func (s *BadgerStore) ListSharesByFile(ctx context.Context, fileID string) ([]*drive.DirectShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var shares []*drive.DirectShare
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixShare + fileID + ":")
		for _, key := range scanKeys(txn, prefix) {
			data, err := getValue(txn, key, store.ErrShareNotFound)
			if err != nil {
				return err
			}
			sh, err := decodeShare(data)
			if err != nil {
				return err
			}
			shares = append(shares, sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSharesNewestFirst(shares)
	return shares, nil
}

// ListSharesByRecipient implements store.ShareStore.
func (s *BadgerStore) ListSharesByRecipient(ctx context.Context, userID string) ([]*drive.DirectShare, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var shares []*drive.DirectShare
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixRecipient + userID + ":")
		for _, key := range scanKeys(txn, prefix) {
			fileID := string(key[len(prefix):])
			data, err := getValue(txn, keyShare(fileID, userID), store.ErrShareNotFound)
			if err != nil {
				return err
			}
			sh, err := decodeShare(data)
			if err != nil {
				return err
			}
			shares = append(shares, sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSharesNewestFirst(shares)
	return shares, nil
}

// DeleteShare implements store.ShareStore.
func (s *BadgerStore) DeleteShare(ctx context.Context, fileID, sharedWithID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		key := keyShare(fileID, sharedWithID)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to get share: %w", err)
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("failed to delete share: %w", err)
		}
		if err := txn.Delete(keyRecipient(sharedWithID, fileID)); err != nil {
			return fmt.Errorf("failed to delete recipient index: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// CreateLink implements store.ShareStore.
//
// Any existing link row for the file is replaced, and its token index
// entry removed in the same transaction so a stale token never resolves.
func (s *BadgerStore) CreateLink(ctx context.Context, link *drive.ShareLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyToken(link.Token)); err == nil {
			return fmt.Errorf("token collision for link %s", link.ID)
		}

		data, err := getValue(txn, keyLink(link.FileID), store.ErrLinkNotFound)
		switch {
		case err == nil:
			old, err := decodeLink(data)
			if err != nil {
				return err
			}
			if err := txn.Delete(keyToken(old.Token)); err != nil {
				return fmt.Errorf("failed to delete stale token index: %w", err)
			}
		case !errors.Is(err, store.ErrLinkNotFound):
			return err
		}

		encoded, err := encodeLink(link)
		if err != nil {
			return err
		}
		if err := txn.Set(keyLink(link.FileID), encoded); err != nil {
			return fmt.Errorf("failed to store link: %w", err)
		}
		if err := txn.Set(keyToken(link.Token), []byte(link.FileID)); err != nil {
			return fmt.Errorf("failed to store token index: %w", err)
		}
		return nil
	})
}

// GetLinkByToken implements store.ShareStore.
func (s *BadgerStore) GetLinkByToken(ctx context.Context, token string) (*drive.ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var link *drive.ShareLink
	err := s.db.View(func(txn *badger.Txn) error {
		fileID, err := getValue(txn, keyToken(token), fmt.Errorf("token: %w", store.ErrLinkNotFound))
		if err != nil {
			return err
		}
		data, err := getValue(txn, keyLink(string(fileID)), fmt.Errorf("file %s: %w", fileID, store.ErrLinkNotFound))
		if err != nil {
			return err
		}
		link, err = decodeLink(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// GetLinkByFile implements store.ShareStore.
func (s *BadgerStore) GetLinkByFile(ctx context.Context, fileID string) (*drive.ShareLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var link *drive.ShareLink
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getValue(txn, keyLink(fileID), fmt.Errorf("file %s: %w", fileID, store.ErrLinkNotFound))
		if err != nil {
			return err
		}
		link, err = decodeLink(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// DeleteLinkByFile implements store.ShareStore.
func (s *BadgerStore) DeleteLinkByFile(ctx context.Context, fileID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := getValue(txn, keyLink(fileID), store.ErrLinkNotFound)
		if errors.Is(err, store.ErrLinkNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		link, err := decodeLink(data)
		if err != nil {
			return err
		}
		if err := txn.Delete(keyToken(link.Token)); err != nil {
			return fmt.Errorf("failed to delete token index: %w", err)
		}
		if err := txn.Delete(keyLink(fileID)); err != nil {
			return fmt.Errorf("failed to delete link: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// CheckDirectAccess implements store.ShareStore.
func (s *BadgerStore) CheckDirectAccess(ctx context.Context, fileID, userID string) (drive.Permission, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		perm  drive.Permission
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getValue(txn, keyShare(fileID, userID), store.ErrShareNotFound)
		if errors.Is(err, store.ErrShareNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		sh, err := decodeShare(data)
		if err != nil {
			return err
		}
		perm = sh.Permission
		found = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return perm, found, nil
}

func sortSharesNewestFirst(shares []*drive.DirectShare) {
	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].CreatedAt.Equal(shares[j].CreatedAt) {
			return shares[i].CreatedAt.After(shares[j].CreatedAt)
		}
		return shares[i].ID > shares[j].ID
	})
}
