package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/harborfs/harbordrive/internal/logger"
	"github.com/harborfs/harbordrive/pkg/access"
	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/identity"
	"github.com/harborfs/harbordrive/pkg/store"
)

// ShareService orchestrates direct shares and share links.
type ShareService struct {
	nodes    store.NodeStore
	shares   store.ShareStore
	resolver *access.Resolver
	users    identity.Directory

	// linkBaseURL prefixes share-link URLs handed back to callers,
	// e.g. "https://drive.example.com/share". No trailing slash.
	linkBaseURL string
}

// NewShareService builds a ShareService.
func NewShareService(nodes store.NodeStore, shares store.ShareStore, resolver *access.Resolver, users identity.Directory, linkBaseURL string) *ShareService {
	return &ShareService{
		nodes:       nodes,
		shares:      shares,
		resolver:    resolver,
		users:       users,
		linkBaseURL: strings.TrimRight(linkBaseURL, "/"),
	}
}

// ShareResult pairs the shared file with the stored grant.
type ShareResult struct {
	File  *drive.FileNode
	Share *drive.DirectShare
}

// ShareRecipient is a direct grant joined with the recipient's identity.
type ShareRecipient struct {
	User       *identity.User
	Permission drive.Permission
	SharedAt   time.Time
}

// ShareLinkInfo describes a file's active share link without exposing
// the password hash.
type ShareLinkInfo struct {
	URL         string
	Token       string
	Permission  drive.Permission
	ExpiresAt   *time.Time
	HasPassword bool
	CreatedAt   time.Time
}

// ShareInfo is the owner's view of everything shared on one file.
type ShareInfo struct {
	FileID     string
	Recipients []ShareRecipient

	// Link is nil when no link exists or the existing link has expired.
	Link *ShareLinkInfo
}

// SharedFileInfo is one entry of a "shared with me" listing.
type SharedFileInfo struct {
	File       *drive.FileNode
	Owner      *identity.User
	Permission drive.Permission
	SharedAt   time.Time
}

// TokenGrant is the outcome of resolving a share-link token.
type TokenGrant struct {
	File       *drive.FileNode
	Permission drive.Permission

	// RequiresPassword tells the caller to challenge with
	// VerifyLinkPassword before serving content.
	RequiresPassword bool
}

// ShareWithUser grants a user access to a file by email. Owner only.
// Re-sharing with the same recipient updates the existing grant.
func (s *ShareService) ShareWithUser(ctx context.Context, fileID, ownerID, recipientEmail, permission string) (*ShareResult, error) {
	node, err := s.ownedFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	perm, err := drive.ParsePermission(permission)
	if err != nil {
		return nil, err
	}

	recipient, err := s.users.FindUserByEmail(ctx, recipientEmail)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, drive.NotFound(fmt.Sprintf("no user with email %q", recipientEmail))
		}
		return nil, fmt.Errorf("failed to look up recipient: %w", err)
	}
	if recipient.ID == ownerID {
		return nil, drive.Conflict("cannot share a file with yourself")
	}

	share, err := s.shares.UpsertShare(ctx, &drive.DirectShare{
		ID:           uuid.NewString(),
		FileID:       node.ID,
		OwnerID:      ownerID,
		SharedWithID: recipient.ID,
		Permission:   perm,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store share: %w", err)
	}

	logger.Debug("shared %s with %s at %s", node.ID, recipient.ID, perm)
	return &ShareResult{File: node, Share: share}, nil
}

// GetShareInfo returns the file's direct grantees and its unexpired
// share link, if any. Owner only. An expired link is reported as absent
// but left in place.
func (s *ShareService) GetShareInfo(ctx context.Context, fileID, ownerID string) (*ShareInfo, error) {
	node, err := s.ownedFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	grants, err := s.shares.ListSharesByFile(ctx, node.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	info := &ShareInfo{FileID: node.ID}
	for _, g := range grants {
		user, err := s.users.FindUserByID(ctx, g.SharedWithID)
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				// Recipient account vanished; the grant is dead weight
				// but harmless, so just skip it in the listing.
				continue
			}
			return nil, fmt.Errorf("failed to look up grantee: %w", err)
		}
		info.Recipients = append(info.Recipients, ShareRecipient{
			User:       user,
			Permission: g.Permission,
			SharedAt:   g.CreatedAt,
		})
	}

	link, err := s.shares.GetLinkByFile(ctx, node.ID)
	switch {
	case err == nil:
		if !link.Expired(time.Now().UTC()) {
			info.Link = s.linkInfo(link)
		}
	case !errors.Is(err, store.ErrLinkNotFound):
		return nil, fmt.Errorf("failed to load share link: %w", err)
	}
	return info, nil
}

// CreateShareLink mints a share link for the file. Owner only. Any
// existing link is rotated out: its token stops resolving the moment the
// new link is stored.
//
// A non-empty password is bcrypt-hashed before storage; the link then
// requires VerifyLinkPassword to pass before content is served.
func (s *ShareService) CreateShareLink(ctx context.Context, fileID, ownerID, permission string, expiresAt *time.Time, password string) (*ShareLinkInfo, error) {
	node, err := s.ownedFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	perm, err := drive.ParsePermission(permission)
	if err != nil {
		return nil, err
	}

	var passwordHash string
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash link password: %w", err)
		}
		passwordHash = string(hash)
	}

	link := &drive.ShareLink{
		ID:           uuid.NewString(),
		FileID:       node.ID,
		OwnerID:      ownerID,
		Token:        uuid.NewString(),
		Permission:   perm,
		ExpiresAt:    expiresAt,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.shares.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to store share link: %w", err)
	}

	logger.Debug("created share link for %s (expires: %v, password: %t)", node.ID, expiresAt, passwordHash != "")
	return s.linkInfo(link), nil
}

// RevokeShareAccess removes a direct grant. Owner only. Returns false
// when no grant existed.
func (s *ShareService) RevokeShareAccess(ctx context.Context, fileID, sharedWithID, ownerID string) (bool, error) {
	node, err := s.ownedFile(ctx, fileID, ownerID)
	if err != nil {
		return false, err
	}

	deleted, err := s.shares.DeleteShare(ctx, node.ID, sharedWithID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke share: %w", err)
	}
	return deleted, nil
}

// RemoveShareLink revokes the file's share link. Owner only. Returns
// false when no link existed.
func (s *ShareService) RemoveShareLink(ctx context.Context, fileID, ownerID string) (bool, error) {
	node, err := s.ownedFile(ctx, fileID, ownerID)
	if err != nil {
		return false, err
	}

	deleted, err := s.shares.DeleteLinkByFile(ctx, node.ID)
	if err != nil {
		return false, fmt.Errorf("failed to remove share link: %w", err)
	}
	return deleted, nil
}

// ListSharedWithMe returns every file directly shared with the user,
// joined with file and owner identity. Entries whose file or owner has
// since been deleted are silently dropped.
func (s *ShareService) ListSharedWithMe(ctx context.Context, userID string) ([]*SharedFileInfo, error) {
	grants, err := s.shares.ListSharesByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received shares: %w", err)
	}

	var out []*SharedFileInfo
	for _, g := range grants {
		node, err := s.nodes.GetNode(ctx, g.FileID)
		if err != nil {
			if errors.Is(err, store.ErrNodeNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load shared file: %w", err)
		}
		owner, err := s.users.FindUserByID(ctx, g.OwnerID)
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to look up file owner: %w", err)
		}
		out = append(out, &SharedFileInfo{
			File:       node,
			Owner:      owner,
			Permission: g.Permission,
			SharedAt:   g.CreatedAt,
		})
	}
	return out, nil
}

// ResolveByToken validates a share-link token and returns the file it
// grants access to. No user identity is involved; holding an unexpired
// token is the capability.
//
// When RequiresPassword is set the caller must pass VerifyLinkPassword
// before serving content.
func (s *ShareService) ResolveByToken(ctx context.Context, token string) (*TokenGrant, error) {
	link, err := s.resolver.ResolveToken(ctx, token, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	node, err := s.nodes.GetNode(ctx, link.FileID)
	if err != nil {
		if errors.Is(err, store.ErrNodeNotFound) {
			return nil, drive.NotFound("the linked file no longer exists")
		}
		return nil, fmt.Errorf("failed to load linked file: %w", err)
	}

	return &TokenGrant{
		File:             node,
		Permission:       link.Permission,
		RequiresPassword: link.HasPassword(),
	}, nil
}

// VerifyLinkPassword checks a password attempt against the link behind
// token. Links without a password always verify. The token must still
// be valid; an expired or unknown token fails the same way it does in
// ResolveByToken.
func (s *ShareService) VerifyLinkPassword(ctx context.Context, token, password string) (bool, error) {
	link, err := s.resolver.ResolveToken(ctx, token, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if !link.HasPassword() {
		return true, nil
	}
	err = bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to verify link password: %w", err)
	}
	return true, nil
}

// CheckFileAccess reports what access userID holds on fileID. This is
// the same predicate FileService authorizes with; exposing it lets a
// transport pre-check before streaming.
func (s *ShareService) CheckFileAccess(ctx context.Context, fileID, userID string) (access.Decision, error) {
	_, decision, err := s.resolver.ResolveByID(ctx, fileID, userID)
	if err != nil {
		return access.Denied, err
	}
	return decision, nil
}

func (s *ShareService) linkInfo(link *drive.ShareLink) *ShareLinkInfo {
	url := ""
	if s.linkBaseURL != "" {
		url = s.linkBaseURL + "/" + link.Token
	}
	return &ShareLinkInfo{
		URL:         url,
		Token:       link.Token,
		Permission:  link.Permission,
		ExpiresAt:   link.ExpiresAt,
		HasPassword: link.HasPassword(),
		CreatedAt:   link.CreatedAt,
	}
}

// ownedFile loads a node and requires userID to be its owner.
func (s *ShareService) ownedFile(ctx context.Context, fileID, userID string) (*drive.FileNode, error) {
	node, err := s.nodes.GetNode(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNodeNotFound) {
			return nil, drive.NotFound("file not found")
		}
		return nil, fmt.Errorf("failed to load node: %w", err)
	}
	if node.OwnerID != userID {
		return nil, drive.Forbidden("only the owner may do this")
	}
	return node, nil
}
