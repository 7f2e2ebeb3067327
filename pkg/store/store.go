// Package store defines the persistence contracts for the file/folder
// registry and the share registry.
//
// These are dumb stores: no permission logic lives here. Authorization
// decisions are made by pkg/access, orchestration by pkg/service. Each
// method is an individual atomic statement against the backing store; no
// multi-method operation is wrapped in a cross-call transaction.
//
// Implementations:
//   - pkg/store/badger: persistent, BadgerDB-backed
//   - pkg/store/memory: ephemeral, map-backed (tests and development)
package store

import (
	"context"
	"errors"
	"time"

	"github.com/harborfs/harbordrive/pkg/drive"
)

// Standard store errors. Implementations wrap these with context;
// callers check them with errors.Is.
var (
	// ErrNodeNotFound indicates no file node exists with the given id.
	ErrNodeNotFound = errors.New("file node not found")

	// ErrShareNotFound indicates no direct share exists for the given
	// (file, recipient) pair.
	ErrShareNotFound = errors.New("share not found")

	// ErrLinkNotFound indicates no share link exists for the given token
	// or file.
	ErrLinkNotFound = errors.New("share link not found")

	// ErrStoreClosed indicates the store has been closed. Every method
	// returns it after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// NodeStore persists file and folder nodes.
type NodeStore interface {
	// CreateNode persists a new node. The caller supplies a fully formed
	// node including its id.
	CreateNode(ctx context.Context, node *drive.FileNode) error

	// GetNode returns the node with the given id, or ErrNodeNotFound.
	GetNode(ctx context.Context, id string) (*drive.FileNode, error)

	// ListByOwner returns the owner's direct children of parentID,
	// newest first. A nil parentID selects root-level nodes. limit <= 0
	// means no limit.
	ListByOwner(ctx context.Context, ownerID string, parentID *string, limit, offset int) ([]*drive.FileNode, error)

	// ListChildren returns every direct child of the given folder node,
	// in no particular order. Used by recursive deletion.
	ListChildren(ctx context.Context, parentID string) ([]*drive.FileNode, error)

	// SearchByOwner returns the owner's nodes whose display name or
	// original name contains term, case-insensitively, newest first.
	SearchByOwner(ctx context.Context, ownerID, term string, limit, offset int) ([]*drive.FileNode, error)

	// RenameNode updates the display name and updated-at timestamp,
	// returning the stored node. ErrNodeNotFound if absent.
	RenameNode(ctx context.Context, id, newName string, now time.Time) (*drive.FileNode, error)

	// DeleteNode removes the node row and cascades to its direct shares
	// and share link. Returns false when no row existed.
	DeleteNode(ctx context.Context, id string) (bool, error)

	// CountByOwner counts the owner's direct children of parentID.
	// A nil parentID counts root-level nodes.
	CountByOwner(ctx context.Context, ownerID string, parentID *string) (int, error)

	// CountSearchByOwner counts the nodes SearchByOwner would match.
	CountSearchByOwner(ctx context.Context, ownerID, term string) (int, error)

	// FindByNameAndParent returns the owner's node with the exact name
	// under parentID, or ErrNodeNotFound. Used for duplicate-folder-name
	// detection.
	FindByNameAndParent(ctx context.Context, ownerID, name string, parentID *string) (*drive.FileNode, error)
}

// ShareStore persists direct shares and share links.
type ShareStore interface {
	// UpsertShare inserts the share, or, when a share for the same
	// (FileID, SharedWithID) pair exists, updates its permission and
	// timestamp in place keeping the original id. Returns the stored row.
	UpsertShare(ctx context.Context, share *drive.DirectShare) (*drive.DirectShare, error)

	// ListSharesByFile returns all direct shares on a file, newest first.
	ListSharesByFile(ctx context.Context, fileID string) ([]*drive.DirectShare, error)

	// ListSharesByRecipient returns all direct shares granted to a user,
	// newest first.
	ListSharesByRecipient(ctx context.Context, userID string) ([]*drive.DirectShare, error)

	// DeleteShare removes the share for (fileID, sharedWithID).
	// Returns false when no row existed.
	DeleteShare(ctx context.Context, fileID, sharedWithID string) (bool, error)

	// CreateLink persists a new share link. The caller supplies a fully
	// formed link including id and token.
	CreateLink(ctx context.Context, link *drive.ShareLink) error

	// GetLinkByToken returns the link with the given token, or
	// ErrLinkNotFound. Expiry is NOT evaluated here; that is the access
	// resolver's job.
	GetLinkByToken(ctx context.Context, token string) (*drive.ShareLink, error)

	// GetLinkByFile returns the link for the given file, or
	// ErrLinkNotFound.
	GetLinkByFile(ctx context.Context, fileID string) (*drive.ShareLink, error)

	// DeleteLinkByFile removes the file's link. Returns false when no
	// link existed.
	DeleteLinkByFile(ctx context.Context, fileID string) (bool, error)

	// CheckDirectAccess returns the permission a direct share grants
	// userID on fileID, and whether such a share exists.
	CheckDirectAccess(ctx context.Context, fileID, userID string) (drive.Permission, bool, error)
}

// Store combines both registries with lifecycle management. Concrete
// backends implement it so configuration factories can hand a single
// handle to the composition root.
type Store interface {
	NodeStore
	ShareStore

	// Close releases the backing resources. Further calls fail.
	Close() error
}
