// Package drive defines the core domain model for HarborDrive: file and
// folder nodes, direct user-to-user shares, and token-based share links.
//
// The types here are storage-agnostic. Persistence lives in pkg/store,
// raw bytes live behind pkg/blob, and authorization decisions are made by
// pkg/access. This package only captures the entities and their invariants.
package drive

import (
	"fmt"
	"strings"
	"time"
)

// Permission is the access level carried by a share or share link.
type Permission string

const (
	// PermissionView grants read-only access (download, inspect metadata).
	PermissionView Permission = "view"

	// PermissionEdit grants full access. Owners always resolve to edit.
	PermissionEdit Permission = "edit"
)

// ParsePermission validates and normalizes a permission string.
//
// Returns an InvalidInput error for anything other than "view" or "edit"
// (case-insensitive).
func ParsePermission(s string) (Permission, error) {
	switch Permission(strings.ToLower(strings.TrimSpace(s))) {
	case PermissionView:
		return PermissionView, nil
	case PermissionEdit:
		return PermissionEdit, nil
	default:
		return "", &Error{
			Code:    CodeInvalidInput,
			Message: fmt.Sprintf("invalid permission %q (expected view or edit)", s),
		}
	}
}

// BackendType identifies which blob backend holds a node's bytes.
type BackendType string

const (
	// BackendFilesystem stores bytes on the local filesystem.
	BackendFilesystem BackendType = "filesystem"

	// BackendS3 stores bytes in S3 or S3-compatible object storage.
	BackendS3 BackendType = "s3"

	// BackendMemory stores bytes in memory. Testing and development only.
	BackendMemory BackendType = "memory"
)

// NodeKind discriminates the FileNode variant.
//
// Folders carry no blob reference by construction: the Kind tag plus the
// nil-ness of FileNode.Blob replace the "content_type sentinel + nullable
// storage path" encoding used by earlier drive systems, so "a folder has
// no storage path and zero size" holds without a runtime invariant check.
type NodeKind int

const (
	// KindFile is a regular file with backing bytes in a blob backend.
	KindFile NodeKind = iota

	// KindFolder is a container node. It has no bytes and no blob reference.
	KindFolder
)

// String returns a human-readable kind name.
func (k NodeKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// BlobRef locates a file node's bytes inside a blob backend.
//
// Present on every KindFile node, always nil on KindFolder nodes.
type BlobRef struct {
	// StoragePath is the backend-relative path (filesystem) or object key
	// (S3) of the stored bytes. Opaque outside the owning backend.
	StoragePath string `json:"storage_path"`

	// StorageURL is an optional backend-issued access hint, such as a
	// pre-signed URL captured at upload time. May be empty.
	StorageURL string `json:"storage_url,omitempty"`

	// Backend names the blob backend that holds the bytes.
	Backend BackendType `json:"backend"`

	// ContentType is the MIME type reported at upload time. May be empty.
	ContentType string `json:"content_type,omitempty"`

	// SizeBytes is the content length recorded at upload time.
	SizeBytes int64 `json:"size_bytes"`
}

// FileNode is the unified entity for both files and folders.
//
// A node belongs to exactly one owner. ParentID, when non-nil, must
// reference a KindFolder node with the same OwnerID; the service layer
// rejects cross-owner and file-as-parent nesting.
type FileNode struct {
	// ID is the unique node identifier, generated at creation. Immutable.
	ID string `json:"id"`

	// OwnerID is the user that created the node. Immutable.
	OwnerID string `json:"owner_id"`

	// Name is the display name. Mutable via rename.
	Name string `json:"name"`

	// OriginalName is the name of the uploaded artifact, set at creation.
	// For folders it equals the folder name. Immutable.
	OriginalName string `json:"original_name"`

	// ParentID references the containing folder; nil means root level.
	ParentID *string `json:"parent_id,omitempty"`

	// Kind discriminates file vs. folder.
	Kind NodeKind `json:"kind"`

	// Blob locates the bytes for KindFile nodes. Nil iff Kind is KindFolder.
	Blob *BlobRef `json:"blob,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsFolder reports whether the node is a folder.
func (n *FileNode) IsFolder() bool { return n.Kind == KindFolder }

// Size returns the content length in bytes. Folders are always zero.
func (n *FileNode) Size() int64 {
	if n.Blob == nil {
		return 0
	}
	return n.Blob.SizeBytes
}

// DirectShare is an explicit grant of access from a file's owner to
// another user. At most one DirectShare exists per (FileID, SharedWithID)
// pair; re-sharing updates the grant in place.
type DirectShare struct {
	ID           string     `json:"id"`
	FileID       string     `json:"file_id"`
	OwnerID      string     `json:"owner_id"`
	SharedWithID string     `json:"shared_with_id"`
	Permission   Permission `json:"permission"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ShareLink is a capability token granting access to one file node to
// anyone holding the token. At most one link is active per file; creating
// a new one rotates (deletes) the previous link.
type ShareLink struct {
	ID      string `json:"id"`
	FileID  string `json:"file_id"`
	OwnerID string `json:"owner_id"`

	// Token is the unguessable capability value. Immutable.
	Token string `json:"token"`

	Permission Permission `json:"permission"`

	// ExpiresAt, when non-nil, is the instant after which the link no
	// longer resolves. Expiry is evaluated at read time; expired rows are
	// not purged in the background.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// PasswordHash is the bcrypt hash of the link password, or empty when
	// the link is not password-protected. The plaintext is never stored.
	PasswordHash string `json:"password_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the link has expired as of now.
func (l *ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// HasPassword reports whether the link requires a password challenge.
func (l *ShareLink) HasPassword() bool { return l.PasswordHash != "" }
