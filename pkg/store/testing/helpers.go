package testing

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborfs/harbordrive/pkg/drive"
)

// baseTime anchors all test timestamps so newest-first ordering is
// deterministic.
var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// NewTestFile builds a file node owned by ownerID, created offset
// minutes after the base time.
func NewTestFile(ownerID, name string, parentID *string, offset int) *drive.FileNode {
	created := baseTime.Add(time.Duration(offset) * time.Minute)
	return &drive.FileNode{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		OriginalName: name,
		ParentID:     parentID,
		Kind:         drive.KindFile,
		Blob: &drive.BlobRef{
			StoragePath: "users/" + ownerID + "/" + uuid.NewString() + "_" + name,
			Backend:     drive.BackendMemory,
			ContentType: "application/octet-stream",
			SizeBytes:   1024,
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// NewTestFolder builds a folder node owned by ownerID.
func NewTestFolder(ownerID, name string, parentID *string, offset int) *drive.FileNode {
	created := baseTime.Add(time.Duration(offset) * time.Minute)
	return &drive.FileNode{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		OriginalName: name,
		ParentID:     parentID,
		Kind:         drive.KindFolder,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

// NewTestShare builds a direct share on fileID for sharedWithID.
func NewTestShare(fileID, ownerID, sharedWithID string, perm drive.Permission, offset int) *drive.DirectShare {
	return &drive.DirectShare{
		ID:           uuid.NewString(),
		FileID:       fileID,
		OwnerID:      ownerID,
		SharedWithID: sharedWithID,
		Permission:   perm,
		CreatedAt:    baseTime.Add(time.Duration(offset) * time.Minute),
	}
}

// NewTestLink builds a share link on fileID with a fresh token.
func NewTestLink(fileID, ownerID string, perm drive.Permission, expiresAt *time.Time) *drive.ShareLink {
	return &drive.ShareLink{
		ID:         uuid.NewString(),
		FileID:     fileID,
		OwnerID:    ownerID,
		Token:      uuid.NewString(),
		Permission: perm,
		ExpiresAt:  expiresAt,
		CreatedAt:  baseTime,
	}
}
