// Package service contains the two entry-point services of HarborDrive.
//
// FileService orchestrates uploads, downloads, folder management, and
// deletion against the node registry and the blob backend. ShareService
// orchestrates direct shares and share links. Both authorize through
// pkg/access; neither talks to a transport.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborfs/harbordrive/internal/logger"
	"github.com/harborfs/harbordrive/pkg/access"
	"github.com/harborfs/harbordrive/pkg/blob"
	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

// FileService orchestrates file and folder operations.
type FileService struct {
	nodes    store.NodeStore
	blobs    blob.Store
	resolver *access.Resolver
}

// NewFileService builds a FileService.
func NewFileService(nodes store.NodeStore, blobs blob.Store, resolver *access.Resolver) *FileService {
	return &FileService{nodes: nodes, blobs: blobs, resolver: resolver}
}

// UploadRequest carries the inputs of an upload.
type UploadRequest struct {
	// Content streams the raw bytes. The service does not buffer it.
	Content io.Reader

	// Size is the content length in bytes. Must be known up front.
	Size int64

	// OriginalName is the name of the uploaded artifact.
	OriginalName string

	// OwnerID is the authenticated uploader.
	OwnerID string

	// CustomName, when non-blank, overrides the display name.
	CustomName string

	// ParentID places the file inside a folder; nil means root level.
	ParentID *string

	// ContentType is the MIME type reported by the caller. May be empty.
	ContentType string
}

// ListResult is a page of nodes plus the total count within the same
// scope, so the caller can paginate consistently.
type ListResult struct {
	Items []*drive.FileNode
	Total int
}

// DownloadResult carries a node and a stream of its bytes. The caller
// owns closing Content.
type DownloadResult struct {
	Node    *drive.FileNode
	Content io.ReadCloser
}

// Upload stores the content in the blob backend and registers a file
// node for it.
//
// If the registry write fails after the bytes were stored, the blob is
// deleted again on a best-effort basis so storage does not leak.
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (*drive.FileNode, error) {
	name := strings.TrimSpace(req.OriginalName)
	if name == "" {
		return nil, drive.InvalidInput("file name cannot be empty")
	}
	if err := s.validateParent(ctx, req.OwnerID, req.ParentID); err != nil {
		return nil, err
	}

	result, err := s.blobs.Put(ctx, req.Content, req.Size, req.OwnerID, name)
	if err != nil {
		return nil, drive.StorageFailure("failed to store file content", err)
	}

	displayName := strings.TrimSpace(req.CustomName)
	if displayName == "" {
		displayName = name
	}

	now := time.Now().UTC()
	node := &drive.FileNode{
		ID:           uuid.NewString(),
		OwnerID:      req.OwnerID,
		Name:         displayName,
		OriginalName: name,
		ParentID:     req.ParentID,
		Kind:         drive.KindFile,
		Blob: &drive.BlobRef{
			StoragePath: result.Path,
			StorageURL:  result.URL,
			Backend:     s.blobs.Backend(),
			ContentType: req.ContentType,
			SizeBytes:   req.Size,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.nodes.CreateNode(ctx, node); err != nil {
		if derr := s.blobs.Delete(ctx, result.Path); derr != nil {
			logger.Warn("orphaned blob %s after failed node create: %v", result.Path, derr)
		}
		return nil, fmt.Errorf("failed to register uploaded file: %w", err)
	}

	logger.Debug("uploaded %s (%d bytes) for user %s", node.ID, req.Size, req.OwnerID)
	return node, nil
}

// CreateFolder registers a folder node.
func (s *FileService) CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*drive.FileNode, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, drive.InvalidInput("folder name cannot be empty")
	}
	if err := s.validateParent(ctx, ownerID, parentID); err != nil {
		return nil, err
	}

	existing, err := s.nodes.FindByNameAndParent(ctx, ownerID, name, parentID)
	switch {
	case err == nil:
		if existing.IsFolder() {
			return nil, drive.Conflict(fmt.Sprintf("a folder named %q already exists here", name))
		}
	case !errors.Is(err, store.ErrNodeNotFound):
		return nil, fmt.Errorf("failed to check for duplicate folder: %w", err)
	}

	now := time.Now().UTC()
	node := &drive.FileNode{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		OriginalName: name,
		ParentID:     parentID,
		Kind:         drive.KindFolder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.nodes.CreateNode(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return node, nil
}

// List returns the owner's direct children of parentID, newest first.
// A nil parentID lists root-level nodes. Total counts the same scope.
func (s *FileService) List(ctx context.Context, ownerID string, parentID *string, limit, offset int) (*ListResult, error) {
	limit, offset = clampPage(limit, offset)

	items, err := s.nodes.ListByOwner(ctx, ownerID, parentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	total, err := s.nodes.CountByOwner(ctx, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	return &ListResult{Items: items, Total: total}, nil
}

// Search returns the owner's nodes matching term, newest first. Total
// counts every match, not just the returned page. A blank term falls
// back to listing the root level.
func (s *FileService) Search(ctx context.Context, ownerID, term string, limit, offset int) (*ListResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, ownerID, nil, limit, offset)
	}
	limit, offset = clampPage(limit, offset)

	items, err := s.nodes.SearchByOwner(ctx, ownerID, term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}
	total, err := s.nodes.CountSearchByOwner(ctx, ownerID, term)
	if err != nil {
		return nil, fmt.Errorf("failed to count search matches: %w", err)
	}
	return &ListResult{Items: items, Total: total}, nil
}

// GetByID returns the node if the user owns it or holds a direct share
// on it.
func (s *FileService) GetByID(ctx context.Context, fileID, userID string) (*drive.FileNode, error) {
	node, decision, err := s.resolver.ResolveByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		return nil, drive.Forbidden("you do not have access to this file")
	}
	return node, nil
}

// Rename updates a node's display name. Owner only.
func (s *FileService) Rename(ctx context.Context, fileID, userID, newName string) (*drive.FileNode, error) {
	node, err := s.ownedNode(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, drive.InvalidInput("name cannot be empty")
	}

	renamed, err := s.nodes.RenameNode(ctx, node.ID, newName, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to rename: %w", err)
	}
	return renamed, nil
}

// Delete removes a node. Owner only. Folders are deleted depth-first:
// every descendant's bytes and row go before the folder row itself.
//
// A blob-deletion failure on a descendant is logged and skipped so a
// user-initiated bulk delete always makes forward progress; a registry
// failure aborts the remaining recursion and surfaces the error.
func (s *FileService) Delete(ctx context.Context, fileID, userID string) (bool, error) {
	node, err := s.ownedNode(ctx, fileID, userID)
	if err != nil {
		return false, err
	}

	if node.IsFolder() {
		if err := s.deleteChildren(ctx, node.ID); err != nil {
			return false, err
		}
	} else if node.Blob != nil {
		if err := s.blobs.Delete(ctx, node.Blob.StoragePath); err != nil {
			return false, drive.StorageFailure("failed to delete file content", err)
		}
	}

	deleted, err := s.nodes.DeleteNode(ctx, node.ID)
	if err != nil {
		return false, fmt.Errorf("failed to delete node: %w", err)
	}
	return deleted, nil
}

// deleteChildren removes every descendant of the folder, depth-first.
func (s *FileService) deleteChildren(ctx context.Context, folderID string) error {
	children, err := s.nodes.ListChildren(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to list folder children: %w", err)
	}

	for _, child := range children {
		if child.IsFolder() {
			if err := s.deleteChildren(ctx, child.ID); err != nil {
				return err
			}
		} else if child.Blob != nil {
			if err := s.blobs.Delete(ctx, child.Blob.StoragePath); err != nil {
				logger.Warn("skipping blob %s during folder delete: %v", child.Blob.StoragePath, err)
			}
		}
		if _, err := s.nodes.DeleteNode(ctx, child.ID); err != nil {
			return fmt.Errorf("failed to delete child node %s: %w", child.ID, err)
		}
	}
	return nil
}

// Download streams a file's bytes to the caller. The owner or any
// direct-share holder may download; folders cannot be downloaded.
func (s *FileService) Download(ctx context.Context, fileID, userID string) (*DownloadResult, error) {
	node, decision, err := s.resolver.ResolveByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		return nil, drive.Forbidden("you do not have access to this file")
	}
	return s.openContent(ctx, node)
}

// DownloadByLink streams a file's bytes for a share-link grant. The
// caller must have resolved the token first; no user identity is
// involved.
func (s *FileService) DownloadByLink(ctx context.Context, node *drive.FileNode) (*DownloadResult, error) {
	return s.openContent(ctx, node)
}

func (s *FileService) openContent(ctx context.Context, node *drive.FileNode) (*DownloadResult, error) {
	if node.IsFolder() {
		return nil, drive.InvalidInput("folders cannot be downloaded")
	}
	if node.Blob == nil {
		return nil, drive.StorageFailure("file has no stored content", nil)
	}

	rc, err := s.blobs.Get(ctx, node.Blob.StoragePath)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			return nil, drive.StorageFailure("file content is missing from storage", err)
		}
		return nil, drive.StorageFailure("failed to read file content", err)
	}
	return &DownloadResult{Node: node, Content: rc}, nil
}

// ownedNode loads a node and requires userID to be its owner.
func (s *FileService) ownedNode(ctx context.Context, fileID, userID string) (*drive.FileNode, error) {
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

// validateParent checks that parentID, when given, is a folder owned by
// ownerID.
func (s *FileService) validateParent(ctx context.Context, ownerID string, parentID *string) error {
	if parentID == nil {
		return nil
	}

	parent, err := s.nodes.GetNode(ctx, *parentID)
	if err != nil {
		if errors.Is(err, store.ErrNodeNotFound) {
			return drive.InvalidInput("parent folder does not exist")
		}
		return fmt.Errorf("failed to load parent folder: %w", err)
	}
	if parent.OwnerID != ownerID {
		return drive.Forbidden("parent folder belongs to another user")
	}
	if !parent.IsFolder() {
		return drive.InvalidInput("parent must be a folder")
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	return limit, offset
}
