// Package access implements the single authorization predicate for
// HarborDrive.
//
// Both the file service and the share service answer "may this user
// touch this node, and at what level" through the Resolver here, so the
// precedence rules (owner beats share, view never implies edit) live in
// exactly one place.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

// Decision is the outcome of an access resolution.
type Decision struct {
	// Granted reports whether any access exists.
	Granted bool

	// Permission is the granted level. Meaningless when Granted is false.
	Permission drive.Permission
}

// Denied is the zero decision.
var Denied = Decision{}

// Resolver evaluates what access a user has to a file node.
type Resolver struct {
	nodes  store.NodeStore
	shares store.ShareStore
}

// NewResolver builds a Resolver over the given registries.
func NewResolver(nodes store.NodeStore, shares store.ShareStore) *Resolver {
	return &Resolver{nodes: nodes, shares: shares}
}

// Resolve returns the access userID holds on node.
//
// Ownership short-circuits to edit without consulting the share registry.
// Otherwise a direct share, if one exists, determines the level. Share
// links are deliberately NOT consulted: link access is capability-based
// and flows only through ResolveToken.
func (r *Resolver) Resolve(ctx context.Context, node *drive.FileNode, userID string) (Decision, error) {
	if node.OwnerID == userID {
		return Decision{Granted: true, Permission: drive.PermissionEdit}, nil
	}

	perm, found, err := r.shares.CheckDirectAccess(ctx, node.ID, userID)
	if err != nil {
		return Denied, fmt.Errorf("failed to check direct access: %w", err)
	}
	if !found {
		return Denied, nil
	}
	return Decision{Granted: true, Permission: perm}, nil
}

// ResolveByID loads the node and resolves access in one call.
//
// The node is returned alongside the decision so callers do not fetch it
// twice. A missing node yields a CodeNotFound domain error.
func (r *Resolver) ResolveByID(ctx context.Context, fileID, userID string) (*drive.FileNode, Decision, error) {
	node, err := r.nodes.GetNode(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNodeNotFound) {
			return nil, Denied, drive.NotFound("file not found")
		}
		return nil, Denied, fmt.Errorf("failed to load node: %w", err)
	}

	decision, err := r.Resolve(ctx, node, userID)
	if err != nil {
		return nil, Denied, err
	}
	return node, decision, nil
}

// ResolveToken validates a share link token and returns the link.
//
// An unknown token is reported as CodeNotFound without revealing whether
// the token ever existed. An expired link is reported as CodeLinkExpired;
// expiry is evaluated against now, never persisted.
func (r *Resolver) ResolveToken(ctx context.Context, token string, now time.Time) (*drive.ShareLink, error) {
	link, err := r.shares.GetLinkByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrLinkNotFound) {
			return nil, drive.NotFound("invalid share link")
		}
		return nil, fmt.Errorf("failed to load share link: %w", err)
	}
	if link.Expired(now) {
		return nil, drive.LinkExpired("share link has expired")
	}
	return link, nil
}
