package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/harbordrive/pkg/drive"
)

func TestShareWithUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)

	result, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)
	assert.Equal(t, node.ID, result.File.ID)
	assert.Equal(t, "u2", result.Share.SharedWithID)
	assert.Equal(t, drive.PermissionView, result.Share.Permission)
}

func TestShareWithUser_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "nobody@example.com", "view")
		assert.True(t, drive.IsNotFound(err))
	})

	t.Run("self share", func(t *testing.T) {
		_, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "alice@example.com", "view")
		assert.True(t, drive.IsConflict(err))
	})

	t.Run("bad permission", func(t *testing.T) {
		_, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "bob@example.com", "admin")
		assert.True(t, drive.IsInvalidInput(err))
	})

	t.Run("not the owner", func(t *testing.T) {
		_, err := env.shares.ShareWithUser(ctx, node.ID, "u2", "bob@example.com", "view")
		assert.True(t, drive.IsForbidden(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := env.shares.ShareWithUser(ctx, "missing", "u1", "bob@example.com", "view")
		assert.True(t, drive.IsNotFound(err))
	})
}

// Sharing with "view" then "edit" leaves exactly one grant, at "edit".
func TestShareWithUser_ReshareUpdatesInPlace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)

	first, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)
	second, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "bob@example.com", "edit")
	require.NoError(t, err)

	assert.Equal(t, first.Share.ID, second.Share.ID)
	assert.Equal(t, drive.PermissionEdit, second.Share.Permission)

	info, err := env.shares.GetShareInfo(ctx, node.ID, "u1")
	require.NoError(t, err)
	require.Len(t, info.Recipients, 1)
	assert.Equal(t, drive.PermissionEdit, info.Recipients[0].Permission)
}

// Owner shares at view; recipient can download but not rename; after
// revocation the recipient loses download too.
func TestViewShareLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "1024 bytes of report", nil)

	_, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)

	result, err := env.files.Download(ctx, node.ID, "u2")
	require.NoError(t, err)
	body, err := io.ReadAll(result.Content)
	require.NoError(t, err)
	result.Content.Close()
	assert.Equal(t, "1024 bytes of report", string(body))

	_, err = env.files.Rename(ctx, node.ID, "u2", "x")
	assert.True(t, drive.IsForbidden(err))

	revoked, err := env.shares.RevokeShareAccess(ctx, node.ID, "u2", "u1")
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = env.files.Download(ctx, node.ID, "u2")
	assert.True(t, drive.IsForbidden(err))
}

func TestGetShareInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)
	_, err := env.shares.ShareWithUser(ctx, node.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)

	info, err := env.shares.GetShareInfo(ctx, node.ID, "u1")
	require.NoError(t, err)
	require.Len(t, info.Recipients, 1)
	assert.Equal(t, "Bob", info.Recipients[0].User.Name)
	assert.Nil(t, info.Link)

	_, err = env.shares.GetShareInfo(ctx, node.ID, "u2")
	assert.True(t, drive.IsForbidden(err))
}

func TestGetShareInfo_ExpiredLinkReportedAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)

	past := time.Now().Add(-time.Hour)
	_, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", &past, "")
	require.NoError(t, err)

	info, err := env.shares.GetShareInfo(ctx, node.ID, "u1")
	require.NoError(t, err)
	assert.Nil(t, info.Link)
}

func TestCreateShareLink_AndResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)

	link, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", nil, "")
	require.NoError(t, err)
	assert.NotEmpty(t, link.Token)
	assert.Equal(t, "http://localhost:8080/share/"+link.Token, link.URL)
	assert.False(t, link.HasPassword)

	grant, err := env.shares.ResolveByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, node.ID, grant.File.ID)
	assert.Equal(t, drive.PermissionView, grant.Permission)
	assert.False(t, grant.RequiresPassword)
}

// A second link invalidates the first: the old token stops resolving.
func TestCreateShareLink_Rotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)

	first, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", nil, "")
	require.NoError(t, err)
	second, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "edit", nil, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)

	_, err = env.shares.ResolveByToken(ctx, first.Token)
	assert.True(t, drive.IsNotFound(err))

	grant, err := env.shares.ResolveByToken(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, drive.PermissionEdit, grant.Permission)
}

func TestResolveByToken_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.shares.ResolveByToken(ctx, "bogus")
		assert.True(t, drive.IsNotFound(err))
	})

	t.Run("expired link", func(t *testing.T) {
		node := env.upload(t, "u1", "a.txt", "x", nil)
		past := time.Now().Add(-time.Minute)
		link, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", &past, "")
		require.NoError(t, err)

		_, err = env.shares.ResolveByToken(ctx, link.Token)
		assert.True(t, drive.IsLinkExpired(err))
	})

	t.Run("linked file deleted", func(t *testing.T) {
		node := env.upload(t, "u1", "b.txt", "x", nil)
		link, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", nil, "")
		require.NoError(t, err)

		_, err = env.files.Delete(ctx, node.ID, "u1")
		require.NoError(t, err)

		_, err = env.shares.ResolveByToken(ctx, link.Token)
		assert.True(t, drive.IsNotFound(err))
	})
}

func TestLinkPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "secret.pdf", "body", nil)
	link, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", nil, "hunter2")
	require.NoError(t, err)
	assert.True(t, link.HasPassword)

	grant, err := env.shares.ResolveByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.True(t, grant.RequiresPassword)

	ok, err := env.shares.VerifyLinkPassword(ctx, link.Token, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.shares.VerifyLinkPassword(ctx, link.Token, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyLinkPassword_NoPasswordAlwaysPasses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "open.pdf", "body", nil)
	link, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", nil, "")
	require.NoError(t, err)

	ok, err := env.shares.VerifyLinkPassword(ctx, link.Token, "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveShareLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "report.pdf", "body", nil)
	link, err := env.shares.CreateShareLink(ctx, node.ID, "u1", "view", nil, "")
	require.NoError(t, err)

	removed, err := env.shares.RemoveShareLink(ctx, node.ID, "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = env.shares.RemoveShareLink(ctx, node.ID, "u1")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = env.shares.ResolveByToken(ctx, link.Token)
	assert.True(t, drive.IsNotFound(err))
}

func TestListSharedWithMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node1 := env.upload(t, "u1", "one.txt", "1", nil)
	node2 := env.upload(t, "u1", "two.txt", "2", nil)
	_, err := env.shares.ShareWithUser(ctx, node1.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)
	_, err = env.shares.ShareWithUser(ctx, node2.ID, "u1", "bob@example.com", "edit")
	require.NoError(t, err)

	shared, err := env.shares.ListSharedWithMe(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, shared, 2)
	for _, s := range shared {
		assert.Equal(t, "Alice", s.Owner.Name)
	}
}

// Entries whose file has since been deleted disappear from the listing.
func TestListSharedWithMe_DropsVanishedFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node1 := env.upload(t, "u1", "one.txt", "1", nil)
	node2 := env.upload(t, "u1", "two.txt", "2", nil)
	_, err := env.shares.ShareWithUser(ctx, node1.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)
	_, err = env.shares.ShareWithUser(ctx, node2.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)

	_, err = env.files.Delete(ctx, node1.ID, "u1")
	require.NoError(t, err)

	shared, err := env.shares.ListSharedWithMe(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, node2.ID, shared[0].File.ID)
}

func TestCheckFileAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	node := env.upload(t, "u1", "doc.txt", "x", nil)

	owner, err := env.shares.CheckFileAccess(ctx, node.ID, "u1")
	require.NoError(t, err)
	assert.True(t, owner.Granted)
	assert.Equal(t, drive.PermissionEdit, owner.Permission)

	stranger, err := env.shares.CheckFileAccess(ctx, node.ID, "u2")
	require.NoError(t, err)
	assert.False(t, stranger.Granted)

	_, err = env.shares.ShareWithUser(ctx, node.ID, "u1", "bob@example.com", "view")
	require.NoError(t, err)

	viewer, err := env.shares.CheckFileAccess(ctx, node.ID, "u2")
	require.NoError(t, err)
	assert.True(t, viewer.Granted)
	assert.Equal(t, drive.PermissionView, viewer.Permission)
}
