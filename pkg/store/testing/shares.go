package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/harbordrive/pkg/drive"
)

func (suite *StoreTestSuite) RunShareTests(test *testing.T) {
	test.Run("Upsert_Insert", suite.TestUpsertInsert)
	test.Run("Upsert_UpdatesInPlace", suite.TestUpsertUpdatesInPlace)
	test.Run("ListByFile", suite.TestListSharesByFile)
	test.Run("ListByRecipient", suite.TestListSharesByRecipient)
	test.Run("Delete", suite.TestDeleteShare)
	test.Run("CheckDirectAccess", suite.TestCheckDirectAccess)
}

func (suite *StoreTestSuite) TestUpsertInsert(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	share := NewTestShare("f1", "u1", "u2", drive.PermissionView, 0)
	stored, err := st.UpsertShare(ctx, share)
	require.NoError(test, err)
	assert.Equal(test, share.ID, stored.ID)
	assert.Equal(test, drive.PermissionView, stored.Permission)
}

func (suite *StoreTestSuite) TestUpsertUpdatesInPlace(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	first := NewTestShare("f1", "u1", "u2", drive.PermissionView, 0)
	_, err := st.UpsertShare(ctx, first)
	require.NoError(test, err)

	second := NewTestShare("f1", "u1", "u2", drive.PermissionEdit, 5)
	stored, err := st.UpsertShare(ctx, second)
	require.NoError(test, err)

	// The grant keeps its original identity; only permission and
	// timestamp move.
	assert.Equal(test, first.ID, stored.ID)
	assert.Equal(test, drive.PermissionEdit, stored.Permission)
	assert.True(test, stored.CreatedAt.Equal(second.CreatedAt))

	shares, err := st.ListSharesByFile(ctx, "f1")
	require.NoError(test, err)
	require.Len(test, shares, 1)
	assert.Equal(test, drive.PermissionEdit, shares[0].Permission)
}

func (suite *StoreTestSuite) TestListSharesByFile(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	older := NewTestShare("f1", "u1", "u2", drive.PermissionView, 0)
	newer := NewTestShare("f1", "u1", "u3", drive.PermissionEdit, 10)
	_, err := st.UpsertShare(ctx, older)
	require.NoError(test, err)
	_, err = st.UpsertShare(ctx, newer)
	require.NoError(test, err)
	_, err = st.UpsertShare(ctx, NewTestShare("f2", "u1", "u2", drive.PermissionView, 1))
	require.NoError(test, err)

	shares, err := st.ListSharesByFile(ctx, "f1")
	require.NoError(test, err)
	require.Len(test, shares, 2)
	assert.Equal(test, newer.ID, shares[0].ID)
	assert.Equal(test, older.ID, shares[1].ID)
}

func (suite *StoreTestSuite) TestListSharesByRecipient(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	_, err := st.UpsertShare(ctx, NewTestShare("f1", "u1", "u2", drive.PermissionView, 0))
	require.NoError(test, err)
	_, err = st.UpsertShare(ctx, NewTestShare("f2", "u3", "u2", drive.PermissionEdit, 1))
	require.NoError(test, err)
	_, err = st.UpsertShare(ctx, NewTestShare("f3", "u1", "u4", drive.PermissionView, 2))
	require.NoError(test, err)

	received, err := st.ListSharesByRecipient(ctx, "u2")
	require.NoError(test, err)
	require.Len(test, received, 2)
	for _, sh := range received {
		assert.Equal(test, "u2", sh.SharedWithID)
	}
}

func (suite *StoreTestSuite) TestDeleteShare(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	_, err := st.UpsertShare(ctx, NewTestShare("f1", "u1", "u2", drive.PermissionView, 0))
	require.NoError(test, err)

	deleted, err := st.DeleteShare(ctx, "f1", "u2")
	require.NoError(test, err)
	assert.True(test, deleted)

	deleted, err = st.DeleteShare(ctx, "f1", "u2")
	require.NoError(test, err)
	assert.False(test, deleted)

	received, err := st.ListSharesByRecipient(ctx, "u2")
	require.NoError(test, err)
	assert.Empty(test, received)
}

func (suite *StoreTestSuite) TestCheckDirectAccess(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	_, err := st.UpsertShare(ctx, NewTestShare("f1", "u1", "u2", drive.PermissionEdit, 0))
	require.NoError(test, err)

	perm, granted, err := st.CheckDirectAccess(ctx, "f1", "u2")
	require.NoError(test, err)
	assert.True(test, granted)
	assert.Equal(test, drive.PermissionEdit, perm)

	_, granted, err = st.CheckDirectAccess(ctx, "f1", "u3")
	require.NoError(test, err)
	assert.False(test, granted)

	_, granted, err = st.CheckDirectAccess(ctx, "missing", "u2")
	require.NoError(test, err)
	assert.False(test, granted)
}
