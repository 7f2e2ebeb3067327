package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/harbordrive/pkg/drive"
	"github.com/harborfs/harbordrive/pkg/store"
)

func (suite *StoreTestSuite) RunNodeTests(test *testing.T) {
	test.Run("CreateGet_Roundtrip", suite.TestCreateGetRoundtrip)
	test.Run("Get_NotFound", suite.TestGetNotFound)
	test.Run("ListByOwner_ScopedToParent", suite.TestListByOwnerScopedToParent)
	test.Run("ListByOwner_NewestFirst", suite.TestListByOwnerNewestFirst)
	test.Run("ListByOwner_Paging", suite.TestListByOwnerPaging)
	test.Run("ListChildren", suite.TestListChildren)
	test.Run("Search_CaseInsensitive", suite.TestSearchCaseInsensitive)
	test.Run("Search_MatchesOriginalName", suite.TestSearchMatchesOriginalName)
	test.Run("Rename", suite.TestRename)
	test.Run("Rename_NotFound", suite.TestRenameNotFound)
	test.Run("Delete_Absent", suite.TestDeleteAbsent)
	test.Run("Delete_CascadesSharesAndLink", suite.TestDeleteCascades)
	test.Run("Counts", suite.TestCounts)
	test.Run("FindByNameAndParent", suite.TestFindByNameAndParent)
}

func (suite *StoreTestSuite) TestCreateGetRoundtrip(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	folder := NewTestFolder("u1", "Docs", nil, 0)
	require.NoError(test, st.CreateNode(ctx, folder))

	file := NewTestFile("u1", "report.pdf", &folder.ID, 1)
	require.NoError(test, st.CreateNode(ctx, file))

	got, err := st.GetNode(ctx, file.ID)
	require.NoError(test, err)
	assert.Equal(test, file.ID, got.ID)
	assert.Equal(test, "report.pdf", got.Name)
	assert.Equal(test, drive.KindFile, got.Kind)
	require.NotNil(test, got.ParentID)
	assert.Equal(test, folder.ID, *got.ParentID)
	require.NotNil(test, got.Blob)
	assert.Equal(test, int64(1024), got.Blob.SizeBytes)

	gotFolder, err := st.GetNode(ctx, folder.ID)
	require.NoError(test, err)
	assert.True(test, gotFolder.IsFolder())
	assert.Nil(test, gotFolder.Blob)
	assert.Zero(test, gotFolder.Size())
}

func (suite *StoreTestSuite) TestGetNotFound(test *testing.T) {
	st := suite.NewStore(test)

	_, err := st.GetNode(context.Background(), "missing")
	require.Error(test, err)
	assert.ErrorIs(test, err, store.ErrNodeNotFound)
}

func (suite *StoreTestSuite) TestListByOwnerScopedToParent(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	folder := NewTestFolder("u1", "Docs", nil, 0)
	require.NoError(test, st.CreateNode(ctx, folder))
	rootFile := NewTestFile("u1", "root.txt", nil, 1)
	require.NoError(test, st.CreateNode(ctx, rootFile))
	nested := NewTestFile("u1", "nested.txt", &folder.ID, 2)
	require.NoError(test, st.CreateNode(ctx, nested))
	otherOwner := NewTestFile("u2", "theirs.txt", nil, 3)
	require.NoError(test, st.CreateNode(ctx, otherOwner))

	rootItems, err := st.ListByOwner(ctx, "u1", nil, 0, 0)
	require.NoError(test, err)
	require.Len(test, rootItems, 2)
	for _, n := range rootItems {
		assert.Nil(test, n.ParentID)
		assert.Equal(test, "u1", n.OwnerID)
	}

	nestedItems, err := st.ListByOwner(ctx, "u1", &folder.ID, 0, 0)
	require.NoError(test, err)
	require.Len(test, nestedItems, 1)
	assert.Equal(test, nested.ID, nestedItems[0].ID)
}

func (suite *StoreTestSuite) TestListByOwnerNewestFirst(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	oldest := NewTestFile("u1", "a.txt", nil, 0)
	middle := NewTestFile("u1", "b.txt", nil, 10)
	newest := NewTestFile("u1", "c.txt", nil, 20)
	for _, n := range []*drive.FileNode{middle, oldest, newest} {
		require.NoError(test, st.CreateNode(ctx, n))
	}

	items, err := st.ListByOwner(ctx, "u1", nil, 0, 0)
	require.NoError(test, err)
	require.Len(test, items, 3)
	assert.Equal(test, newest.ID, items[0].ID)
	assert.Equal(test, middle.ID, items[1].ID)
	assert.Equal(test, oldest.ID, items[2].ID)
}

func (suite *StoreTestSuite) TestListByOwnerPaging(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(test, st.CreateNode(ctx, NewTestFile("u1", "f.txt", nil, i)))
	}

	page1, err := st.ListByOwner(ctx, "u1", nil, 2, 0)
	require.NoError(test, err)
	assert.Len(test, page1, 2)

	page3, err := st.ListByOwner(ctx, "u1", nil, 2, 4)
	require.NoError(test, err)
	assert.Len(test, page3, 1)

	beyond, err := st.ListByOwner(ctx, "u1", nil, 2, 10)
	require.NoError(test, err)
	assert.Empty(test, beyond)
}

func (suite *StoreTestSuite) TestListChildren(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	folder := NewTestFolder("u1", "Docs", nil, 0)
	require.NoError(test, st.CreateNode(ctx, folder))
	child1 := NewTestFile("u1", "one.txt", &folder.ID, 1)
	child2 := NewTestFolder("u1", "Sub", &folder.ID, 2)
	require.NoError(test, st.CreateNode(ctx, child1))
	require.NoError(test, st.CreateNode(ctx, child2))
	require.NoError(test, st.CreateNode(ctx, NewTestFile("u1", "root.txt", nil, 3)))

	children, err := st.ListChildren(ctx, folder.ID)
	require.NoError(test, err)
	require.Len(test, children, 2)

	ids := []string{children[0].ID, children[1].ID}
	assert.Contains(test, ids, child1.ID)
	assert.Contains(test, ids, child2.ID)
}

func (suite *StoreTestSuite) TestSearchCaseInsensitive(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	match := NewTestFile("u1", "Quarterly Report.pdf", nil, 0)
	require.NoError(test, st.CreateNode(ctx, match))
	require.NoError(test, st.CreateNode(ctx, NewTestFile("u1", "photo.jpg", nil, 1)))
	require.NoError(test, st.CreateNode(ctx, NewTestFile("u2", "report.pdf", nil, 2)))

	items, err := st.SearchByOwner(ctx, "u1", "REPORT", 0, 0)
	require.NoError(test, err)
	require.Len(test, items, 1)
	assert.Equal(test, match.ID, items[0].ID)
}

func (suite *StoreTestSuite) TestSearchMatchesOriginalName(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	node := NewTestFile("u1", "invoice-2026.pdf", nil, 0)
	node.Name = "renamed"
	require.NoError(test, st.CreateNode(ctx, node))

	items, err := st.SearchByOwner(ctx, "u1", "invoice", 0, 0)
	require.NoError(test, err)
	require.Len(test, items, 1)
	assert.Equal(test, node.ID, items[0].ID)
}

func (suite *StoreTestSuite) TestRename(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	node := NewTestFile("u1", "old.txt", nil, 0)
	require.NoError(test, st.CreateNode(ctx, node))

	later := node.CreatedAt.Add(time.Hour)
	renamed, err := st.RenameNode(ctx, node.ID, "new.txt", later)
	require.NoError(test, err)
	assert.Equal(test, "new.txt", renamed.Name)
	assert.Equal(test, "old.txt", renamed.OriginalName)
	assert.True(test, renamed.UpdatedAt.Equal(later))

	got, err := st.GetNode(ctx, node.ID)
	require.NoError(test, err)
	assert.Equal(test, "new.txt", got.Name)
}

func (suite *StoreTestSuite) TestRenameNotFound(test *testing.T) {
	st := suite.NewStore(test)

	_, err := st.RenameNode(context.Background(), "missing", "x", time.Now())
	assert.ErrorIs(test, err, store.ErrNodeNotFound)
}

func (suite *StoreTestSuite) TestDeleteAbsent(test *testing.T) {
	st := suite.NewStore(test)

	deleted, err := st.DeleteNode(context.Background(), "missing")
	require.NoError(test, err)
	assert.False(test, deleted)
}

func (suite *StoreTestSuite) TestDeleteCascades(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	node := NewTestFile("u1", "shared.txt", nil, 0)
	require.NoError(test, st.CreateNode(ctx, node))

	_, err := st.UpsertShare(ctx, NewTestShare(node.ID, "u1", "u2", drive.PermissionView, 0))
	require.NoError(test, err)

	link := NewTestLink(node.ID, "u1", drive.PermissionView, nil)
	require.NoError(test, st.CreateLink(ctx, link))

	deleted, err := st.DeleteNode(ctx, node.ID)
	require.NoError(test, err)
	assert.True(test, deleted)

	_, err = st.GetNode(ctx, node.ID)
	assert.ErrorIs(test, err, store.ErrNodeNotFound)

	_, granted, err := st.CheckDirectAccess(ctx, node.ID, "u2")
	require.NoError(test, err)
	assert.False(test, granted)

	received, err := st.ListSharesByRecipient(ctx, "u2")
	require.NoError(test, err)
	assert.Empty(test, received)

	_, err = st.GetLinkByToken(ctx, link.Token)
	assert.ErrorIs(test, err, store.ErrLinkNotFound)
	_, err = st.GetLinkByFile(ctx, node.ID)
	assert.ErrorIs(test, err, store.ErrLinkNotFound)
}

func (suite *StoreTestSuite) TestCounts(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	folder := NewTestFolder("u1", "Docs", nil, 0)
	require.NoError(test, st.CreateNode(ctx, folder))
	require.NoError(test, st.CreateNode(ctx, NewTestFile("u1", "a-report.txt", nil, 1)))
	require.NoError(test, st.CreateNode(ctx, NewTestFile("u1", "b-report.txt", &folder.ID, 2)))
	require.NoError(test, st.CreateNode(ctx, NewTestFile("u1", "photo.jpg", nil, 3)))

	rootCount, err := st.CountByOwner(ctx, "u1", nil)
	require.NoError(test, err)
	assert.Equal(test, 3, rootCount)

	nestedCount, err := st.CountByOwner(ctx, "u1", &folder.ID)
	require.NoError(test, err)
	assert.Equal(test, 1, nestedCount)

	matched, err := st.CountSearchByOwner(ctx, "u1", "report")
	require.NoError(test, err)
	assert.Equal(test, 2, matched)
}

func (suite *StoreTestSuite) TestFindByNameAndParent(test *testing.T) {
	st := suite.NewStore(test)
	ctx := context.Background()

	folder := NewTestFolder("u1", "Docs", nil, 0)
	require.NoError(test, st.CreateNode(ctx, folder))
	nested := NewTestFolder("u1", "Docs", &folder.ID, 1)
	require.NoError(test, st.CreateNode(ctx, nested))

	got, err := st.FindByNameAndParent(ctx, "u1", "Docs", nil)
	require.NoError(test, err)
	assert.Equal(test, folder.ID, got.ID)

	gotNested, err := st.FindByNameAndParent(ctx, "u1", "Docs", &folder.ID)
	require.NoError(test, err)
	assert.Equal(test, nested.ID, gotNested.ID)

	_, err = st.FindByNameAndParent(ctx, "u1", "Pictures", nil)
	assert.ErrorIs(test, err, store.ErrNodeNotFound)

	_, err = st.FindByNameAndParent(ctx, "u2", "Docs", nil)
	assert.ErrorIs(test, err, store.ErrNodeNotFound)
}
