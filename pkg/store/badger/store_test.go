package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborfs/harbordrive/pkg/store"
	storetesting "github.com/harborfs/harbordrive/pkg/store/testing"
)

// TestBadgerStore runs the complete store contract suite against the
// BadgerDB-backed implementation. Each test gets its own database under
// a temporary directory.
func TestBadgerStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.Store {
			st, err := NewBadgerStore(context.Background(), t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() {
				if err := st.Close(); err != nil {
					t.Errorf("failed to close badger store: %v", err)
				}
			})
			return st
		},
	}

	suite.Run(t)
}

func TestNewBadgerStore_EmptyPath(t *testing.T) {
	_, err := NewBadgerStore(context.Background(), "")
	require.Error(t, err)
}

// Reopening the database must surface previously written rows.
func TestBadgerStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := NewBadgerStore(ctx, dir)
	require.NoError(t, err)

	node := storetesting.NewTestFile("u1", "durable.txt", nil, 0)
	require.NoError(t, st.CreateNode(ctx, node))
	require.NoError(t, st.Close())

	reopened, err := NewBadgerStore(ctx, dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetNode(ctx, node.ID)
	require.NoError(t, err)
	require.Equal(t, "durable.txt", got.Name)
}
