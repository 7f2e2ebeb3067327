package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/harbordrive/pkg/blob"
	"github.com/harborfs/harbordrive/pkg/drive"
)

func TestMemoryBlobStore_RoundTrip(t *testing.T) {
	st := NewMemoryBlobStore()
	ctx := context.Background()

	result, err := st.Put(ctx, strings.NewReader("payload"), 7, "u1", "doc.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Path, "u1/"))
	assert.Equal(t, 1, st.Len())

	rc, err := st.Get(ctx, result.Path)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestMemoryBlobStore_SizeMismatch(t *testing.T) {
	st := NewMemoryBlobStore()

	_, err := st.Put(context.Background(), strings.NewReader("ab"), 5, "u1", "x.txt")
	require.Error(t, err)
}

func TestMemoryBlobStore_GetNotFound(t *testing.T) {
	st := NewMemoryBlobStore()

	_, err := st.Get(context.Background(), "u1/missing")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestMemoryBlobStore_DeleteIdempotent(t *testing.T) {
	st := NewMemoryBlobStore()
	ctx := context.Background()

	result, err := st.Put(ctx, strings.NewReader("x"), 1, "u1", "x.txt")
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, result.Path))
	require.NoError(t, st.Delete(ctx, result.Path))
	assert.Zero(t, st.Len())
}

func TestMemoryBlobStore_ResolveURLUnsupported(t *testing.T) {
	st := NewMemoryBlobStore()

	url, err := st.ResolveURL(context.Background(), "u1/anything")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestMemoryBlobStore_Backend(t *testing.T) {
	assert.Equal(t, drive.BackendMemory, NewMemoryBlobStore().Backend())
}
