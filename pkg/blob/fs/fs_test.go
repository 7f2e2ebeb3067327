package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/harbordrive/pkg/blob"
	"github.com/harborfs/harbordrive/pkg/drive"
)

func newTestStore(t *testing.T) *FSBlobStore {
	t.Helper()
	st, err := NewFSBlobStore(context.Background(), t.TempDir())
	require.NoError(t, err)
	return st
}

func TestNewFSBlobStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "blobs")

	_, err := NewFSBlobStore(context.Background(), root)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "users"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFSBlobStore_EmptyRoot(t *testing.T) {
	_, err := NewFSBlobStore(context.Background(), "")
	require.Error(t, err)
}

func TestPut_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	content := "hello harbordrive"
	result, err := st.Put(ctx, strings.NewReader(content), int64(len(content)), "u1", "report.pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Path, "users/u1/"))
	assert.True(t, strings.HasSuffix(result.Path, "_report.pdf"))

	rc, err := st.Get(ctx, result.Path)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestPut_UniqueNames(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.Put(ctx, strings.NewReader("v1"), 2, "u1", "same.txt")
	require.NoError(t, err)
	second, err := st.Put(ctx, strings.NewReader("v2"), 2, "u1", "same.txt")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
}

func TestPut_StripsDirectoryComponents(t *testing.T) {
	st := newTestStore(t)

	result, err := st.Put(context.Background(), strings.NewReader("x"), 1, "u1", "../../etc/passwd")
	require.NoError(t, err)

	// Only the base name survives; the blob stays inside the owner dir.
	assert.True(t, strings.HasPrefix(result.Path, "users/u1/"))
	assert.True(t, strings.HasSuffix(result.Path, "_passwd"))
}

func TestPut_SizeMismatch(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Put(context.Background(), strings.NewReader("abc"), 99, "u1", "short.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size mismatch")
}

func TestGet_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Get(context.Background(), "users/u1/missing")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	result, err := st.Put(ctx, strings.NewReader("bye"), 3, "u1", "gone.txt")
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, result.Path))
	require.NoError(t, st.Delete(ctx, result.Path))

	_, err = st.Get(ctx, result.Path)
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestResolveURL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	result, err := st.Put(ctx, strings.NewReader("x"), 1, "u1", "pic.png")
	require.NoError(t, err)

	url, err := st.ResolveURL(ctx, result.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/api/files/download/"))

	absent, err := st.ResolveURL(ctx, "users/u1/not-there")
	require.NoError(t, err)
	assert.Empty(t, absent)
}

func TestBackend(t *testing.T) {
	st := newTestStore(t)
	assert.Equal(t, drive.BackendFilesystem, st.Backend())
}
