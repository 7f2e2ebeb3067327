package drive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermission(t *testing.T) {
	tests := []struct {
		input string
		want  Permission
	}{
		{"view", PermissionView},
		{"edit", PermissionEdit},
		{"VIEW", PermissionView},
		{"Edit", PermissionEdit},
		{"  view  ", PermissionView},
	}

	for _, tt := range tests {
		got, err := ParsePermission(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParsePermission_Invalid(t *testing.T) {
	for _, input := range []string{"", "admin", "read", "view edit"} {
		_, err := ParsePermission(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, IsInvalidInput(err), "input %q should be invalid input", input)
	}
}

func TestNodeKind_String(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "folder", KindFolder.String())
	assert.Equal(t, "unknown", NodeKind(42).String())
}

func TestFileNode_IsFolder(t *testing.T) {
	file := &FileNode{Kind: KindFile}
	folder := &FileNode{Kind: KindFolder}

	assert.False(t, file.IsFolder())
	assert.True(t, folder.IsFolder())
}

func TestFileNode_Size(t *testing.T) {
	file := &FileNode{
		Kind: KindFile,
		Blob: &BlobRef{SizeBytes: 2048},
	}
	folder := &FileNode{Kind: KindFolder}

	assert.Equal(t, int64(2048), file.Size())
	assert.Equal(t, int64(0), folder.Size())
}

func TestShareLink_Expired(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&ShareLink{}).Expired(now), "no expiry never expires")
	assert.False(t, (&ShareLink{ExpiresAt: &future}).Expired(now))
	assert.True(t, (&ShareLink{ExpiresAt: &past}).Expired(now))
}

func TestShareLink_HasPassword(t *testing.T) {
	assert.False(t, (&ShareLink{}).HasPassword())
	assert.True(t, (&ShareLink{PasswordHash: "$2a$10$abcdef"}).HasPassword())
}
