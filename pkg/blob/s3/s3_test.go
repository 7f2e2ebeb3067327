package s3

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageKey(t *testing.T) {
	key := storageKey("u1", "report.pdf")

	assert.True(t, strings.HasPrefix(key, "u1/"), "key %q should be scoped to the owner", key)
	assert.True(t, strings.HasSuffix(key, "_report.pdf"), "key %q should keep the original name", key)
	assert.Equal(t, 1, strings.Count(key, "/"), "key %q should have exactly one path segment separator", key)
}

func TestStorageKey_Unique(t *testing.T) {
	a := storageKey("u1", "report.pdf")
	b := storageKey("u1", "report.pdf")
	assert.NotEqual(t, a, b, "same name must map to distinct keys")
}

func TestStorageKey_StripsDirectoryComponents(t *testing.T) {
	key := storageKey("u1", "../../etc/passwd")

	assert.True(t, strings.HasSuffix(key, "_passwd"), "key %q should keep only the base name", key)
	assert.Equal(t, 1, strings.Count(key, "/"), "key %q must not nest under extra prefixes", key)
	assert.NotContains(t, key, "..")
}
