package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory_FindUserByEmail(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory(
		&User{ID: "u1", Email: "alice@example.com", Name: "Alice"},
		&User{ID: "u2", Email: "bob@example.com", Name: "Bob"},
	)

	u, err := dir.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	// Lookup is case-insensitive and tolerant of surrounding whitespace.
	u, err = dir.FindUserByEmail(ctx, "  Bob@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)

	_, err = dir.FindUserByEmail(ctx, "carol@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryDirectory_FindUserByID(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory(&User{ID: "u1", Email: "alice@example.com"})

	u, err := dir.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = dir.FindUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryDirectory_AddReplaces(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	dir.Add(&User{ID: "u1", Email: "alice@example.com", Name: "Alice"})
	dir.Add(&User{ID: "u1", Email: "alice@example.com", Name: "Alice Smith"})

	u, err := dir.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", u.Name)
}

func TestMemoryDirectory_CopyOnRead(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory(&User{ID: "u1", Email: "alice@example.com", Name: "Alice"})

	u, err := dir.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	u.Name = "mutated"

	again, err := dir.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
}
