package drive

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	plain := NotFound("file not found")
	assert.Equal(t, "file not found", plain.Error())

	cause := errors.New("disk full")
	wrapped := StorageFailure("failed to store content", cause)
	assert.Equal(t, "failed to store content: disk full", wrapped.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageFailure("upload failed", cause)

	assert.True(t, errors.Is(err, cause))

	// Predicates still work through further wrapping.
	outer := fmt.Errorf("handling request: %w", err)
	assert.True(t, IsStorageFailure(outer))
	assert.True(t, errors.Is(outer, cause))
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		err  error
		want func(error) bool
	}{
		{NotFound("gone"), IsNotFound},
		{Forbidden("no"), IsForbidden},
		{InvalidInput("bad"), IsInvalidInput},
		{Conflict("dup"), IsConflict},
		{StorageFailure("io", nil), IsStorageFailure},
		{LinkExpired("stale"), IsLinkExpired},
	}

	all := []func(error) bool{
		IsNotFound, IsForbidden, IsInvalidInput,
		IsConflict, IsStorageFailure, IsLinkExpired,
	}

	for _, tt := range tests {
		require.True(t, tt.want(tt.err), "%v", tt.err)
		matches := 0
		for _, pred := range all {
			if pred(tt.err) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "%v should match exactly one predicate", tt.err)
	}
}

func TestErrorPredicates_NonDomainError(t *testing.T) {
	err := errors.New("plain error")
	assert.False(t, IsNotFound(err))
	assert.False(t, IsForbidden(err))
	assert.False(t, IsStorageFailure(err))
	assert.False(t, IsNotFound(nil))
}
