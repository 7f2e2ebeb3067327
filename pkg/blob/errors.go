package blob

import "errors"

// Standard blob store errors.
//
// Implementations wrap these with context:
//
//	return nil, fmt.Errorf("blob %s: %w", path, blob.ErrBlobNotFound)
//
// The service layer checks them with errors.Is and translates them to
// domain error codes (pkg/drive) before they reach a transport.
var (
	// ErrBlobNotFound indicates the object at the given storage path does
	// not exist in the backend.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrBlobExists indicates a write would overwrite an existing object.
	// Put generates unique names, so hitting this means name generation
	// collided with a pre-existing object; the write is refused.
	ErrBlobExists = errors.New("blob already exists")
)
