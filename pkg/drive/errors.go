package drive

import "errors"

// Error is a domain error with a machine-readable category.
//
// The core signals failures by distinguishable codes rather than raw
// backend errors, so a transport layer can map each category to a status
// code without string matching. Infrastructure errors are wrapped in Err
// and remain reachable through errors.Unwrap.
type Error struct {
	// Code is the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error { return e.Err }

// ErrorCode categorizes a domain error.
type ErrorCode int

const (
	// CodeNotFound indicates the file, folder, link, or user is absent.
	CodeNotFound ErrorCode = iota

	// CodeForbidden indicates the caller is authenticated but not
	// authorized for the operation. Distinct from unauthenticated, which
	// is the transport layer's concern.
	CodeForbidden

	// CodeInvalidInput indicates a malformed argument: empty name, bad
	// parent, unknown permission value.
	CodeInvalidInput

	// CodeConflict indicates a uniqueness violation: duplicate folder
	// name, sharing a file with its own owner.
	CodeConflict

	// CodeStorageFailure indicates a blob backend I/O or network error.
	CodeStorageFailure

	// CodeLinkExpired indicates a share link whose expiry is in the past.
	// Separate from CodeNotFound so callers can message it differently.
	CodeLinkExpired
)

// NotFound builds a CodeNotFound error.
func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

// Forbidden builds a CodeForbidden error.
func Forbidden(msg string) *Error { return &Error{Code: CodeForbidden, Message: msg} }

// InvalidInput builds a CodeInvalidInput error.
func InvalidInput(msg string) *Error { return &Error{Code: CodeInvalidInput, Message: msg} }

// Conflict builds a CodeConflict error.
func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }

// StorageFailure builds a CodeStorageFailure error wrapping the cause.
func StorageFailure(msg string, err error) *Error {
	return &Error{Code: CodeStorageFailure, Message: msg, Err: err}
}

// LinkExpired builds a CodeLinkExpired error.
func LinkExpired(msg string) *Error { return &Error{Code: CodeLinkExpired, Message: msg} }

// codeOf extracts the domain error code, or -1 for non-domain errors.
func codeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return -1
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool { return codeOf(err) == CodeNotFound }

// IsForbidden reports whether err carries CodeForbidden.
func IsForbidden(err error) bool { return codeOf(err) == CodeForbidden }

// IsInvalidInput reports whether err carries CodeInvalidInput.
func IsInvalidInput(err error) bool { return codeOf(err) == CodeInvalidInput }

// IsConflict reports whether err carries CodeConflict.
func IsConflict(err error) bool { return codeOf(err) == CodeConflict }

// IsStorageFailure reports whether err carries CodeStorageFailure.
func IsStorageFailure(err error) bool { return codeOf(err) == CodeStorageFailure }

// IsLinkExpired reports whether err carries CodeLinkExpired.
func IsLinkExpired(err error) bool { return codeOf(err) == CodeLinkExpired }
