package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a minutes error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrFileNotFound        ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrNameAlreadyExists   ErrorCode = "NAME_ALREADY_EXISTS"  // 409
	ErrNotesTooLarge       ErrorCode = "NOTES_TOO_LARGE"      // 413
	ErrCancelled           ErrorCode = "CANCELLED"            // 499
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// MinutesError is a structured error carrying a code, an HTTP-like status
// and optional details for API clients.
type MinutesError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MinutesError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmbiguousAddressing is returned when both id and name are given.
func NewAmbiguousAddressing() *MinutesError {
	return &MinutesError{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: "cannot specify both id and name; use one addressing mode",
	}
}

func NewInvalidRequest(msg string) *MinutesError {
	return &MinutesError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound is returned when no digest matches an id or name.
func NewNotFound(identifier string) *MinutesError {
	return &MinutesError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("digest not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

func NewFileNotFound(path string) *MinutesError {
	return &MinutesError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNameAlreadyExists is returned by store in error mode on a name collision.
func NewNameAlreadyExists(workspace, name string) *MinutesError {
	return &MinutesError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("digest with name %q already exists in workspace %q", name, workspace),
		Details: map[string]any{"workspace": workspace, "name": name},
	}
}

// NewNotesTooLarge is returned when notes exceed notes_max_chars.
func NewNotesTooLarge(max, actual int) *MinutesError {
	return &MinutesError{
		Code:    ErrNotesTooLarge,
		Status:  413,
		Message: fmt.Sprintf("notes exceed maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

func NewCancelled(operation string) *MinutesError {
	return &MinutesError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal wraps an unexpected error.
func NewInternal(err error) *MinutesError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MinutesError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is reports whether err is, or wraps, a MinutesError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MinutesError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

// StatusOf returns the status carried by err, or 500.
func StatusOf(err error) int {
	var mErr *MinutesError
	if stderrors.As(err, &mErr) {
		return mErr.Status
	}
	return 500
}
