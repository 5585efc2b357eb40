package errors

import "fmt"

// ErrorCode represents a poeledger error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// LedgerError represents a structured error with code, status, and details.
// Data-shape problems in inbound payloads never surface here: those degrade
// to safe defaults inside the ops. LedgerError covers caller mistakes and
// storage failures.
type LedgerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LedgerError {
	return &LedgerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a character with no ledger on disk.
func NewNotFound(identifier string) *LedgerError {
	return &LedgerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no ledger for character: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *LedgerError {
	return &LedgerError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for storage and other unexpected failures.
func NewInternal(err error) *LedgerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LedgerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a LedgerError with the given code.
func Is(err error, code ErrorCode) bool {
	if lErr, ok := err.(*LedgerError); ok {
		return lErr.Code == code
	}
	return false
}
