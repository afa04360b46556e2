package errors

import (
	"errors"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeAccountInactive = "ACCOUNT_INACTIVE"

	// Validation errors
	ErrCodeValidation = "VALIDATION_ERROR"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"

	// Membership errors
	ErrCodeAlreadyMember      = "ALREADY_MEMBER"
	ErrCodeNotMember          = "NOT_MEMBER"
	ErrCodeCannotRemoveLeader = "CANNOT_REMOVE_LEADER"

	// Anything that is not an AppError, store I/O failures included
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// AppError is a classified domain error. Sentinels are compared by identity;
// use CodeOf to branch on the category.
type AppError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Predefined errors
var (
	ErrUnauthorized    = NewAppError(ErrCodeUnauthorized, "unauthorized")
	ErrAccountInactive = NewAppError(ErrCodeAccountInactive, "account is inactive")

	ErrValidation = NewAppError(ErrCodeValidation, "validation error")

	ErrUserNotFound    = NewAppError(ErrCodeNotFound, "user not found")
	ErrProjectNotFound = NewAppError(ErrCodeNotFound, "project not found")
	ErrTaskNotFound    = NewAppError(ErrCodeNotFound, "task not found")

	ErrAlreadyExists      = NewAppError(ErrCodeAlreadyExists, "already exists")
	ErrAlreadyMember      = NewAppError(ErrCodeAlreadyMember, "user is already a member of the project")
	ErrNotMember          = NewAppError(ErrCodeNotMember, "user is not a member of the project")
	ErrCannotRemoveLeader = NewAppError(ErrCodeCannotRemoveLeader, "the project leader cannot be removed")
)

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternalError when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// IsBenign reports whether err is a no-op notice rather than a failure.
func IsBenign(err error) bool {
	switch CodeOf(err) {
	case ErrCodeAlreadyExists, ErrCodeAlreadyMember, ErrCodeNotMember:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}
