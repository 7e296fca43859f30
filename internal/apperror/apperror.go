package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// Authentication failures. InvalidCredentials covers both "no such
	// account" and "wrong password" so a caller can't probe for emails;
	// AccountInactive is only returned when the credentials were correct.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")

	// ErrSelfModification is returned when the acting account tries to
	// deactivate or delete itself.
	ErrSelfModification = errors.New("self modification")

	// Password-reset failures. InvalidOrExpired and UnknownAccount are
	// deliberately distinct so the caller can report them differently.
	ErrResetInvalid   = errors.New("invalid or expired reset token")
	ErrUnknownAccount = errors.New("unknown account")

	// ErrFeatureDisabled is returned when an operation is attempted on a
	// feature an admin has switched off.
	ErrFeatureDisabled = errors.New("feature disabled")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials returns the generic login failure. The message does not
// say whether the email or the password was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid email or password",
	}
}

func AccountInactive(email string) *AppError {
	return &AppError{
		Err:     ErrAccountInactive,
		Message: fmt.Sprintf("account %s is inactive", email),
	}
}

func SelfModification(action string) *AppError {
	return &AppError{
		Err:     ErrSelfModification,
		Message: fmt.Sprintf("cannot %s your own account", action),
	}
}

func ResetInvalid() *AppError {
	return &AppError{
		Err:     ErrResetInvalid,
		Message: "invalid or expired reset token",
	}
}

func UnknownAccount(email string) *AppError {
	return &AppError{
		Err:     ErrUnknownAccount,
		Message: fmt.Sprintf("no account exists for %s", email),
	}
}

func FeatureDisabled(feature string) *AppError {
	return &AppError{
		Err:     ErrFeatureDisabled,
		Message: fmt.Sprintf("the %s feature is currently disabled", feature),
	}
}
