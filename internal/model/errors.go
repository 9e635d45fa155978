package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by stores when a record does not exist or is expired.
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable marks infrastructure failures (timeouts, lost
	// connections) as distinct from lookup misses. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidCredential is returned when a password does not verify.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidRefreshToken covers missing, expired, consumed and forged
	// refresh tokens. The caller must re-authenticate, not retry.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrRateLimited is returned when the sign-in/sign-up throttle trips.
	ErrRateLimited = errors.New("too many attempts")
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// APIError carries an HTTP status and a caller-safe message through the
// service layer to the transport edge.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewErrValidation reports malformed or missing input for a specific field.
func NewErrValidation(field, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Field: field}
}

// NewErrEmailTaken reports a sign-up with an already registered email.
func NewErrEmailTaken(email string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: "user already exists with this email", Field: "email"}
}

// NewErrUsernameTaken reports a sign-up with an already taken username.
func NewErrUsernameTaken(username string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: "username already exists", Field: "username"}
}

// NewErrUserNotFound reports a sign-in against an unknown email.
func NewErrUserNotFound() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: "user not found"}
}
