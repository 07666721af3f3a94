package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")

	// key-value storage
	ErrKeyNotFound      = errors.New("key not found")
	ErrInvalidKey       = errors.New("invalid key")
	ErrStoreUnavailable = errors.New("store unavailable")

	// authentication
	ErrMissingToken      = errors.New("access token required")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrInvalidCredential = errors.New("invalid identity credential")
	ErrNotLoggedIn       = errors.New("not logged in")
)
