package models

import "errors"

// Domain specific errors for account screens and their data access.
var (
	ErrNotFound       = errors.New("requested item not found")
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrUserIDRequired = errors.New("user id is required for non-admin users")
	ErrUnknownTab     = errors.New("unknown tab")
)
