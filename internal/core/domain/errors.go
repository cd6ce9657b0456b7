package domain

import "errors"

var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginInProgress    = errors.New("login already in progress")
	ErrValidation         = errors.New("validation failed")
)
