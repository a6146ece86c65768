package services

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP status codes; anything else is treated as a storage fault, logged
// server-side and genericized for the client.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidEnumValue   = errors.New("invalid category or priority value")
	ErrEmptyTitle         = errors.New("title must not be empty")
)

// RegistrationRejectedError reports identity policy violations at
// registration time. The reasons are user-facing.
type RegistrationRejectedError struct {
	Reasons []string
}

func (e *RegistrationRejectedError) Error() string {
	return "registration rejected: " + strings.Join(e.Reasons, "; ")
}
