package model

import "errors"

// Canonical failure messages. Services wrap these into apierror values with
// their stable code and HTTP status; nothing matches on them with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrForbidden          = errors.New("forbidden")
)
