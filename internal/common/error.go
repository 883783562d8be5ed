// Package common defines the sentinel errors and shared constants used across
// the notekeeper server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("identity already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential errors. Unknown identity and wrong password both map to
	// ErrInvalidCredentials.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Access errors. ErrAccountGone means the token was valid but its subject
	// no longer exists; the boundary reports it as unauthenticated.
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrAccountGone     = errors.New("account no longer exists")
	ErrForbidden       = errors.New("you do not have permission to perform this action")

	// Role management errors.
	ErrInvalidRole   = errors.New("role does not exist")
	ErrRoleUnchanged = errors.New("account already has this role")

	// Record errors.
	ErrNothingToUpdate = errors.New("no fields to update")

	// Throttling.
	ErrRateLimited = errors.New("too many attempts")
)
