// internal/domain/errors.go
package domain

import "errors"

var (
	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// Session errors
	ErrNoToken      = errors.New("authentication required")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")

	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPendingApproval    = errors.New("account is pending admin approval")
	ErrAccountRejected    = errors.New("application has been rejected")
	ErrSelfDelete         = errors.New("cannot delete your own account")

	// Organization-related errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNotOrganizationOwner = errors.New("only the organization admin may do this")
	ErrNotMember            = errors.New("not a member of this organization")
	ErrAlreadyMember        = errors.New("already a member")
	ErrInvalidJoiningCode   = errors.New("invalid joining code")

	// Message-related errors
	ErrEmptyMessage = errors.New("message text is required")
)
