// Package common defines shared constants and sentinel errors used across
// loankeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorInternal = errors.New("internal error")

	// Auth errors, mapped to user-visible messages by the CLI.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrInvalidResetCode   = errors.New("invalid or expired reset code")
	ErrInvalidToken       = errors.New("invalid token")

	// Validation errors raised before any write is issued.
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrAmountExceedsDue  = errors.New("amount exceeds remaining balance")
	ErrPaidExceedsTotal  = errors.New("paid amount cannot exceed total amount")
	ErrLenderRequired    = errors.New("lender is required")
	ErrNameRequired      = errors.New("name is required")
	ErrEmailRequired     = errors.New("email is required")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
)
