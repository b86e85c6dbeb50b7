// Package common defines shared sentinel errors used across the server
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Token verification errors.
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenInvalidClaims = errors.New("invalid token claims")

	// Registration / login validation errors. The exact message text for
	// ErrUserExists and ErrInvalidCredentials is part of the API contract.
	ErrMissingFields      = errors.New("missing required fields")
	ErrUserExists         = errors.New("User already exists.")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("Invalid Credentials.")

	// Conversation lifecycle errors.
	ErrNoQuestions        = errors.New("no questions available")
	ErrConversationActive = errors.New("conversation already active")

	// Audio upload errors.
	ErrInvalidUpload = errors.New("invalid upload")
)
