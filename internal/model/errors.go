package model

import "errors"

// Common errors used across the application
var (
	// Form errors
	ErrMissingFields = errors.New("all fields are required")
	ErrUnknownField  = errors.New("unknown form field")

	// Gate errors
	ErrNotChallenging     = errors.New("no challenge in progress")
	ErrChallengeIncorrect = errors.New("incorrect, try again")
	ErrTokenMissing       = errors.New("verification token missing")
	ErrInvalidAction      = errors.New("invalid challenge action")
	ErrChallengeExpired   = errors.New("challenge expired")
	ErrSubmissionInFlight = errors.New("registration already in progress")
	ErrGateClosed         = errors.New("signup session closed")
	ErrSessionNotFound    = errors.New("signup session not found")

	// Registration errors
	ErrRegistrationTransport = errors.New("registration call failed")

	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already in use")
)
