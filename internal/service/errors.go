// Package service holds the application services between the HTTP layer and
// the store: account handling, chat administration, and the message
// ingestion gateway.
package service

import "errors"

// Rejection taxonomy. Handlers map these onto HTTP statuses; everything else
// bubbles up as an internal error.
var (
	// ErrUnauthorized: the policy gate denied the operation. Fail closed,
	// no further detail.
	ErrUnauthorized = errors.New("not allowed")

	// ErrInvalidInput: a size or format constraint was violated.
	ErrInvalidInput = errors.New("incorrect parameters")

	// ErrNotEligible: the membership/ban check failed. Surfaced generically
	// so one user's rejection leaks nothing about another's membership.
	ErrNotEligible = errors.New("not eligible")

	// ErrPersistence: the store failed; transient, safe for the caller to
	// retry.
	ErrPersistence = errors.New("storage failure")

	// ErrInvalidCredentials: login with an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
