package services

import "errors"

// Failure taxonomy returned by every service operation. Controllers map these
// to HTTP statuses with errors.Is; nothing below the controller boundary
// formats an HTTP response.
var (
	// ErrUnauthenticated - no resolvable caller identity on the request
	ErrUnauthenticated = errors.New("no caller identity")

	// ErrForbidden - identity resolved but not permitted for this record/action
	ErrForbidden = errors.New("not permitted for this record")

	// ErrNotFound - referenced interest/conversation/member does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict - duplicate pending interest or another uniqueness violation
	ErrConflict = errors.New("conflicting record already exists")

	// ErrInvalidTransition - interest state machine rule violated
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation - malformed input
	ErrValidation = errors.New("invalid input")

	// ErrDependency - profile store or notification sink unreachable
	ErrDependency = errors.New("dependency unavailable")
)
