package exam

import "errors"

var (
	ErrTestNotFound    = errors.New("test not found")
	ErrAttemptNotFound = errors.New("attempt not found")

	// ErrInvalidTest is returned when an operation targets the wrong kind of
	// test, e.g. submitting a review attempt against a standard test or a
	// review test owned by somebody else.
	ErrInvalidTest = errors.New("invalid test")

	ErrForbidden = errors.New("forbidden")
)
