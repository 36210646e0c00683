package analytics

import "errors"

var (
	// ErrInvalidInput reports a programming or data error in the arguments of a computation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound reports an unknown account, holding or user identifier.
	ErrNotFound = errors.New("not found")
)
