package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrInvalidFlag indicates a flag value outside its accepted range.
	ErrInvalidFlag = errors.New("invalid flag value")

	// ErrDuplicateID indicates the same id was requested twice in one batch.
	ErrDuplicateID = errors.New("duplicate id")
)
