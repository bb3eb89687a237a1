package lang

import "errors"

// ErrInvalid indicates an invalid language code was specified.
var ErrInvalid = errors.New("invalid language code")

// ErrInvalidRegion indicates an invalid region code was specified.
var ErrInvalidRegion = errors.New("invalid region code")
