package loader

import "errors"

var (
	// ErrNilLoader is returned when WithLoader is given a nil implementation.
	ErrNilLoader = errors.New("loader cannot be nil")
)
