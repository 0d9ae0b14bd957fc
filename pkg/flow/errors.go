package flow

import "errors"

// Configuration errors raised at build/compile time or on first execution.
// They are fatal and never retried.
var (
	ErrDuplicateStep = errors.New("step already registered")
	ErrNoEntry       = errors.New("no entry step defined")
	ErrUnknownStep   = errors.New("unknown step")
)
