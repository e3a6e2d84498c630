package batcher

import "errors"

// Sentinel kinds for batcher errors.
var (
	ErrClosed      = errors.New("batcher is closed")
	ErrNilResolver = errors.New("resolver is required")
)
