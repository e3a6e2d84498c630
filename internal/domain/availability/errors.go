package availability

import "errors"

// Sentinel kinds for availability errors.
var (
	ErrNilSource         = errors.New("record source is required")
	ErrInvalidMaxPerLine = errors.New("max per-line quantity must not be negative")
)
