package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrEmptyDSN    = errors.New("database dsn must not be empty")
	ErrStoreClosed = errors.New("store is closed")
)
