package storage

import "errors"

// Storage errors. Trade, graduation and price-point records are
// append-only: a committed record is never updated or deleted, so a key
// collision always means a duplicate insert (typically an event replay).
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a trade ID, token
	// graduation or price point that is already recorded.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
