package entity

import "errors"

var (
	// ErrNotFound signals that a referenced record does not exist or does
	// not belong to the requesting customer.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals rejected input; no state was changed.
	ErrValidation = errors.New("validation failed")

	// ErrStateConflict signals an operation that is illegal in the record's
	// current state, e.g. mutating items of a paid order.
	ErrStateConflict = errors.New("state conflict")
)
