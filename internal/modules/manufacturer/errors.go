package manufacturer

import "errors"

var (
	// ErrInvalidInput marks request payloads that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOrderNotFound is returned when no order matches the given id.
	ErrOrderNotFound = errors.New("manufacturer order not found")

	// ErrInvalidTransition is returned when a status change would move
	// the order backwards or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
)
