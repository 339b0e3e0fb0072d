package tracking

import "errors"

var (
	// ErrInvalidInput marks lookup requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream is returned when the carrier aggregator cannot be
	// reached or answers with an error.
	ErrUpstream = errors.New("tracking provider unavailable")
)
