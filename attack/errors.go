package attack

import "errors"

var (
	// ErrInvalidInput reports malformed parameters, vectors or batches.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInconsistentGuess is returned when a recovered guess cannot contain
	// the true secret. With correctly generated samples this signals a
	// parameter or implementation bug.
	ErrInconsistentGuess = errors.New("inconsistent guess")
	// ErrSamplingExhausted is returned when the rejection loop hits its
	// attempt cap without accepting a vector.
	ErrSamplingExhausted = errors.New("sampling exhausted")
)
