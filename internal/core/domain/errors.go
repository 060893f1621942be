package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown extractor, metric or report format.
	ErrUnsupportedType = errors.New("unsupported type")

	// Comparison Errors.

	// ErrInvalidConfig indicates the comparison settings are inconsistent.
	// It is fatal: no alignment work starts.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformedBlock indicates a block lacks a required attribute.
	// The block is excluded and reported as an issue; the run continues.
	ErrMalformedBlock = errors.New("malformed block")

	// ErrMetricFailure indicates a metric function failed or returned an out-of-range value.
	// The value is recorded as 0 with an issue; other metrics are unaffected.
	ErrMetricFailure = errors.New("metric failure")

	// ErrAborted indicates the run was cancelled or timed out.
	// No partial result is returned.
	ErrAborted = errors.New("comparison aborted")
)
