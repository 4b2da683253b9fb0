package core

import "errors"

// Error kinds shared across the ingest, storage and analytics layers.
//
// A pattern that does not match during extraction is not an error: the
// field is left null. A duplicate identity on upsert is not an error either:
// the gateway reports inserted=false.
var (
	// ErrMalformedInput marks structured input that violates its expected
	// shape, e.g. a statement missing a required column.
	ErrMalformedInput = errors.New("malformed input")

	// ErrExternalService marks failures of collaborators outside the
	// process (storage, text completion).
	ErrExternalService = errors.New("external service failure")

	// ErrNoData is returned by aggregations over an empty collection.
	ErrNoData = errors.New("no data")

	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCreditor = errors.New("empty creditor")
)
