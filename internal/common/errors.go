// Package common defines shared constants and sentinel errors used by the
// handler, service and repository layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Request-level errors, detected before the store is contacted.
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid request body or missing fields")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrPartialRecord accompanies a record that was written but only
	// partly decoded on the way back.
	ErrPartialRecord = errors.New("record partially decoded")

	// ErrStoreFailure wraps any downstream DynamoDB error.
	ErrStoreFailure = errors.New("store failure")

	// ErrUnprocessedItems is returned when a batch write still has
	// unprocessed items after the retry budget is spent.
	ErrUnprocessedItems = errors.New("unprocessed items remain")

	// ErrSerialization marks a response that could not be encoded.
	ErrSerialization = errors.New("response serialization failed")
)
