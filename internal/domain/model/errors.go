package model

import "errors"

var (
	// ErrNotFound marks a lookup by id that matched no row.
	ErrNotFound = errors.New("not found")

	// ErrNotObject rejects a request body whose top-level value is not an
	// object or array.
	ErrNotObject = errors.New("body must be a JSON object or array")

	// ErrTrailingData rejects a request body with content after the value.
	ErrTrailingData = errors.New("unexpected data after JSON value")
)
