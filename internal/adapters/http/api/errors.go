package api

import "errors"

// Sentinel kinds for API errors.
var (
	// ErrBadRequest marks a request body that could not be parsed.
	ErrBadRequest = errors.New("bad request")
)
