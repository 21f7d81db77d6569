package repository

import (
	"errors"

	"github.com/okian/covid19india/internal/domain/model"
)

// Sentinel kinds for storage errors.
var (
	// ErrNotFound marks a keyed read that matched no row.
	ErrNotFound = model.ErrNotFound
	// ErrStorage wraps every error raised by the database layer.
	ErrStorage = errors.New("storage failure")
	// ErrUnsupportedDriver is returned by Open for unknown driver names.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
