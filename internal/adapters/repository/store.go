// Package repository provides SQL backed access to states and districts.
package repository

import (
	"context"
	"database/sql"

	"github.com/okian/covid19india/internal/domain/model"
)

// Store provides read/write access to the state and district tables. Every
// method runs exactly one statement; nothing spans a transaction.
type Store interface {
	// ListStates returns every state row in storage order.
	ListStates(ctx context.Context) ([]model.State, error)

	// GetState returns the state whose state_id equals stateID.
	// Returns ErrNotFound if no row matches.
	GetState(ctx context.Context, stateID string) (model.State, error)

	// CreateDistrict inserts a row and returns the id assigned by the store.
	CreateDistrict(ctx context.Context, in model.DistrictInput) (int64, error)

	// GetDistrict returns the district whose district_id equals districtID.
	// Returns ErrNotFound if no row matches.
	GetDistrict(ctx context.Context, districtID string) (model.District, error)

	// DeleteDistrict removes the matching row and reports how many rows went.
	// Zero rows is not an error.
	DeleteDistrict(ctx context.Context, districtID string) (int64, error)

	// UpdateDistrict overwrites all mutable columns of the matching row and
	// reports how many rows changed. Zero rows is not an error.
	UpdateDistrict(ctx context.Context, districtID string, in model.DistrictInput) (int64, error)

	// StateStats sums the case columns of every district of the state.
	// Totals are nil when the state has no districts.
	StateStats(ctx context.Context, stateID string) (model.StateStats, error)

	// DistrictStateName resolves the name of the state a district belongs to.
	// Returns ErrNotFound if the district does not exist or has no matching state.
	DistrictStateName(ctx context.Context, districtID string) (model.DistrictState, error)

	// PoolStats exposes the connection pool counters.
	PoolStats() sql.DBStats

	// Close releases the underlying connection.
	Close() error
}
