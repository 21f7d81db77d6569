// Package repotest builds throwaway SQLite stores with the covid19india
// schema for tests.
package repotest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/okian/covid19india/internal/adapters/repository"
)

// Schema mirrors the tables of covid19India.db.
var Schema = []string{
	`CREATE TABLE state (
		state_id INTEGER PRIMARY KEY,
		state_name TEXT,
		population INTEGER
	)`,
	`CREATE TABLE district (
		district_id INTEGER PRIMARY KEY AUTOINCREMENT,
		district_name TEXT,
		state_id INTEGER,
		cases INTEGER,
		cured INTEGER,
		active INTEGER,
		deaths INTEGER
	)`,
}

// State ids seeded by NewStore.
const (
	AndamanID       = 1
	AndhraPradeshID = 2
	KeralaID        = 17
)

var seed = []string{
	`INSERT INTO state (state_id, state_name, population) VALUES (1, 'Andaman and Nicobar Islands', 380581)`,
	`INSERT INTO state (state_id, state_name, population) VALUES (2, 'Andhra Pradesh', 49386799)`,
	`INSERT INTO state (state_id, state_name, population) VALUES (17, 'Kerala', 33406061)`,
}

// NewStore opens a private in-memory database, creates the schema, seeds
// three states and registers cleanup on t.
func NewStore(t testing.TB) *repository.SQLStore {
	t.Helper()
	store := NewEmptyStore(t)
	for _, stmt := range seed {
		if err := store.DB().Exec(stmt).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

// NewEmptyStore is NewStore without seed rows.
func NewEmptyStore(t testing.TB) *repository.SQLStore {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	store, err := repository.Open(context.Background(), repository.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	for _, stmt := range Schema {
		if err := store.DB().Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return store
}

// InsertDistrict adds a district row directly and returns its id.
func InsertDistrict(t testing.TB, store *repository.SQLStore, name string, stateID, cases, cured, active, deaths int64) int64 {
	t.Helper()
	var id int64
	err := store.DB().Raw(
		`INSERT INTO district (district_name, state_id, cases, cured, active, deaths) VALUES (?, ?, ?, ?, ?, ?) RETURNING district_id`,
		name, stateID, cases, cured, active, deaths,
	).Scan(&id).Error
	if err != nil {
		t.Fatalf("insert district: %v", err)
	}
	return id
}
