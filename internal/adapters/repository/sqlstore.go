package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/okian/covid19india/internal/domain/model"
	"github.com/okian/covid19india/pkg/logger"
	"github.com/okian/covid19india/pkg/metrics"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Defaults keep one shared connection, like a single database handle opened at startup.
const (
	defaultMaxOpenConns = 1
	defaultMaxIdleConns = 1
	defaultSlowQuery    = 200 * time.Millisecond
)

// SQLStore implements Store on top of gorm using raw parameterized statements.
type SQLStore struct {
	db     *gorm.DB
	driver string

	logger          logger.Logger
	slowQuery       time.Duration
	maxOpen         int
	maxIdle         int
	connMaxLifetime time.Duration
}

var _ Store = (*SQLStore)(nil)

func newStore(opts ...Option) *SQLStore {
	s := &SQLStore{
		slowQuery: defaultSlowQuery,
		maxOpen:   defaultMaxOpenConns,
		maxIdle:   defaultMaxIdleConns,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("repository")
	}
	return s
}

// Open connects to the database identified by driver and dsn and verifies
// the connection. The schema is expected to exist already.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	s := newStore(opts...)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(s.logger, s.slowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorage, driver, err)
	}
	s.db = db
	s.driver = driver

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	sqlDB.SetMaxOpenConns(s.maxOpen)
	sqlDB.SetMaxIdleConns(s.maxIdle)
	sqlDB.SetConnMaxLifetime(s.connMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrStorage, driver, err)
	}

	s.logger.Info(ctx, "database connection opened",
		logger.String("driver", driver),
		logger.Int("maxOpenConns", s.maxOpen),
		logger.Int("maxIdleConns", s.maxIdle))
	return s, nil
}

// NewSQLStore wraps an already opened gorm handle.
func NewSQLStore(db *gorm.DB, opts ...Option) *SQLStore {
	s := newStore(opts...)
	s.db = db.Session(&gorm.Session{Logger: newGormLogger(s.logger, s.slowQuery)})
	s.driver = db.Dialector.Name()
	return s
}

// DB exposes the gorm handle for tooling that needs direct access.
func (s *SQLStore) DB() *gorm.DB {
	return s.db
}

// Driver returns the dialect name of the underlying connection.
func (s *SQLStore) Driver() string {
	return s.driver
}

// ListStates returns every state row.
func (s *SQLStore) ListStates(ctx context.Context) ([]model.State, error) {
	start := time.Now()
	var states []model.State
	err := s.db.WithContext(ctx).Raw(sqlListStates).Scan(&states).Error
	s.observe(opListStates, start)
	if err != nil {
		return nil, s.fail(opListStates, err)
	}
	if states == nil {
		states = []model.State{}
	}
	return states, nil
}

// GetState returns a single state by id.
func (s *SQLStore) GetState(ctx context.Context, stateID string) (model.State, error) {
	start := time.Now()
	var st model.State
	tx := s.db.WithContext(ctx).Raw(sqlGetState, stateID).Scan(&st)
	s.observe(opGetState, start)
	if tx.Error != nil {
		return model.State{}, s.fail(opGetState, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return model.State{}, fmt.Errorf("state %s: %w", stateID, ErrNotFound)
	}
	return st, nil
}

// CreateDistrict inserts a district and returns its id.
func (s *SQLStore) CreateDistrict(ctx context.Context, in model.DistrictInput) (int64, error) {
	start := time.Now()
	var id int64
	err := s.db.WithContext(ctx).Raw(sqlInsertDistrict, in.Args()...).Scan(&id).Error
	s.observe(opInsertDistrict, start)
	if err != nil {
		return 0, s.fail(opInsertDistrict, err)
	}
	metrics.RecordDistrictCreated()
	return id, nil
}

// GetDistrict returns a single district by id.
func (s *SQLStore) GetDistrict(ctx context.Context, districtID string) (model.District, error) {
	start := time.Now()
	var d model.District
	tx := s.db.WithContext(ctx).Raw(sqlGetDistrict, districtID).Scan(&d)
	s.observe(opGetDistrict, start)
	if tx.Error != nil {
		return model.District{}, s.fail(opGetDistrict, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return model.District{}, fmt.Errorf("district %s: %w", districtID, ErrNotFound)
	}
	return d, nil
}

// DeleteDistrict deletes a district by id.
func (s *SQLStore) DeleteDistrict(ctx context.Context, districtID string) (int64, error) {
	start := time.Now()
	tx := s.db.WithContext(ctx).Exec(sqlDeleteDistrict, districtID)
	s.observe(opDeleteDistrict, start)
	if tx.Error != nil {
		return 0, s.fail(opDeleteDistrict, tx.Error)
	}
	if tx.RowsAffected > 0 {
		metrics.RecordDistrictDeleted()
	}
	return tx.RowsAffected, nil
}

// UpdateDistrict overwrites a district by id.
func (s *SQLStore) UpdateDistrict(ctx context.Context, districtID string, in model.DistrictInput) (int64, error) {
	start := time.Now()
	args := append(in.Args(), districtID)
	tx := s.db.WithContext(ctx).Exec(sqlUpdateDistrict, args...)
	s.observe(opUpdateDistrict, start)
	if tx.Error != nil {
		return 0, s.fail(opUpdateDistrict, tx.Error)
	}
	if tx.RowsAffected > 0 {
		metrics.RecordDistrictUpdated()
	}
	return tx.RowsAffected, nil
}

// StateStats aggregates the district counts of a state.
func (s *SQLStore) StateStats(ctx context.Context, stateID string) (model.StateStats, error) {
	start := time.Now()
	var stats model.StateStats
	err := s.db.WithContext(ctx).Raw(sqlStateStats, stateID).Scan(&stats).Error
	s.observe(opStateStats, start)
	if err != nil {
		return model.StateStats{}, s.fail(opStateStats, err)
	}
	return stats, nil
}

// DistrictStateName joins a district to its state and returns the state name.
func (s *SQLStore) DistrictStateName(ctx context.Context, districtID string) (model.DistrictState, error) {
	start := time.Now()
	var ds model.DistrictState
	tx := s.db.WithContext(ctx).Raw(sqlDistrictStateName, districtID).Scan(&ds)
	s.observe(opDistrictStateName, start)
	if tx.Error != nil {
		return model.DistrictState{}, s.fail(opDistrictStateName, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return model.DistrictState{}, fmt.Errorf("district %s: %w", districtID, ErrNotFound)
	}
	return ds, nil
}

// PoolStats returns the connection pool counters, or zero values when the
// handle cannot be reached.
func (s *SQLStore) PoolStats() sql.DBStats {
	sqlDB, err := s.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrStorage, err)
	}
	return nil
}

func (s *SQLStore) observe(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// fail records the failure and wraps err as a storage failure. Postgres
// errors carry their SQLSTATE so constraint violations are recognisable in logs.
func (s *SQLStore) fail(op string, err error) error {
	metrics.RecordRepositoryError(op)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (sqlstate %s): %w", ErrStorage, op, pgErr.Code, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
