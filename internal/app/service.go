// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/covid19india/internal/adapters/repository"
	"github.com/okian/covid19india/internal/domain/model"
	"github.com/okian/covid19india/pkg/logger"
	"github.com/okian/covid19india/pkg/metrics"
)

// ErrNotStarted is returned by data operations before Start succeeded.
var ErrNotStarted = errors.New("service not started")

// Service owns the database handle and serves the API's data operations.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	driver          string
	dsn             string
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	slowQuery       time.Duration

	// State
	started   bool
	ownsStore bool
	startedAt time.Time
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDriver selects the database driver (sqlite or postgres).
func WithDriver(driver string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
		}
	}
}

// WithDSN sets the data source name passed to the driver.
func WithDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.dsn = dsn
		}
	}
}

// WithMaxOpenConns caps the number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns caps the number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime bounds how long a connection is reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.connMaxLifetime = d
		}
	}
}

// WithSlowQueryThreshold sets the slow statement logging threshold.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.slowQuery = d
		}
	}
}

// WithStore injects an already opened store. The service will not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:       repository.DriverSQLite,
		dsn:          "covid19India.db",
		maxOpenConns: 1,
		maxIdleConns: 1,
		slowQuery:    200 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the database connection once. Calling Start on a started
// service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		s.logger.Info(ctx, "opening database", logger.String("driver", s.driver))
		store, err := repository.Open(ctx, s.driver, s.dsn,
			repository.WithLogger(s.logger.Named("repository")),
			repository.WithMaxOpenConns(s.maxOpenConns),
			repository.WithMaxIdleConns(s.maxIdleConns),
			repository.WithConnMaxLifetime(s.connMaxLifetime),
			repository.WithSlowQueryThreshold(s.slowQuery),
		)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "covid19india service started", logger.String("driver", s.driver))
	return nil
}

// Stop releases the database connection if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping covid19india service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "failed to close database", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "covid19india service stopped")
}

// repo returns the store if the service is running.
func (s *Service) repo() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// ListStates returns all states.
func (s *Service) ListStates(ctx context.Context) ([]model.State, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	return store.ListStates(ctx)
}

// GetState returns the state identified by stateID.
func (s *Service) GetState(ctx context.Context, stateID string) (model.State, error) {
	store, err := s.repo()
	if err != nil {
		return model.State{}, err
	}
	st, err := store.GetState(ctx, stateID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordNotFound("state")
	}
	return st, err
}

// CreateDistrict inserts a district.
func (s *Service) CreateDistrict(ctx context.Context, in model.DistrictInput) (int64, error) {
	store, err := s.repo()
	if err != nil {
		return 0, err
	}
	id, err := store.CreateDistrict(ctx, in)
	if err != nil {
		return 0, err
	}
	s.logger.Debug(ctx, "district created", logger.Int64("districtId", id))
	return id, nil
}

// GetDistrict returns the district identified by districtID.
func (s *Service) GetDistrict(ctx context.Context, districtID string) (model.District, error) {
	store, err := s.repo()
	if err != nil {
		return model.District{}, err
	}
	d, err := store.GetDistrict(ctx, districtID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordNotFound("district")
	}
	return d, err
}

// DeleteDistrict removes a district. Deleting a missing id succeeds.
func (s *Service) DeleteDistrict(ctx context.Context, districtID string) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	rows, err := store.DeleteDistrict(ctx, districtID)
	if err != nil {
		return err
	}
	if rows == 0 {
		s.logger.Debug(ctx, "delete matched no district", logger.String("districtId", districtID))
	}
	return nil
}

// UpdateDistrict overwrites a district. Updating a missing id succeeds.
func (s *Service) UpdateDistrict(ctx context.Context, districtID string, in model.DistrictInput) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	rows, err := store.UpdateDistrict(ctx, districtID, in)
	if err != nil {
		return err
	}
	if rows == 0 {
		s.logger.Debug(ctx, "update matched no district", logger.String("districtId", districtID))
	}
	return nil
}

// StateStats returns the case totals for a state.
func (s *Service) StateStats(ctx context.Context, stateID string) (model.StateStats, error) {
	store, err := s.repo()
	if err != nil {
		return model.StateStats{}, err
	}
	return store.StateStats(ctx, stateID)
}

// DistrictStateName returns the name of the state a district belongs to.
func (s *Service) DistrictStateName(ctx context.Context, districtID string) (model.DistrictState, error) {
	store, err := s.repo()
	if err != nil {
		return model.DistrictState{}, err
	}
	ds, err := store.DistrictStateName(ctx, districtID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordNotFound("district")
	}
	return ds, err
}

// GetStats returns service statistics for monitoring and refreshes the
// connection pool gauges.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"driver":  s.driver,
	}

	if s.started && s.store != nil {
		pool := s.store.PoolStats()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["maxOpenConnections"] = pool.MaxOpenConnections
		stats["openConnections"] = pool.OpenConnections
		stats["inUse"] = pool.InUse
		stats["idle"] = pool.Idle
		stats["waitCount"] = pool.WaitCount

		metrics.UpdateDBPool(pool.OpenConnections, pool.InUse, pool.Idle, pool.WaitCount)
	}

	return stats
}
