package repository

import (
	"time"

	"github.com/okian/covid19india/pkg/logger"
)

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithLogger sets the logger used for statement tracing.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSlowQueryThreshold sets the duration above which statements are logged as slow.
// Zero disables slow query logging.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *SQLStore) {
		if d >= 0 {
			s.slowQuery = d
		}
	}
}

// WithMaxOpenConns caps the number of open connections. Zero means unlimited.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLStore) {
		if n >= 0 {
			s.maxOpen = n
		}
	}
}

// WithMaxIdleConns caps the number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(s *SQLStore) {
		if n >= 0 {
			s.maxIdle = n
		}
	}
}

// WithConnMaxLifetime sets how long a connection may be reused. Zero keeps it forever.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *SQLStore) {
		if d >= 0 {
			s.connMaxLifetime = d
		}
	}
}
