// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"strings"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address.
	Addr string `koanf:"addr"`

	// DBDriver selects the SQL dialect: sqlite or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver specific data source, a file path for sqlite.
	DBDSN string `koanf:"db_dsn"`

	// Pool sizing. The default keeps a single shared connection.
	DBMaxOpenConns       int `koanf:"db_max_open_conns"`
	DBMaxIdleConns       int `koanf:"db_max_idle_conns"`
	DBConnMaxLifetimeSec int `koanf:"db_conn_max_lifetime_sec"`

	// SlowQueryMS is the threshold above which statements are logged as slow.
	SlowQueryMS int `koanf:"slow_query_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":3000",
		DBDriver:       DriverSQLite,
		DBDSN:          "covid19India.db",
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
		SlowQueryMS:    200,
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DBDSN) == "":
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	case c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres:
		return fmt.Errorf("%w: unsupported db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.DBMaxOpenConns < 0, c.DBMaxIdleConns < 0, c.DBConnMaxLifetimeSec < 0:
		return fmt.Errorf("%w: pool settings must not be negative", ErrInvalidConfig)
	case c.SlowQueryMS < 0:
		return fmt.Errorf("%w: slow_query_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
