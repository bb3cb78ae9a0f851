package introspect

import (
	"errors"
	"log/slog"
	"time"
)

// Config holds the settings of one schema read.
type Config struct {
	// Schemas restricts the read to these namespaces. Empty means every
	// non-system namespace (Postgres) or the connected database (MySQL).
	Schemas []string
	// ExcludeTables lists table names to skip.
	ExcludeTables []string
	// Logger receives debug records per table and slow query warnings.
	Logger *slog.Logger
	// SlowThreshold is the duration above which a catalog query is logged
	// as slow.
	SlowThreshold time.Duration
}

// Option configures a schema read.
type Option func(*Config) error

// WithSchemas restricts introspection to the given namespaces.
func WithSchemas(schemas ...string) Option {
	return func(c *Config) error {
		for _, s := range schemas {
			if s == "" {
				return NewOptionError("Schemas", nil, "schema name cannot be empty")
			}
		}
		c.Schemas = append(c.Schemas, schemas...)
		return nil
	}
}

// WithExcludeTables skips the named tables.
func WithExcludeTables(tables ...string) Option {
	return func(c *Config) error {
		c.ExcludeTables = append(c.ExcludeTables, tables...)
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewOptionError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithSlowThreshold sets the slow query threshold.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return NewOptionError("SlowThreshold", d, "threshold must be positive")
		}
		c.SlowThreshold = d
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Logger:        slog.Default(),
		SlowThreshold: 500 * time.Millisecond,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
