package gen

import (
	"errors"
	"log/slog"
	"path"
	"strings"

	"github.com/syssam/archgen/naming"
	"github.com/syssam/archgen/schema"
)

// DefaultProjectName is the project name used when none is configured.
const DefaultProjectName = "GeneratedApp"

// Config holds the settings of a generation run.
type Config struct {
	// Groups places tables under group directories. Only used when
	// Grouped is true.
	Groups  schema.Groups
	Grouped bool
	// Progress receives progress notifications. May be nil.
	Progress ProgressFunc
	Logger   *slog.Logger
	// ProjectName names the solution or workspace.
	ProjectName string
	// ModulePath is the Go module path of golang projects. Defaults to
	// "example.com/<project>".
	ModulePath string
	// Include and Exclude select tables by path.Match pattern.
	Include []string
	Exclude []string
}

// Option configures code generation.
type Option func(*Config) error

// WithGroups places every table under the directory of its group. Tables
// not listed in any group go to schema.DefaultGroup.
func WithGroups(groups schema.Groups) Option {
	return func(c *Config) error {
		if err := groups.Validate(); err != nil {
			return &ConfigError{Option: "Groups", Message: "invalid table groups", Cause: err}
		}
		c.Groups = groups
		c.Grouped = true
		return nil
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Config) error {
		c.Progress = fn
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithProjectName sets the project name. It is normalized to Pascal case
// ("my shop" becomes "MyShop").
func WithProjectName(name string) Option {
	return func(c *Config) error {
		p := naming.Pascal(name)
		if p == "" {
			return NewConfigError("ProjectName", nil, "project name cannot be empty")
		}
		c.ProjectName = p
		return nil
	}
}

// WithModulePath sets the Go module path of golang projects.
// For example: "github.com/acme/shop".
func WithModulePath(module string) Option {
	return func(c *Config) error {
		switch {
		case module == "":
			return NewConfigError("ModulePath", nil, "module path cannot be empty")
		case strings.ContainsAny(module, " \t\\") || strings.HasPrefix(module, "/") || strings.HasSuffix(module, "/"):
			return NewConfigError("ModulePath", module, "invalid module path")
		}
		c.ModulePath = module
		return nil
	}
}

// WithTables restricts generation to tables matching one of the patterns.
func WithTables(patterns ...string) Option {
	return func(c *Config) error {
		if err := checkPatterns("Tables", patterns); err != nil {
			return err
		}
		c.Include = append(c.Include, patterns...)
		return nil
	}
}

// WithExcludeTables skips tables matching one of the patterns.
func WithExcludeTables(patterns ...string) Option {
	return func(c *Config) error {
		if err := checkPatterns("ExcludeTables", patterns); err != nil {
			return err
		}
		c.Exclude = append(c.Exclude, patterns...)
		return nil
	}
}

func checkPatterns(option string, patterns []string) error {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return &ConfigError{Option: option, Value: p, Message: "invalid pattern", Cause: err}
		}
	}
	return nil
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
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Logger:      slog.Default(),
		ProjectName: DefaultProjectName,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.ModulePath == "" {
		c.ModulePath = "example.com/" + naming.Kebab(c.ProjectName)
	}
	return c, nil
}
