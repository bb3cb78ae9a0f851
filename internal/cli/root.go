// Package cli implements the archgen command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/syssam/archgen/introspect"
	"github.com/syssam/archgen/schema"
)

// App holds the state shared by the commands of one invocation.
type App struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool

	Logger *slog.Logger
	// Getenv reads the environment; tests replace it.
	Getenv func(string) string
}

// Root returns the archgen command with every subcommand attached.
func Root() *cobra.Command {
	a := &App{Getenv: os.Getenv, Logger: slog.Default()}
	cmd := &cobra.Command{
		Use:   "archgen",
		Short: "Generate Clean Architecture projects from a database schema",
		Long: `archgen reads the tables, columns and keys of a PostgreSQL, MySQL or
SQLite database and generates a layered CRUD project for it: an ASP.NET
Core solution (dotnet), a FastAPI workspace (fastapi) or a Go module
(golang).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.ConfigPath, "config", "archgen.yaml", "project file")
	pf.StringVar(&a.EnvFile, "env-file", ".env", "environment file loaded at startup, if present")
	pf.BoolVarP(&a.Verbose, "verbose", "v", false, "log debug messages")

	cmd.AddCommand(generateCmd(a))
	cmd.AddCommand(inspectCmd(a))
	cmd.AddCommand(snapshotCmd(a))
	cmd.AddCommand(watchCmd(a))
	return cmd
}

func (a *App) init(cmd *cobra.Command) error {
	if a.EnvFile != "" {
		if err := godotenv.Load(a.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.EnvFile, err)
		}
	}
	level := slog.LevelInfo
	if a.Verbose {
		level = slog.LevelDebug
	}
	a.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// project loads the project file and applies the flag values of o. The
// file is required only when --config was given explicitly.
func (a *App) project(cmd *cobra.Command, o *Project) (*Project, error) {
	p, err := LoadProject(a.ConfigPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	p.merge(o)
	p.defaults()
	return p, nil
}

// schema reads the schema of p from its snapshot file or from the database.
// It also returns the connection descriptor embedded in generated
// configuration.
func (a *App) schema(ctx context.Context, p *Project) (*schema.Schema, string, error) {
	conn := p.ResolveDSN(a.Getenv)
	if p.Snapshot != "" {
		f, err := os.Open(p.Snapshot)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		s, err := schema.ReadSnapshot(f)
		if err != nil {
			return nil, "", err
		}
		a.Logger.Debug("snapshot read", "path", p.Snapshot, "tables", len(s.Tables))
		return s, conn, nil
	}
	if conn == "" {
		return nil, "", errors.New("archgen: no database: set --dsn, --snapshot, dsn in the project file or ARCHGEN_DATABASE_URL")
	}
	opts := []introspect.Option{introspect.WithLogger(a.Logger)}
	if len(p.Schemas) > 0 {
		opts = append(opts, introspect.WithSchemas(p.Schemas...))
	}
	s, err := introspect.Read(ctx, conn, opts...)
	if err != nil {
		return nil, "", err
	}
	return s, conn, nil
}
