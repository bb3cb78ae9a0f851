package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/archgen/compiler"
	"github.com/syssam/archgen/compiler/gen"
	"github.com/syssam/archgen/naming"
	"github.com/syssam/archgen/output"
)

// projectFlags registers the flags shared by generate and watch.
func projectFlags(cmd *cobra.Command, o *Project) {
	f := cmd.Flags()
	f.StringVar(&o.DSN, "dsn", "", "database connection string")
	f.StringVar(&o.Snapshot, "snapshot", "", "read the schema from a snapshot file instead of the database")
	f.StringVarP(&o.Target, "target", "t", "", "target framework: dotnet, fastapi or golang (default dotnet)")
	f.StringVarP(&o.Out, "out", "o", "", "output directory (default generated)")
	f.StringVar(&o.Zip, "zip", "", "write a zip archive to this path instead of a directory")
	f.StringVar(&o.Project, "project", "", "project name (default GeneratedApp)")
	f.StringVar(&o.Module, "module", "", "Go module path of golang projects")
	f.StringSliceVar(&o.Schemas, "schema", nil, "database schemas to read")
	f.StringSliceVar(&o.Include, "include", nil, "generate only tables matching these patterns")
	f.StringSliceVar(&o.Exclude, "exclude", nil, "skip tables matching these patterns")
}

func generateCmd(a *App) *cobra.Command {
	var (
		o      Project
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a project from a database schema",
		Long: `Generate reads the schema, renders nine files per table plus the
project-wide files of the target and writes them to a directory or a zip
archive.

Examples:
  archgen generate --dsn postgres://app@localhost/shop --target golang --module github.com/acme/shop
  archgen generate --snapshot shop.msgpack --target fastapi --zip shop.zip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.project(cmd, &o)
			if err != nil {
				return err
			}
			_, err = a.generate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), p, dryRun)
			return err
		},
	}
	projectFlags(cmd, &o)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files without writing them")
	return cmd
}

// options returns the generation options of p.
func (p *Project) options() []gen.Option {
	var opts []gen.Option
	if p.Project != "" {
		opts = append(opts, gen.WithProjectName(p.Project))
	}
	if p.Module != "" {
		opts = append(opts, gen.WithModulePath(p.Module))
	}
	if groups := p.GroupSet(); groups != nil {
		opts = append(opts, gen.WithGroups(groups))
	}
	if len(p.Include) > 0 {
		opts = append(opts, gen.WithTables(p.Include...))
	}
	if len(p.Exclude) > 0 {
		opts = append(opts, gen.WithExcludeTables(p.Exclude...))
	}
	return opts
}

// generate runs one generation and writes its output. Progress goes to
// errw, the file listing to w.
func (a *App) generate(ctx context.Context, w, errw io.Writer, p *Project, dryRun bool) (*gen.Output, error) {
	target, err := gen.ParseTarget(p.Target)
	if err != nil {
		return nil, err
	}
	s, conn, err := a.schema(ctx, p)
	if err != nil {
		return nil, err
	}
	opts := append(p.options(),
		gen.WithLogger(a.Logger),
		gen.WithProgress(func(percent int, msg string) {
			fmt.Fprintf(errw, "[%3d%%] %s\n", percent, msg)
		}),
	)
	out, err := compiler.Generate(s, conn, target, opts...)
	if err != nil {
		if out != nil {
			fmt.Fprintf(errw, "%s %d files rendered before the failure\n", color.New(color.FgRed).Sprint("✗"), len(out.Files))
		}
		return out, err
	}
	for _, warn := range out.Warnings {
		fmt.Fprintf(errw, "%s %s\n", color.New(color.FgYellow).Sprint("!"), warn)
	}

	if dryRun {
		for _, path := range out.Files.Paths() {
			fmt.Fprintf(w, "  %s\n", path)
		}
		fmt.Fprintf(w, "(dry-run mode - %d files not written)\n", len(out.Files))
		return out, nil
	}

	check := color.New(color.FgGreen).Sprint("✓")
	dest := p.Out
	if p.Zip != "" {
		dest = p.Zip
		err = writeZip(p, out.Files)
	} else {
		err = output.WriteDir(ctx, p.Out, out.Files, output.WithLogger(a.Logger))
	}
	if err != nil {
		return out, err
	}
	for _, path := range out.Files.Paths() {
		fmt.Fprintf(w, "%s %s\n", check, path)
	}
	fmt.Fprintf(w, "%s Generated %d files in %s\n", check, len(out.Files), dest)
	return out, nil
}

// writeZip writes the archive, rooted at the kebab-cased project name.
func writeZip(p *Project, files gen.Files) (err error) {
	f, err := os.Create(p.Zip)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	root := naming.Kebab(p.Project)
	if root == "" {
		root = "generated-app"
	}
	return output.WriteZip(f, files, root)
}
