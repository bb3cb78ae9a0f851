package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/archgen/schema"
)

func snapshotCmd(a *App) *cobra.Command {
	var (
		o   Project
		out string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the database schema to a file",
		Long: `Snapshot reads the schema once and saves it, so later runs of
generate --snapshot need no database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			p, err := a.project(cmd, &o)
			if err != nil {
				return err
			}
			// Reading a snapshot to write one is a copy; always go to the database.
			p.Snapshot = ""
			s, _, err := a.schema(cmd.Context(), p)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := f.Close(); err == nil {
					err = cerr
				}
			}()
			if err := schema.WriteSnapshot(f, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %d tables to %s\n", color.New(color.FgGreen).Sprint("✓"), len(s.Tables), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.DSN, "dsn", "", "database connection string")
	f.StringSliceVar(&o.Schemas, "schema", nil, "database schemas to read")
	f.StringVarP(&out, "output", "o", "schema.msgpack", "snapshot file")
	return cmd
}
