package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func inspectCmd(a *App) *cobra.Command {
	var o Project
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the schema read from the database as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.project(cmd, &o)
			if err != nil {
				return err
			}
			s, _, err := a.schema(cmd.Context(), p)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(s); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.DSN, "dsn", "", "database connection string")
	f.StringVar(&o.Snapshot, "snapshot", "", "read the schema from a snapshot file instead of the database")
	f.StringSliceVar(&o.Schemas, "schema", nil, "database schemas to read")
	return cmd
}
