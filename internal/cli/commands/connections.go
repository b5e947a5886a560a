package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leandrosousa110490/new-sql/internal/config"
	"github.com/leandrosousa110490/new-sql/internal/state"
)

// NewConnectionsCommand creates the connections command group.
func NewConnectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Manage external connections",
		Long: `Manage named external data sources. Saved connections are attached
to the embedded DuckDB engine through its mysql and postgres
extensions; once attached, their schemas can be selected with USE and
their tables addressed as connection.schema.table.`,
	}

	cmd.AddCommand(newConnectionsListCommand())
	cmd.AddCommand(newConnectionsAddCommand())
	cmd.AddCommand(newConnectionsRemoveCommand())
	cmd.AddCommand(newConnectionsTestCommand())
	cmd.AddCommand(newConnectionsExportCommand())
	cmd.AddCommand(newConnectionsWatchCommand())

	return cmd
}

func newConnectionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wb, err := openWorkbench(cmd)
			if err != nil {
				return err
			}
			defer wb.Close()
			return renderConnections(cmd.OutOrStdout(), wb, wb.Cfg.Format)
		},
	}
}

func newConnectionsAddCommand() *cobra.Command {
	var def state.ConnectionDef

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a connection definition",
		Args:  cobra.ExactArgs(1),
		Example: `  newsql connections add mysrv --type mysql --host db.example.com --port 3306 \
    --user reporting --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := openWorkbench(cmd)
			if err != nil {
				return err
			}
			defer wb.Close()

			def.Name = args[0]
			if err := wb.Registry.Add(def); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved connection %s\n", def.Name)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&def.Type, "type", "mysql", "Connection type: mysql, mariadb, postgres")
	flags.StringVar(&def.Host, "host", "", "Host name")
	flags.IntVar(&def.Port, "port", 3306, "Port")
	flags.StringVar(&def.Database, "dbname", "", "Database name")
	flags.StringVar(&def.User, "user", "", "User name")
	flags.StringVar(&def.Password, "password", "", "Password")
	flags.StringVar(&def.SSLCA, "ssl-ca", "", "SSL CA certificate file")
	flags.StringVar(&def.SSLCert, "ssl-cert", "", "SSL client certificate file")
	flags.StringVar(&def.SSLKey, "ssl-key", "", "SSL client key file")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func newConnectionsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a saved connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := openWorkbench(cmd)
			if err != nil {
				return err
			}
			defer wb.Close()

			if err := wb.Registry.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed connection %s\n", args[0])
			return nil
		},
	}
}

func newConnectionsTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <name>",
		Short: "Attach a saved connection and list its schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := openWorkbench(cmd)
			if err != nil {
				return err
			}
			defer wb.Close()

			name := args[0]
			if err := wb.Registry.Attach(cmd.Context(), name); err != nil {
				return err
			}
			schemas, err := wb.Registry.SchemasOf(cmd.Context(), name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Connection %s OK, %d schemas:\n", name, len(schemas))
			for _, s := range schemas {
				_, _ = fmt.Fprintf(out, "  %s\n", s)
			}
			return nil
		},
		Args: cobra.ExactArgs(1),
	}
}

func newConnectionsExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write saved connections to the connections file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wb, err := openWorkbench(cmd)
			if err != nil {
				return err
			}
			defer wb.Close()

			defs, err := wb.Registry.Definitions()
			if err != nil {
				return err
			}
			if err := config.WriteConnectionsFile(wb.Cfg.ConnectionsFile, defs); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d connections to %s\n", len(defs), wb.Cfg.ConnectionsFile)
			return nil
		},
	}
}

func newConnectionsWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the connections file and import changes",
		Long: `Watch the connections file and merge definitions into the saved set
whenever the file changes. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wb, err := openWorkbench(cmd)
			if err != nil {
				return err
			}
			defer wb.Close()

			stop := make(chan struct{})
			go func() {
				<-cmd.Context().Done()
				close(stop)
			}()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", wb.Cfg.ConnectionsFile)
			return config.WatchConnectionsFile(wb.Cfg.ConnectionsFile, wb.Logger, stop, func(defs []state.ConnectionDef) {
				for _, def := range defs {
					if err := wb.Registry.Add(def); err != nil {
						wb.Logger.Warn("skipping connection", "name", def.Name, "error", err)
					}
				}
			})
		},
	}
}

// renderConnections renders the saved definitions with attach state.
// Secrets are never shown.
func renderConnections(w io.Writer, wb *Workbench, format string) error {
	defs, err := wb.Registry.Definitions()
	if err != nil {
		return err
	}

	cols := []string{"name", "type", "host", "port", "database", "attached"}
	rows := make([][]any, 0, len(defs))
	for _, def := range defs {
		rows = append(rows, []any{
			def.Name, def.Type, def.Host, def.Port, def.Database,
			wb.Registry.IsAttached(def.Name),
		})
	}
	return renderRows(w, cols, rows, format)
}
