// Package cli wires the newsql command tree: the interactive query
// command, connection management, and history inspection.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leandrosousa110490/new-sql/internal/cli/commands"
	"github.com/leandrosousa110490/new-sql/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCommand creates the newsql root command.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "newsql",
		Short: "SQL workbench over embedded DuckDB with attached data sources",
		Long: `newsql is an interactive SQL workbench over an embedded DuckDB
database. External MySQL and Postgres sources are attached through
DuckDB extensions and addressed through a single session context:
USE <schema> switches the context, unqualified table names resolve
against it, and large results are delivered as counted pages.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default newsql.yaml)")
	flags.String("database", "", "DuckDB database file (default in-memory)")
	flags.String("state-path", config.DefaultStateFile, "State database path")
	flags.Int("page-size", config.DefaultPageSize, "Rows per page (0 disables pagination)")
	flags.StringP("format", "f", config.DefaultFormat, "Output format: table, json, csv, md")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		commands.SetConfig(cmd, cfg, newLogger(cfg.Verbose))
		return nil
	}

	root.AddCommand(commands.NewQueryCommand())
	root.AddCommand(commands.NewConnectionsCommand())
	root.AddCommand(commands.NewHistoryCommand())

	return root
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
