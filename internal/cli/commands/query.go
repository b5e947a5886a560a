package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leandrosousa110490/new-sql/internal/query"
	"github.com/leandrosousa110490/new-sql/internal/state"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Page  int
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Execute SQL against the workbench database",
		Long: `Execute SQL against the embedded DuckDB database and any attached
connections.

USE <schema> statements switch the session context instead of being
executed; unqualified table names in later statements resolve against
it. Read queries are paginated: every result reports its exact total
row count and --page selects a slice.

When invoked without arguments on a terminal, enters interactive REPL
mode.`,
		Example: `  # Execute SQL directly
  newsql query "SELECT * FROM orders"

  # Switch context and query an attached connection in one buffer
  newsql query "USE sales; SELECT * FROM orders"

  # Third page of 500 rows, as JSON
  newsql query "SELECT * FROM events" --page 2 --page-size 500 -f json

  # Interactive mode
  newsql query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page number (0-based)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	wb, err := openWorkbench(cmd)
	if err != nil {
		return err
	}
	defer wb.Close()

	attachSaved(cmd, wb)

	var buffer string
	switch {
	case len(args) > 0:
		buffer = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		buffer = string(content)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		buffer = string(content)
	default:
		return runREPL(cmd, wb)
	}

	return submit(cmd, wb, buffer, opts.Page, wb.Cfg.PageSize, wb.Cfg.Format)
}

// attachSaved attaches every saved connection definition, logging and
// skipping the ones that cannot be reached.
func attachSaved(cmd *cobra.Command, wb *Workbench) {
	defs, err := wb.Registry.Definitions()
	if err != nil {
		wb.Logger.Warn("failed to list saved connections", "error", err)
		return
	}
	for _, def := range defs {
		if err := wb.Registry.Attach(cmd.Context(), def.Name); err != nil {
			wb.Logger.Warn("connection unavailable", "name", def.Name, "error", err)
		}
	}
}

// submit runs one pipeline pass and renders the outcome.
func submit(cmd *cobra.Command, wb *Workbench, buffer string, page, pageSize int, format string) error {
	out := cmd.OutOrStdout()
	started := time.Now()

	outcome := wb.Runner.Run(cmd.Context(), buffer, page, pageSize)
	switch o := outcome.(type) {
	case query.ContextChanged:
		_, _ = fmt.Fprintf(out, "Context switched to %s\n", o.Context.String())
		return nil

	case query.Executed:
		recordHistory(wb, buffer, o.Page, time.Since(started), "")
		return renderPage(out, o.Page, format)

	case query.Failed:
		recordHistory(wb, buffer, query.Page{TotalCount: -1}, time.Since(started), o.Err.Error())
		return fmt.Errorf("query failed: %w", o.Err)

	default:
		return fmt.Errorf("unexpected outcome %T", outcome)
	}
}

func recordHistory(wb *Workbench, sql string, pg query.Page, elapsed time.Duration, errMsg string) {
	entry := state.HistoryEntry{
		SQL:        sql,
		Connection: wb.Session.Connection.String(),
		Schema:     wb.Session.Schema.String(),
		Page:       pg.Page,
		RowCount:   len(pg.Rows),
		TotalCount: pg.TotalCount,
		Duration:   elapsed,
		Error:      errMsg,
	}
	if err := wb.Store.AppendHistory(entry); err != nil {
		wb.Logger.Warn("failed to record history", "error", err)
	}
}
