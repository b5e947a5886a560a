package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/leandrosousa110490/new-sql/internal/query"
	"github.com/leandrosousa110490/new-sql/internal/session"
)

// replState tracks the last executed query so the paging commands can
// re-run the pipeline with a different page number.
type replState struct {
	buffer   string
	page     int
	pageSize int
	total    int64
	format   string
}

func runREPL(cmd *cobra.Command, wb *Workbench) error {
	historyFile := filepath.Join(filepath.Dir(wb.Cfg.StatePath), "repl_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(wb.Session),
		HistoryFile:     historyFile,
		AutoComplete:    newCompleter(cmd.Context(), wb),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "newsql REPL - embedded DuckDB workbench")
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	st := &replState{pageSize: wb.Cfg.PageSize, total: -1, format: wb.Cfg.Format}

	var multiLine strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLine.Reset()
			rl.SetPrompt(prompt(wb.Session))
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, wb, st, line); quit {
				break
			}
			rl.SetPrompt(prompt(wb.Session))
			continue
		}

		// Accumulate multi-line SQL until semicolon.
		multiLine.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLine.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}

		st.buffer = multiLine.String()
		st.page = 0
		multiLine.Reset()

		runPage(cmd, wb, st)
		rl.SetPrompt(prompt(wb.Session))
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

// prompt renders "connection.schema> " with the context highlighted.
func prompt(sess *session.Context) string {
	p := termenv.ColorProfile()
	label := termenv.String(sess.String()).Foreground(p.Color("6")).String()
	return label + "> "
}

// runPage submits the current buffer for the state's page and updates
// the paging state from the outcome.
func runPage(cmd *cobra.Command, wb *Workbench, st *replState) {
	out := cmd.OutOrStdout()

	outcome := wb.Runner.Run(cmd.Context(), st.buffer, st.page, st.pageSize)
	switch o := outcome.(type) {
	case query.ContextChanged:
		_, _ = fmt.Fprintf(out, "Context switched to %s\n", o.Context.String())
		st.buffer = ""
		st.total = -1

	case query.Executed:
		st.total = o.Page.TotalCount
		if err := renderPage(out, o.Page, st.format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case query.Failed:
		st.total = -1
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", o.Err)
	}
}

// hasPage reports whether page n exists for the last counted result.
func (st *replState) hasPage(n int) bool {
	if st.buffer == "" || st.total < 0 || st.pageSize <= 0 || n < 0 {
		return false
	}
	return int64(n)*int64(st.pageSize) < st.total
}

func handleDotCommand(cmd *cobra.Command, wb *Workbench, st *replState, line string) (quit bool) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".tables":
		listContextTables(cmd.Context(), out, errOut, wb)

	case ".schemas":
		listSchemas(cmd.Context(), out, errOut, wb)

	case ".connections":
		if err := renderConnections(out, wb, st.format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".next":
		gotoPage(cmd, wb, st, st.page+1)

	case ".prev":
		gotoPage(cmd, wb, st, st.page-1)

	case ".page":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .page <number>")
			break
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Invalid page number: %s\n", parts[1])
			break
		}
		gotoPage(cmd, wb, st, n)

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(out, "Current format: %s\n", st.format)
			break
		}
		st.format = parts[1]

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// gotoPage re-runs the whole pipeline with a new page number; no page
// is cached across requests.
func gotoPage(cmd *cobra.Command, wb *Workbench, st *replState, n int) {
	if !st.hasPage(n) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No such page")
		return
	}
	st.page = n
	runPage(cmd, wb, st)
}

func listSchemas(ctx context.Context, out, errOut io.Writer, wb *Workbench) {
	conns := append([]string{session.LocalName}, wb.Registry.AttachedConnections(ctx)...)
	for _, conn := range conns {
		schemas, err := wb.Registry.SchemasOf(ctx, conn)
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error listing %s: %v\n", conn, err)
			continue
		}
		for _, s := range schemas {
			_, _ = fmt.Fprintf(out, "%s.%s\n", conn, s)
		}
	}
}

func listContextTables(ctx context.Context, out, errOut io.Writer, wb *Workbench) {
	conn := wb.Session.Connection.String()
	schema := wb.Session.Schema.String()
	if wb.Session.Schema.IsLocal() {
		schema = "main"
	}

	tables, err := wb.Engine.TablesOf(ctx, conn, schema)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return
	}
	for _, t := range tables {
		_, _ = fmt.Fprintln(out, t)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List tables in the active context
  .schemas         List schemas across all attached connections
  .connections     Show saved connections and attach state
  .next / .prev    Move one page through the last result
  .page <n>        Jump to page n (0-based) of the last result
  .format [fmt]    Show or set the output format (table, json, csv, md)
  .clear           Clear the screen
  .quit / .exit    Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - USE <schema> switches the session context without running a query
  - Unqualified table names resolve against the active context
`
	_, _ = fmt.Fprintln(w, help)
}

// newCompleter creates a readline completer over the active context's
// table names plus the dot-commands.
func newCompleter(ctx context.Context, wb *Workbench) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	schema := wb.Session.Schema.String()
	if wb.Session.Schema.IsLocal() {
		schema = "main"
	}
	if tables, err := wb.Engine.TablesOf(ctx, wb.Session.Connection.String(), schema); err == nil {
		for _, t := range tables {
			items = append(items, readline.PcItem(t))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schemas"),
		readline.PcItem(".connections"),
		readline.PcItem(".next"),
		readline.PcItem(".prev"),
		readline.PcItem(".page"),
		readline.PcItem(".format"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
