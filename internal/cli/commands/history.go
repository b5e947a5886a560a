package commands

import (
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent query history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wb, err := openWorkbench(cmd)
			if err != nil {
				return err
			}
			defer wb.Close()

			entries, err := wb.Store.RecentHistory(limit)
			if err != nil {
				return err
			}

			cols := []string{"started_at", "context", "sql", "rows", "total", "duration", "error"}
			rows := make([][]any, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []any{
					e.StartedAt.Format("2006-01-02 15:04:05"),
					e.Connection + "." + e.Schema,
					truncate(e.SQL, 60),
					e.RowCount,
					e.TotalCount,
					e.Duration.String(),
					e.Error,
				})
			}
			return renderRows(cmd.OutOrStdout(), cols, rows, wb.Cfg.Format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of entries to show")
	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
