package cli

import (
	"context"
	"fmt"
	"os"

	"board-tester/internal/config"
	"board-tester/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List logged runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			l, ok, err := openLog(ctx, configFromContext(ctx))
			if err != nil {
				return err
			}
			if !ok {
				printInfo(out, "No runs logged")
				return nil
			}
			defer l.Close()

			runs, err := l.ListRuns(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo(out, "No runs logged")
				return nil
			}
			total := len(runs)
			if limit > 0 && limit < total {
				runs = runs[:limit]
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{r.Timestamp, r.BoardName, r.Lot, r.DUTID, r.Operator, r.RunID})
			}
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(styleDim).
				Headers("Timestamp", "Board", "Lot", "DUT", "Operator", "Run ID").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return styleHeader
					}
					if col == 5 {
						return styleTitle
					}
					return lipgloss.NewStyle()
				})
			fmt.Fprintln(out, t.Render())
			printDetail(out, "%d of %d runs", len(runs), total)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n runs")
	return cmd
}

// openLog opens the configured run log. ok is false when no log exists yet.
func openLog(ctx context.Context, cfg config.Config) (*store.Log, bool, error) {
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return nil, false, nil
	}
	l, err := store.Open(ctx, cfg.DBPath, loggerFromContext(ctx))
	if err != nil {
		return nil, false, err
	}
	return l, true, nil
}
