package cli

import (
	"fmt"
	"io"
	"strconv"

	"board-tester/internal/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var (
		onlyDiff bool
		stats    bool
	)
	cmd := &cobra.Command{
		Use:   "compare RUN_ID...",
		Short: "Compare logged runs field by field against the first run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			l, ok, err := openLog(ctx, configFromContext(ctx))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no run log at %s", configFromContext(ctx).DBPath)
			}
			defer l.Close()

			tbl, err := history.NewEngine(l, loggerFromContext(ctx)).Pivot(ctx, args, onlyDiff)
			if err != nil {
				return err
			}
			if len(tbl.Rows) == 0 {
				if onlyDiff {
					printSuccess(out, "No differences from baseline %s", tbl.Baseline())
				} else {
					printWarning(out, "No measurements for the selected runs")
				}
				return nil
			}
			renderPivot(out, tbl, stats)
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlyDiff, "only-diff", false, "show only fields that differ from the baseline")
	cmd.Flags().BoolVar(&stats, "stats", false, "append numeric summary columns")
	return cmd
}

// renderPivot prints the table with baseline cells in blue and differing
// cells highlighted.
func renderPivot(w io.Writer, tbl *history.Table, stats bool) {
	const lead = 2
	headers := append([]string{"Field ID", "Label"}, tbl.RunIDs...)
	if stats {
		headers = append(headers, "n", "mean", "sd", "spread")
	}

	rows := make([][]string, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		cells := []string{r.FieldID, r.Label}
		for _, id := range tbl.RunIDs {
			cells = append(cells, r.Cells[id])
		}
		if stats {
			cells = append(cells, summaryCells(r.Summary)...)
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			run := col - lead
			if row < 0 || row >= len(tbl.Rows) || run < 0 || run >= len(tbl.RunIDs) {
				return lipgloss.NewStyle()
			}
			switch tbl.Marker(tbl.Rows[row], tbl.RunIDs[run]) {
			case history.MarkBaseline:
				return styleBaseline
			case history.MarkDiffers:
				return styleDiffers
			}
			return lipgloss.NewStyle()
		})
	fmt.Fprintln(w, t.Render())
	printDetail(w, "baseline: %s", tbl.Baseline())
}

func summaryCells(s history.Summary) []string {
	if s.N == 0 {
		return []string{"", "", "", ""}
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
	return []string{strconv.Itoa(s.N), f(s.Mean), f(s.StdDev), f(s.Spread())}
}
