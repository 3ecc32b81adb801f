package cli

import (
	"fmt"
	"io"

	"board-tester/internal/imfile"
	"board-tester/internal/touchstone"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newS2PCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "s2p FILE",
		Short: "Print the S-parameters of a two-port Touchstone file in dB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := touchstone.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rows := n.Rows()
			cells := make([][]string, len(rows))
			for i, r := range rows {
				cells[i] = []string{fmt.Sprintf("%.3f", r.GHz)}
				for _, db := range r.DB {
					cells[i] = append(cells[i], fmt.Sprintf("%.2f", db))
				}
			}
			headers := []string{"Freq (GHz)"}
			for _, p := range touchstone.Params {
				headers = append(headers, p+" (dB)")
			}
			renderTable(out, headers, cells)
			printDetail(out, "%d points, %s format, Z0 %g Ohm", len(rows), n.Format, n.Z0)
			return nil
		},
	}
}

func newIMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "im FILE",
		Short: "Print the bias commands of an .im measurement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := imfile.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cmds) == 0 {
				printWarning(out, "No bias commands in %s", args[0])
				return nil
			}
			cells := make([][]string, len(cmds))
			for i, c := range cmds {
				cells[i] = c.Cells()
			}
			renderTable(out, imfile.Columns, cells)
			return nil
		},
	}
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())
}
