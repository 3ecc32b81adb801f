package cli

import (
	"errors"
	"fmt"

	"board-tester/internal/field"
	"board-tester/internal/layout"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		normalize bool
		output    string
	)
	cmd := &cobra.Command{
		Use:   "check LAYOUT",
		Short: "Validate a layout file and optionally rewrite it in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			logger := loggerFromContext(cmd.Context())

			doc, err := layout.Load(args[0])
			if err != nil {
				var perr *layout.ParseError
				if errors.As(err, &perr) {
					printError(out, "%s", perr.Error())
				}
				return err
			}

			canvas := doc.EffectiveCanvas()
			printSuccess(out, "%s: board %q, %d fields", args[0], doc.BoardName, len(doc.Fields))
			printDetail(out, "canvas: %s", describeCanvas(canvas, doc.Canvas == nil))

			counts := make(map[field.Kind]int)
			for _, f := range doc.Fields {
				counts[f.Kind()]++
			}
			for _, k := range field.Kinds {
				if counts[k] > 0 {
					printDetail(out, "%-6s %d", k, counts[k])
				}
			}

			if !normalize {
				return nil
			}
			dst := output
			if dst == "" {
				dst = args[0]
			}
			if err := doc.Save(dst); err != nil {
				return fmt.Errorf("write %s: %w", dst, err)
			}
			logger.Debug("normalized", "src", args[0], "dst", dst)
			printSuccess(out, "Wrote canonical layout to %s", dst)
			return nil
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize", false, "rewrite the layout in canonical form")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the normalized layout here instead of in place")
	return cmd
}

func describeCanvas(c layout.CanvasConfig, implicit bool) string {
	var s string
	switch c.Type {
	case layout.CanvasPDF:
		s = fmt.Sprintf("pdf %s page %d at %d dpi", c.Path, c.Page, c.EffectiveDPI())
	case layout.CanvasImage:
		s = fmt.Sprintf("image %s", c.Path)
	default:
		w, h := c.Size()
		s = fmt.Sprintf("blank %dx%d", w, h)
		if c.Grid.Enabled {
			s += fmt.Sprintf(", grid %d", c.GridSize())
		}
	}
	if implicit {
		s += " (default)"
	}
	return s
}
