// Command ocrprobe runs id suggestion over every field of a layout and
// compares the result with the field ids.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"board-tester/internal/layout"
	"board-tester/internal/ocr"
	"board-tester/internal/render"

	"github.com/charmbracelet/log"
)

func main() {
	layoutPath := flag.String("layout", "", "Path to a layout JSON file with a pdf or image canvas")
	dpi := flag.Int("dpi", 0, "Override the pdf rendering DPI")
	flag.Parse()

	if *layoutPath == "" {
		fmt.Println("Usage: ocrprobe -layout <path> [-dpi 300]")
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05.00"})

	doc, err := layout.Load(*layoutPath)
	if err != nil {
		logger.Fatal("load layout", "err", err)
	}
	canvas := doc.EffectiveCanvas()
	if !canvas.NeedsFile() {
		logger.Fatal("layout has no pdf or image background", "canvas", canvas.Type)
	}
	canvas.Path = canvas.ResolvePath(doc.Path)
	if *dpi > 0 {
		canvas.DPI = *dpi
	}

	img, err := render.NewBackground(logger).Render(context.Background(), canvas)
	if err != nil {
		logger.Fatal("render background", "err", err)
	}
	bounds := img.Bounds()
	fmt.Printf("Background: %s %dx%d pixels\n", canvas.Type, bounds.Dx(), bounds.Dy())

	engine, err := ocr.NewEngine()
	if err != nil {
		logger.Fatal("start OCR", "err", err)
	}
	defer engine.Close()

	fmt.Printf("\n%-12s %-12s %s\n", "ID", "Suggested", "Match")
	matches := 0
	for _, f := range doc.Fields {
		got, err := engine.SuggestID(img, f.Rect)
		if err != nil {
			logger.Debug("no suggestion", "id", f.ID, "err", err)
		}
		ok := got == f.ID
		if ok {
			matches++
		}
		fmt.Printf("%-12s %-12s %v\n", f.ID, got, ok)
	}
	fmt.Printf("\n%d of %d field ids recognized\n", matches, len(doc.Fields))
}
