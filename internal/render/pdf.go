package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// ErrToolMissing is returned when the PDF rasterizer is not installed.
var ErrToolMissing = errors.New("pdftoppm not found")

// PDFTool is the poppler rasterizer invoked for pdf canvases.
var PDFTool = "pdftoppm"

// RenderPDFPage rasterizes one zero-based page of a PDF at dpi.
// Requires poppler: brew install poppler (macOS), apt install poppler-utils (Linux).
func RenderPDFPage(ctx context.Context, path string, page, dpi int) (image.Image, error) {
	tool, err := exec.LookPath(PDFTool)
	if err != nil {
		return nil, fmt.Errorf("%w. Install with:\n  macOS:  brew install poppler\n  Linux:  apt install poppler-utils", ErrToolMissing)
	}

	dir, err := os.MkdirTemp("", "board-tester-pdf-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	n := strconv.Itoa(page + 1)
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, tool,
		"-f", n, "-l", n,
		"-r", strconv.Itoa(dpi),
		"-png", "-singlefile",
		path, prefix)

	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, bytes.TrimSpace(errBuf.Bytes()))
	}
	return LoadImage(prefix + ".png")
}
