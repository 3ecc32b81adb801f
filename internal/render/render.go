// Package render rasterizes layout backgrounds.
package render

import (
	"context"
	"fmt"
	"image"

	"board-tester/internal/layout"

	"github.com/charmbracelet/log"
)

// Renderer produces the background image for a canvas configuration.
type Renderer interface {
	Render(ctx context.Context, cfg layout.CanvasConfig) (image.Image, error)
}

// Background dispatches on the canvas type. Paths must already be resolved.
type Background struct {
	logger *log.Logger
}

// NewBackground creates a background renderer.
func NewBackground(logger *log.Logger) *Background {
	if logger == nil {
		logger = log.Default()
	}
	return &Background{logger: logger.WithPrefix("render")}
}

// Render implements Renderer.
func (b *Background) Render(ctx context.Context, cfg layout.CanvasConfig) (image.Image, error) {
	switch cfg.Type {
	case layout.CanvasPDF:
		dpi := cfg.EffectiveDPI()
		b.logger.Debug("rendering pdf page", "path", cfg.Path, "page", cfg.Page, "dpi", dpi)
		return RenderPDFPage(ctx, cfg.Path, cfg.Page, dpi)
	case layout.CanvasImage:
		b.logger.Debug("loading image", "path", cfg.Path)
		return LoadImage(cfg.Path)
	case layout.CanvasBlank:
		w, h := cfg.Size()
		grid := 0
		if cfg.Grid.Enabled {
			grid = cfg.GridSize()
		}
		return Blank(w, h, grid), nil
	default:
		return nil, fmt.Errorf("unknown canvas type %q", cfg.Type)
	}
}
