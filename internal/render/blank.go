package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// GridColor is the color of blank-canvas grid lines.
var GridColor = color.RGBA{0xee, 0xee, 0xee, 0xff}

// Blank returns a white canvas of w x h pixels. When grid > 0, one-pixel
// lines are drawn every grid pixels in both directions.
func Blank(w, h, grid int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	if grid <= 0 {
		return img
	}

	line := image.NewUniform(GridColor)
	for x := 0; x < w; x += grid {
		draw.Draw(img, image.Rect(x, 0, x+1, h), line, image.Point{}, draw.Src)
	}
	for y := 0; y < h; y += grid {
		draw.Draw(img, image.Rect(0, y, w, y+1), line, image.Point{}, draw.Src)
	}
	return img
}
