package render

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"board-tester/internal/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlankGrid(t *testing.T) {
	img := Blank(50, 30, 20)
	assert.Equal(t, image.Rect(0, 0, 50, 30), img.Bounds())
	assert.Equal(t, GridColor, img.RGBAAt(0, 5))
	assert.Equal(t, GridColor, img.RGBAAt(20, 5))
	assert.Equal(t, GridColor, img.RGBAAt(5, 20))
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(5, 5))
}

func TestBlankNoGrid(t *testing.T) {
	img := Blank(10, 10, 0)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(0, 0))
}

func TestRenderBlankDefaults(t *testing.T) {
	b := NewBackground(nil)
	img, err := b.Render(context.Background(), layout.CanvasConfig{Type: layout.CanvasBlank})
	require.NoError(t, err)
	assert.Equal(t, layout.DefaultBlankWidth, img.Bounds().Dx())
	assert.Equal(t, layout.DefaultBlankHeight, img.Bounds().Dy())
}

func TestRenderImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 7, 4))
	src.Set(1, 1, color.RGBA{0xff, 0, 0, 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	img, err := NewBackground(nil).Render(context.Background(), layout.CanvasConfig{Type: layout.CanvasImage, Path: path})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 4), img.Bounds())
	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestRenderImageErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = LoadImage(bad)
	assert.ErrorContains(t, err, "bad.png")
}

func TestRenderPDFToolMissing(t *testing.T) {
	old := PDFTool
	PDFTool = "board-tester-no-such-tool"
	defer func() { PDFTool = old }()

	_, err := NewBackground(nil).Render(context.Background(), layout.CanvasConfig{Type: layout.CanvasPDF, Path: "x.pdf"})
	assert.ErrorIs(t, err, ErrToolMissing)
}

func TestRenderUnknownType(t *testing.T) {
	_, err := NewBackground(nil).Render(context.Background(), layout.CanvasConfig{Type: "svg"})
	assert.Error(t, err)
}

// tiffHeader builds a minimal little-endian IFD with resolution tags.
func tiffHeader(xNum, xDen uint32, unit uint16) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("II")
	binary.Write(&b, le, uint16(42))
	binary.Write(&b, le, uint32(8))

	binary.Write(&b, le, uint16(2))
	ratOffset := uint32(8 + 2 + 2*12 + 4)
	// XResolution, RATIONAL
	binary.Write(&b, le, uint16(282))
	binary.Write(&b, le, uint16(5))
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, ratOffset)
	// ResolutionUnit, SHORT
	binary.Write(&b, le, uint16(296))
	binary.Write(&b, le, uint16(3))
	binary.Write(&b, le, uint32(1))
	binary.Write(&b, le, unit)
	binary.Write(&b, le, uint16(0))
	binary.Write(&b, le, uint32(0))

	binary.Write(&b, le, xNum)
	binary.Write(&b, le, xDen)
	return b.Bytes()
}

func TestImageDPI(t *testing.T) {
	dir := t.TempDir()

	inch := filepath.Join(dir, "scan.tif")
	require.NoError(t, os.WriteFile(inch, tiffHeader(600, 1, 2), 0644))
	dpi, err := ImageDPI(inch)
	require.NoError(t, err)
	assert.Equal(t, 600.0, dpi)

	cm := filepath.Join(dir, "scan.tiff")
	require.NoError(t, os.WriteFile(cm, tiffHeader(100, 1, 3), 0644))
	dpi, err = ImageDPI(cm)
	require.NoError(t, err)
	assert.InDelta(t, 254.0, dpi, 1e-9)

	_, err = ImageDPI(filepath.Join(dir, "board.png"))
	assert.Error(t, err)
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a/B.PNG"))
	assert.True(t, IsImageFile("scan.webp"))
	assert.False(t, IsImageFile("board.pdf"))
}
