// Package ocr reads silkscreen text under a drawn field to suggest its id.
package ocr

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"board-tester/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// IDChars is the character set for designators and test point names.
// Excludes lowercase to reduce confusion (0/O, 1/I, etc.)
const IDChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

// ErrEmptyRegion is returned when the region lies outside the image.
var ErrEmptyRegion = errors.New("empty region")

// Engine suggests field ids using Tesseract. It is safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a new OCR engine.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Designators aren't English words; keep Tesseract from correcting them.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SuggestID reads the text inside r on img and returns the first token that
// looks like an id, or "" when nothing usable was read.
func (e *Engine) SuggestID(img image.Image, r geometry.Rect) (string, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return "", fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	text, err := e.RecognizeRegion(mat, r.ToInt())
	if err != nil {
		return "", err
	}
	return CleanID(text), nil
}

// RecognizeRegion performs OCR on a region of an image.
func (e *Engine) RecognizeRegion(img gocv.Mat, bounds geometry.RectInt) (string, error) {
	if img.Empty() {
		return "", ErrEmptyRegion
	}

	x, y, w, h := bounds.X, bounds.Y, bounds.Width, bounds.Height
	x = max(0, x)
	y = max(0, y)
	w = min(w, img.Cols()-x)
	h = min(h, img.Rows()-y)
	if w <= 0 || h <= 0 {
		return "", ErrEmptyRegion
	}

	region := img.Region(image.Rect(x, y, x+w, y+h))
	defer region.Close()

	processed := preprocess(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	e.mu.Lock()
	defer e.mu.Unlock()

	// PSM 7 = treat the image as a single text line
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetWhitelist(IDChars); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// preprocess upscales, binarizes and normalizes polarity so text is dark on light.
func preprocess(region gocv.Mat) gocv.Mat {
	h, w := region.Rows(), region.Cols()

	// Upscale small regions (target ~100px minimum)
	var scaled gocv.Mat
	if minDim := min(h, w); minDim < 100 {
		scale := 100.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{8, 8})
	defer clahe.Close()
	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	// Silkscreen is usually light on dark.
	if white := gocv.CountNonZero(binary); float64(white) < 0.5*float64(binary.Rows()*binary.Cols()) {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()
	return result
}
