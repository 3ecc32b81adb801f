package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FFCDD2")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0xCD, B: 0xD2, A: 0xFF}, c)

	c, err = ParseHex("00bcd480")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x00, G: 0xBC, B: 0xD4, A: 0x80}, c)

	_, err = ParseHex("#FFF")
	assert.Error(t, err)
	_, err = ParseHex("#GGGGGG")
	assert.Error(t, err)
}

func TestWithAlpha(t *testing.T) {
	assert.Equal(t, uint8(10), WithAlpha(Shape, 10).A)
	assert.Equal(t, uint8(255), Shape.A)
}
