package canvas

import (
	"image/color"
	"testing"

	"board-tester/internal/validation"
	"board-tester/pkg/colorutil"

	"github.com/stretchr/testify/assert"
)

func TestVerdictColor(t *testing.T) {
	tests := []struct {
		verdict validation.Verdict
		want    color.Color
	}{
		{validation.NoRule, colorutil.Neutral},
		{validation.FormatInvalid, colorutil.Alert},
		{validation.OutOfRange, colorutil.Warn},
		{validation.InRange, colorutil.Pass},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerdictColor(tt.verdict), "verdict %v", tt.verdict)
	}
}
