package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"R12", "R12"},
		{"  r12 \n", "R12"},
		{"10K R7", "R7"},
		{"R1O", "R10"},
		{"C2I", "C21"},
		{"TP3", "TP3"},
		{"U4A", "U4A"},
		{"VCC_5V", "VCC_5V"},
		{"-GND-", "GND"},
		{"100", ""},
		{"", ""},
		{"X", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanID(tt.in))
		})
	}
}
