package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#FFF", Color{A: 255, R: 255, G: 255, B: 255}},
		{"#abc", Color{A: 255, R: 0xAA, G: 0xBB, B: 0xCC}},
		{"FF0000", Color{A: 255, R: 255}},
		{"#00ff7f", Color{A: 255, G: 255, B: 0x7F}},
		{"80FF0000", Color{A: 128, R: 255}},
		{"#00000000", Color{}},
		{"xyz", Black},
		{"#12345", Black},
		{"", Black},
		{"  #0F0;", Color{A: 255, G: 255}},
		// Only the hex prefix is scanned, the length still selects the layout.
		{"FFG", Color{A: 255, G: 255, B: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseColor(tt.in))
		})
	}
}

func TestColor_Hex(t *testing.T) {
	assert.Equal(t, "#FF0000", ParseColor("FF0000").Hex())
	assert.Equal(t, "#80FF0000", ParseColor("80FF0000").Hex())

	r, g, b, a := White.Components()
	assert.Equal(t, []float64{1, 1, 1, 1}, []float64{r, g, b, a})
}

func TestValidColorString(t *testing.T) {
	assert.True(t, ValidColorString("#FFF"))
	assert.True(t, ValidColorString("80FF0000"))
	assert.False(t, ValidColorString("xyz"))
	assert.False(t, ValidColorString("#FFFF"))
}
