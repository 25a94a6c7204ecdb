package colour

import (
	"math"
	"strings"
	"testing"
)

func TestColourPreview(t *testing.T) {
	got := ColourPreview(RGB{R: 200, G: 100, B: 50}, 4)
	want := "\033[48;2;200;100;50m    \033[0m"
	if got != want {
		t.Errorf("ColourPreview() = %q, want %q", got, want)
	}

	if got := ColourPreview(RGB{}, 0); !strings.Contains(got, strings.Repeat(" ", defaultWidth)) {
		t.Errorf("ColourPreview() with zero width = %q, want default width block", got)
	}
}

func TestColourPreviewWithText(t *testing.T) {
	light := ColourPreviewWithText(RGB{R: 255, G: 255, B: 255}, "50%", 7)
	if !strings.Contains(light, "\033[38;2;0;0;0m  50%  ") {
		t.Errorf("light background should use black centred text: %q", light)
	}

	dark := ColourPreviewWithText(RGB{}, "truncated", 4)
	if !strings.Contains(dark, "\033[38;2;255;255;255mtrun") {
		t.Errorf("dark background should use white truncated text: %q", dark)
	}
}

func TestRelativeLuminance(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want float64
	}{
		{rgb: RGB{}, want: 0},
		{rgb: RGB{R: 255, G: 255, B: 255}, want: 1},
		{rgb: RGB{G: 255}, want: 0.7152},
	}
	for _, tt := range tests {
		if got := RelativeLuminance(tt.rgb); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RelativeLuminance(%v) = %v, want %v", tt.rgb, got, tt.want)
		}
	}
}
