// Package colour provides dominant colour extraction and palette types.
package colour

import "iter"

const (
	// DefaultStride visits every 4th pixel (16 bytes per step in an RGBA buffer).
	DefaultStride = 4

	// DefaultMinAlpha is the alpha value below which a pixel is ignored.
	DefaultMinAlpha = 64

	bytesPerPixel = 4
)

// Sample is a single admitted pixel. Alpha is only used to decide admission.
type Sample struct {
	R, G, B uint8
}

// Samples returns a lazy, single-pass sequence over pix, a row-major RGBA
// buffer (R,G,B,A byte order). Every stride-th pixel is visited in scan order
// and pixels with alpha below minAlpha are skipped. Trailing bytes that do not
// form a whole pixel are ignored. pix is never modified.
func Samples(pix []byte, stride int, minAlpha uint8) iter.Seq[Sample] {
	step := max(stride, 1) * bytesPerPixel
	return func(yield func(Sample) bool) {
		for i := 0; i+3 < len(pix); i += step {
			if pix[i+3] < minAlpha {
				continue
			}
			if !yield(Sample{R: pix[i], G: pix[i+1], B: pix[i+2]}) {
				return
			}
		}
	}
}

// visitedPixels returns how many pixels Samples inspects for a buffer of n bytes.
func visitedPixels(n, stride int) int {
	stride = max(stride, 1)
	pixels := n / bytesPerPixel
	return (pixels + stride - 1) / stride
}
