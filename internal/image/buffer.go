package image

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension caps the longest side of the working image.
const DefaultMaxDimension = 300

// WorkingSize returns the dimensions of a width×height image scaled so its
// longest side is at most maxDimension. Aspect ratio is kept, no side drops
// below 1, and images already within the cap are returned unchanged.
// A non-positive maxDimension disables the cap.
func WorkingSize(width, height, maxDimension int) (int, int) {
	longest := max(width, height)
	if maxDimension <= 0 || longest <= maxDimension {
		return width, height
	}

	scale := float64(maxDimension) / float64(longest)
	w := max(int(math.Round(float64(width)*scale)), 1)
	h := max(int(math.Round(float64(height)*scale)), 1)
	return w, h
}

// Prepare converts img into a non-premultiplied RGBA image anchored at the
// origin and no larger than maxDimension on its longest side. The returned
// image always has Stride == 4*width so its Pix can be read as a packed
// row-major R,G,B,A buffer.
func Prepare(img image.Image, maxDimension int) *image.NRGBA {
	if img == nil {
		return image.NewNRGBA(image.Rectangle{})
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return image.NewNRGBA(image.Rectangle{})
	}

	w, h := WorkingSize(bounds.Dx(), bounds.Dy(), maxDimension)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
