package colour

import (
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/draw"
)

// DominantOptions tunes the dominant colour pipeline.
type DominantOptions struct {
	// Step is the per-channel quantization grid spacing.
	Step int
	// MergeThreshold is the RGB distance under which buckets are merged.
	MergeThreshold float64
	// MinCoverage is the percentage a colour must exceed to be reported.
	MinCoverage float64
	// MinAlpha is the lowest alpha value a sampled pixel may have.
	MinAlpha int
	// Stride is the pixel distance between samples.
	Stride int
}

// DefaultDominantOptions returns the standard pipeline constants.
func DefaultDominantOptions() DominantOptions {
	return DominantOptions{
		Step:           DefaultStep,
		MergeThreshold: DefaultMergeThreshold,
		MinCoverage:    DefaultMinCoverage,
		MinAlpha:       DefaultMinAlpha,
		Stride:         DefaultStride,
	}
}

// Validate checks that the options describe a usable pipeline.
func (o DominantOptions) Validate() error {
	if o.Step < 1 || o.Step > 255 {
		return fmt.Errorf("quantization step must be between 1 and 255, got %d", o.Step)
	}
	if o.Stride < 1 {
		return fmt.Errorf("stride must be at least 1, got %d", o.Stride)
	}
	if o.MinAlpha < 0 || o.MinAlpha > 255 {
		return fmt.Errorf("minimum alpha must be between 0 and 255, got %d", o.MinAlpha)
	}
	if o.MergeThreshold < 0 {
		return fmt.Errorf("merge threshold cannot be negative, got %g", o.MergeThreshold)
	}
	if o.MinCoverage < 0 || o.MinCoverage >= 100 {
		return fmt.Errorf("minimum coverage must be in [0, 100), got %g", o.MinCoverage)
	}
	return nil
}

// DominantExtractor finds the colours that cover the most of an image.
// It keeps no per-call state and is safe for concurrent use.
type DominantExtractor struct {
	opts   DominantOptions
	logger hclog.Logger
}

// NewDominantExtractor creates a DominantExtractor. A zero-value opts selects
// the defaults and a nil logger disables logging.
func NewDominantExtractor(opts DominantOptions, logger hclog.Logger) (*DominantExtractor, error) {
	if opts == (DominantOptions{}) {
		opts = DefaultDominantOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dominant options: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &DominantExtractor{opts: opts, logger: logger}, nil
}

// ExtractDominant runs the pipeline with default options over an RGBA buffer.
func ExtractDominant(pix []byte, width, height, count int) []Swatch {
	e := &DominantExtractor{opts: DefaultDominantOptions(), logger: hclog.NewNullLogger()}
	return e.ExtractPixels(pix, width, height, count).Swatches
}

// Extract implements Extractor. The image is converted to non-premultiplied
// RGBA at its own resolution; callers downscale beforehand. A nil image
// produces an empty palette.
func (e *DominantExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return NewPalette(nil), nil
	}
	pix, w, h := pixelsOf(img)
	return e.ExtractPixels(pix, w, h, count), nil
}

// ExtractPixels runs sample, quantize, merge and rank over pix, a row-major
// width×height RGBA buffer. Empty or fully transparent input, non-positive
// dimensions and a non-positive count all yield an empty palette.
func (e *DominantExtractor) ExtractPixels(pix []byte, width, height, count int) *Palette {
	if width <= 0 || height <= 0 || len(pix) == 0 {
		return NewPalette(nil)
	}
	// Same as width*height <= pixels, but cannot overflow.
	if pixels := len(pix) / bytesPerPixel; width <= pixels/height {
		pix = pix[:width*height*bytesPerPixel]
	}

	buckets, sampled := quantize(Samples(pix, e.opts.Stride, uint8(e.opts.MinAlpha)), e.opts.Step)
	clusters := mergeBuckets(buckets, e.opts.MergeThreshold)

	palette := NewPalette(rank(clusters, count, e.opts.MinCoverage))
	visited := visitedPixels(len(pix), e.opts.Stride)
	palette.Stats = Stats{
		Visited:  visited,
		Sampled:  sampled,
		Skipped:  visited - sampled,
		Buckets:  len(buckets),
		Clusters: len(clusters),
	}

	e.logger.Debug("extracted dominant colours",
		"width", width,
		"height", height,
		"sampled", sampled,
		"skipped", palette.Stats.Skipped,
		"buckets", len(buckets),
		"clusters", len(clusters),
		"colours", palette.Len(),
	)

	return palette
}

// pixelsOf returns img as a tightly packed non-premultiplied RGBA buffer.
func pixelsOf(img image.Image) ([]byte, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == w*bytesPerPixel {
		off := nrgba.PixOffset(b.Min.X, b.Min.Y)
		return nrgba.Pix[off : off+w*h*bytesPerPixel], w, h
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix, w, h
}
