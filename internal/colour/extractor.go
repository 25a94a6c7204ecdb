package colour

import (
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"
)

// MaxColourCount is the largest palette size a caller may request.
const MaxColourCount = 256

// Extractor defines the interface for colour extraction algorithms.
type Extractor interface {
	// Extract extracts a palette of at most count colours from an image.
	Extract(img image.Image, count int) (*Palette, error)
}

// Algorithm represents the colour extraction algorithm type.
type Algorithm string

const (
	// AlgorithmDominant ranks quantized, merged colour buckets by coverage.
	AlgorithmDominant Algorithm = "dominant"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmDominant,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// ExtractorOptions configures extractor construction.
type ExtractorOptions struct {
	Dominant DominantOptions

	// Logger receives per-call statistics. Defaults to a null logger.
	Logger hclog.Logger
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm, opts ExtractorOptions) (Extractor, error) {
	switch alg {
	case AlgorithmDominant:
		return NewDominantExtractor(opts.Dominant, opts.Logger)
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// ExtractorConfig holds configuration for colour extraction.
type ExtractorConfig struct {
	Algorithm  Algorithm
	ColorCount int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:  AlgorithmDominant,
		ColorCount: 5,
	}
}

// Validate validates the extractor configuration. A zero or negative colour
// count is accepted and yields an empty palette.
func (c ExtractorConfig) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s", c.Algorithm)
	}
	if c.ColorCount > MaxColourCount {
		return fmt.Errorf("color count too large: %d (maximum: %d)", c.ColorCount, MaxColourCount)
	}
	return nil
}
