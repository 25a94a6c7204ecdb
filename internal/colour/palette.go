package colour

import (
	"fmt"
	"iter"
)

// RGB represents a colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the colour as "rgb(r,g,b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Swatch is one representative colour and the share of the image it covers.
type Swatch struct {
	RGB

	// Percentage is the coverage in percent, rounded to two decimals.
	Percentage float64
}

// Display returns the textual form of the swatch colour. It depends only on
// the RGB triple.
func (s Swatch) Display() string {
	return s.RGB.String()
}

// Stats summarises a single extraction call.
type Stats struct {
	Visited  int `json:"visited"`
	Sampled  int `json:"sampled"`
	Skipped  int `json:"skipped"`
	Buckets  int `json:"buckets"`
	Clusters int `json:"clusters"`
}

// Palette is the ranked result of an extraction, most dominant colour first.
type Palette struct {
	Swatches []Swatch
	Stats    Stats
}

// NewPalette creates a Palette from already ranked swatches.
func NewPalette(swatches []Swatch) *Palette {
	if swatches == nil {
		swatches = []Swatch{}
	}
	return &Palette{Swatches: swatches}
}

// Len returns the number of swatches in the palette.
func (p *Palette) Len() int {
	return len(p.Swatches)
}

// All returns an iterator over the swatches in rank order.
func (p *Palette) All() iter.Seq2[int, Swatch] {
	return func(yield func(int, Swatch) bool) {
		for i, s := range p.Swatches {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Coverage returns the summed percentage of all swatches.
func (p *Palette) Coverage() float64 {
	var total float64
	for _, s := range p.Swatches {
		total += s.Percentage
	}
	return total
}

// ToHex returns the hex codes of the palette in rank order.
func (p *Palette) ToHex() []string {
	hexColours := make([]string, len(p.Swatches))
	for i, s := range p.Swatches {
		hexColours[i] = s.Hex()
	}
	return hexColours
}

// SwatchJSON represents a swatch in JSON output format.
type SwatchJSON struct {
	R          uint8   `json:"r"`
	G          uint8   `json:"g"`
	B          uint8   `json:"b"`
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
	Display    string  `json:"display"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count   int          `json:"count"`
	Colours []SwatchJSON `json:"colours"`
	Stats   Stats        `json:"stats"`
}

// JSON returns the serialisable form of the palette.
func (p *Palette) JSON() PaletteJSON {
	colours := make([]SwatchJSON, len(p.Swatches))
	for i, s := range p.Swatches {
		colours[i] = SwatchJSON{
			R:          s.R,
			G:          s.G,
			B:          s.B,
			Hex:        s.Hex(),
			Percentage: s.Percentage,
			Display:    s.Display(),
		}
	}
	return PaletteJSON{
		Count:   len(p.Swatches),
		Colours: colours,
		Stats:   p.Stats,
	}
}
