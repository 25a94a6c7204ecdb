package colour

import (
	"cmp"
	"math"
	"slices"
)

// DefaultMinCoverage is the coverage percentage a cluster must exceed to be reported.
const DefaultMinCoverage = 0.5

// rank filters out small clusters, orders the rest by coverage and keeps at
// most count of them. Percentages are rounded to two decimals and are not
// re-normalised afterwards. Filtering happens on the unrounded value, so a
// cluster just above minCoverage is reported as exactly minCoverage.
func rank(clusters []cluster, count int, minCoverage float64) []Swatch {
	if count <= 0 {
		return []Swatch{}
	}

	kept := make([]cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.percentage > minCoverage {
			kept = append(kept, c)
		}
	}
	slices.SortStableFunc(kept, func(a, b cluster) int {
		return cmp.Compare(b.percentage, a.percentage)
	})
	if len(kept) > count {
		kept = kept[:count]
	}

	swatches := make([]Swatch, len(kept))
	for i, c := range kept {
		swatches[i] = Swatch{
			RGB: RGB{
				R: uint8(clampChannel(c.rgb[0])),
				G: uint8(clampChannel(c.rgb[1])),
				B: uint8(clampChannel(c.rgb[2])),
			},
			Percentage: roundPercentage(c.percentage),
		}
	}
	return swatches
}

// roundPercentage rounds p to two decimal places.
func roundPercentage(p float64) float64 {
	return math.Round(p*100) / 100
}
