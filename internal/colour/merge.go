package colour

import (
	"cmp"
	"math"
	"slices"
)

// DefaultMergeThreshold is the RGB distance under which buckets are merged.
const DefaultMergeThreshold = 20.0

// cluster is a merged group of buckets.
type cluster struct {
	rgb        [3]int
	percentage float64
}

// distance returns the Euclidean RGB distance between a cluster colour and a
// bucket mean. The bucket mean is not rounded first.
func distance(c [3]int, mean [3]float64) float64 {
	dr := float64(c[0]) - mean[0]
	dg := float64(c[1]) - mean[1]
	db := float64(c[2]) - mean[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func roundRGB(mean [3]float64) [3]int {
	return [3]int{
		clampChannel(int(math.Round(mean[0]))),
		clampChannel(int(math.Round(mean[1]))),
		clampChannel(int(math.Round(mean[2]))),
	}
}

// mergeBuckets greedily folds buckets into clusters, largest bucket first.
// Each bucket joins the first existing cluster (in creation order) closer
// than threshold, not the nearest one; the result is order dependent.
// The input slice is not reordered.
func mergeBuckets(buckets []bucket, threshold float64) []cluster {
	sorted := slices.Clone(buckets)
	slices.SortStableFunc(sorted, func(a, b bucket) int {
		return cmp.Compare(b.percentage, a.percentage)
	})

	clusters := make([]cluster, 0, len(sorted))
	for _, b := range sorted {
		i := slices.IndexFunc(clusters, func(c cluster) bool {
			return distance(c.rgb, b.mean) < threshold
		})
		if i < 0 {
			clusters = append(clusters, cluster{rgb: roundRGB(b.mean), percentage: b.percentage})
			continue
		}

		c := &clusters[i]
		total := c.percentage + b.percentage
		for ch := range c.rgb {
			weighted := (float64(c.rgb[ch])*c.percentage + b.mean[ch]*b.percentage) / total
			c.rgb[ch] = clampChannel(int(math.Round(weighted)))
		}
		c.percentage = total
	}

	return clusters
}
