package colour

import (
	"iter"
	"math"
)

// DefaultStep is the quantization grid spacing for each channel.
const DefaultStep = 5

// bucket accumulates every sample that quantizes to the same grid point.
type bucket struct {
	key        uint32
	count      int
	mean       [3]float64
	percentage float64
}

// quantizer groups samples into buckets, remembering first-encounter order.
type quantizer struct {
	step    int
	index   map[uint32]int
	buckets []bucket
	total   int
}

func newQuantizer(step int) *quantizer {
	return &quantizer{
		step:  max(step, 1),
		index: make(map[uint32]int),
	}
}

// quantizeChannel snaps v to the nearest multiple of step. Halfway values
// round away from zero (math.Round), so 122.5 becomes 125 with a step of 5.
func quantizeChannel(v float64, step int) int {
	s := float64(step)
	return clampChannel(int(math.Round(v/s) * s))
}

// bucketKey packs the three quantized channels into one integer.
func bucketKey(s Sample, step int) uint32 {
	qr := quantizeChannel(float64(s.R), step)
	qg := quantizeChannel(float64(s.G), step)
	qb := quantizeChannel(float64(s.B), step)
	return uint32(qr)<<16 | uint32(qg)<<8 | uint32(qb)
}

func (q *quantizer) add(s Sample) {
	q.total++
	key := bucketKey(s, q.step)

	i, ok := q.index[key]
	if !ok {
		q.index[key] = len(q.buckets)
		q.buckets = append(q.buckets, bucket{
			key:   key,
			count: 1,
			mean:  [3]float64{float64(s.R), float64(s.G), float64(s.B)},
		})
		return
	}

	b := &q.buckets[i]
	b.count++
	n := float64(b.count)
	for c, v := range [3]uint8{s.R, s.G, s.B} {
		b.mean[c] = (b.mean[c]*(n-1) + float64(v)) / n
	}
}

// finish assigns coverage percentages once every sample has been added.
// Buckets are returned in first-encounter order.
func (q *quantizer) finish() []bucket {
	if q.total == 0 {
		return nil
	}
	total := float64(q.total)
	for i := range q.buckets {
		q.buckets[i].percentage = float64(q.buckets[i].count) / total * 100
	}
	return q.buckets
}

// quantize consumes samples and returns the resulting buckets together with
// the number of samples admitted.
func quantize(samples iter.Seq[Sample], step int) ([]bucket, int) {
	q := newQuantizer(step)
	for s := range samples {
		q.add(s)
	}
	return q.finish(), q.total
}

// clampChannel bounds v to the 8-bit channel range.
func clampChannel(v int) int {
	return min(max(v, 0), 255)
}
