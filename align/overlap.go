// Package align estimates relative placement between independently
// synthesized meshes: a coarse histogram-overlap score, a grid-feature
// translation offset, and combined placement of mesh clones into a shared
// scene frame.
package align

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/monoscene/monoscene/depth"
)

const (
	// histogramBins buckets depth values in [0,1].
	histogramBins = 32
	// histogramSmoothing is added to every bin before normalizing, so two
	// fields that occupy disjoint bins still score slightly above zero.
	histogramSmoothing = 0.01
)

// DepthOverlap scores how much two depth fields look at the same content, as
// the Bhattacharyya coefficient of their 32-bin depth histograms. Symmetric,
// in [0,1], 1 for identical distributions. Empty fields score 0.
func DepthOverlap(a, b *depth.Field) float64 {
	pa := histogram(a)
	pb := histogram(b)
	if pa == nil || pb == nil {
		return 0
	}
	coeff := 0.
	for i := range pa {
		coeff += math.Sqrt(pa[i] * pb[i])
	}
	if coeff > 1 {
		coeff = 1
	}
	return coeff
}

// histogram bins the field's samples into a smoothed probability
// distribution. Returns nil for an empty field.
func histogram(f *depth.Field) []float64 {
	if f == nil || len(f.Data()) == 0 {
		return nil
	}
	bins := make([]float64, histogramBins)
	for i := range bins {
		bins[i] = histogramSmoothing
	}
	for _, v := range f.Data() {
		if math.IsNaN(v) {
			continue
		}
		k := int(v * histogramBins)
		if k < 0 {
			k = 0
		} else if k >= histogramBins {
			k = histogramBins - 1
		}
		bins[k]++
	}
	total := floats.Sum(bins)
	floats.Scale(1/total, bins)
	return bins
}
