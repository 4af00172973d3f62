package align

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/monoscene/monoscene/depth"
)

const (
	// featureGridCells partitions each depth field per axis.
	featureGridCells = 8
	// featureMatchThreshold is the minimum cosine similarity for a cell match.
	featureMatchThreshold = 0.8
	// cellToWorld approximates world units per grid cell.
	cellToWorld = 0.5
)

// cellFeature summarizes one grid cell of a depth field.
type cellFeature struct {
	col, row int
	// normalized feature vector: mean depth, sqrt variance, gradient
	// direction over pi
	vec [3]float64
	// meanDepth kept unnormalized for the Z delta
	meanDepth float64
}

// gridFeatures partitions the field into featureGridCells^2 cells and
// summarizes each with {mean depth, sqrt variance, dominant gradient
// direction from summed central differences}.
func gridFeatures(f *depth.Field) []cellFeature {
	w, h := f.Width(), f.Height()
	if w < featureGridCells || h < featureGridCells {
		return nil
	}
	cellW := w / featureGridCells
	cellH := h / featureGridCells

	features := make([]cellFeature, 0, featureGridCells*featureGridCells)
	for row := 0; row < featureGridCells; row++ {
		for col := 0; col < featureGridCells; col++ {
			x0, y0 := col*cellW, row*cellH

			sum, sumSq := 0., 0.
			gx, gy := 0., 0.
			n := 0
			for y := y0; y < y0+cellH; y++ {
				for x := x0; x < x0+cellW; x++ {
					v := f.GetXY(x, y)
					sum += v
					sumSq += v * v
					n++
					if x > 0 && x < w-1 {
						gx += (f.GetXY(x+1, y) - f.GetXY(x-1, y)) / 2.
					}
					if y > 0 && y < h-1 {
						gy += (f.GetXY(x, y+1) - f.GetXY(x, y-1)) / 2.
					}
				}
			}
			mean := sum / float64(n)
			variance := sumSq/float64(n) - mean*mean
			if variance < 0 {
				variance = 0
			}
			features = append(features, cellFeature{
				col:       col,
				row:       row,
				vec:       [3]float64{mean, math.Sqrt(variance), math.Atan2(gy, gx) / math.Pi},
				meanDepth: mean,
			})
		}
	}
	return features
}

func cosineSimilarity(a, b [3]float64) float64 {
	dot, na, nb := 0., 0., 0.
	for i := 0; i < 3; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// FeatureOffset estimates the translation that places the candidate field's
// content into the reference field's frame, by matching grid cells on cosine
// similarity and averaging the matched cell deltas. The returned match count
// is zero when the views share no recognizable structure; callers then fall
// back to spacing placement alone.
func FeatureOffset(reference, candidate *depth.Field) (r3.Vector, int) {
	refFeatures := gridFeatures(reference)
	candFeatures := gridFeatures(candidate)
	if len(refFeatures) == 0 || len(candFeatures) == 0 {
		return r3.Vector{}, 0
	}

	var dCol, dRow, dDepth float64
	matches := 0
	for _, rf := range refFeatures {
		best := -1.
		var bestCell cellFeature
		for _, cf := range candFeatures {
			if sim := cosineSimilarity(rf.vec, cf.vec); sim > best {
				best = sim
				bestCell = cf
			}
		}
		if best <= featureMatchThreshold {
			continue
		}
		dCol += float64(rf.col - bestCell.col)
		dRow += float64(rf.row - bestCell.row)
		dDepth += rf.meanDepth - bestCell.meanDepth
		matches++
	}
	if matches == 0 {
		return r3.Vector{}, 0
	}

	n := float64(matches)
	// grid rows grow downward, scene Y grows upward
	return r3.Vector{
		X: dCol / n * cellToWorld,
		Y: -dRow / n * cellToWorld,
		Z: dDepth / n * cellToWorld,
	}, matches
}
