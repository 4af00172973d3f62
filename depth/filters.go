package depth

import (
	"image"
	"math"
	"sort"
)

// Helper for iterating kernel offsets. When used with i, dx := range
// makeRangeArray(n), i is the position within the kernel and dx the offset
// within the field. If length is even the origin is to the right of middle,
// i.e. 4 -> {-2, -1, 0, 1}.
func makeRangeArray(length int) []int {
	if length <= 0 {
		return make([]int, 0)
	}
	rangeArray := make([]int, length)
	var span int
	if length%2 == 0 {
		oddArr := makeRangeArray(length - 1)
		span = length / 2
		rangeArray = append([]int{-span}, oddArr...)
	} else {
		span = (length - 1) / 2
		for i := 0; i < span; i++ {
			rangeArray[length-1-i] = span - i
			rangeArray[i] = -span + i
		}
	}
	return rangeArray
}

// GaussianFunction1D takes in a sigma and returns an unnormalized gaussian
// weighting function.
func GaussianFunction1D(sigma float64) func(p float64) float64 {
	if sigma <= 0. {
		return func(p float64) float64 {
			return 1.
		}
	}
	return func(p float64) float64 {
		return math.Exp(-0.5 * (p * p) / (sigma * sigma))
	}
}

// flatNeighborhoodEpsilon bounds the depth spread below which a bilateral
// neighborhood is treated as flat and the weighted sum is skipped. The early
// exit must not change output beyond floating point tolerance.
const flatNeighborhoodEpsilon = 1e-6

// BilateralFilter returns a filter weighing neighbors within radius by the
// product of a spatial gaussian (sigma = radius/2) and a range gaussian over
// the depth difference.
func BilateralFilter(radius int, rangeSigma float64) func(p image.Point, f *Field) float64 {
	spatialFilter := GaussianFunction1D(float64(radius) / 2.)
	rangeFilter := GaussianFunction1D(rangeSigma)
	k := 1 + 2*radius
	xRange, yRange := makeRangeArray(k), makeRangeArray(k)
	return func(p image.Point, f *Field) float64 {
		center := f.Get(p)

		flat := true
		for _, dx := range xRange {
			for _, dy := range yRange {
				if !f.In(p.X+dx, p.Y+dy) {
					continue
				}
				if math.Abs(f.GetXY(p.X+dx, p.Y+dy)-center) > flatNeighborhoodEpsilon {
					flat = false
					break
				}
			}
			if !flat {
				break
			}
		}
		if flat {
			return center
		}

		newDepth := 0.0
		totalWeight := 0.0
		for _, dx := range xRange {
			for _, dy := range yRange {
				if !f.In(p.X+dx, p.Y+dy) {
					continue
				}
				d := f.GetXY(p.X+dx, p.Y+dy)
				weight := spatialFilter(math.Hypot(float64(dx), float64(dy)))
				weight *= rangeFilter(d - center)
				newDepth += d * weight
				totalWeight += weight
			}
		}
		if totalWeight == 0 {
			return center
		}
		return newDepth / totalWeight
	}
}

// AdaptiveRangeSigma picks the range gaussian sigma for a bilateral pass
// from the input resolution: narrower for high resolution inputs where depth
// discontinuities span fewer pixels.
func AdaptiveRangeSigma(width int) float64 {
	switch {
	case width < 512:
		return 0.08
	case width <= 1024:
		return 0.12
	default:
		return 0.15
	}
}

// MedianFilter3 returns a 3x3 median filter for salt-and-pepper outlier
// removal.
func MedianFilter3() func(p image.Point, f *Field) float64 {
	xRange, yRange := makeRangeArray(3), makeRangeArray(3)
	return func(p image.Point, f *Field) float64 {
		window := make([]float64, 0, 9)
		for _, dx := range xRange {
			for _, dy := range yRange {
				if !f.In(p.X+dx, p.Y+dy) {
					continue
				}
				window = append(window, f.GetXY(p.X+dx, p.Y+dy))
			}
		}
		sort.Float64s(window)
		return window[len(window)/2]
	}
}

// HoleFillingFilter returns a filter replacing zero or NaN samples by the
// mean of valid neighbors in a window x window neighborhood, or 0 if no
// valid neighbor exists. Valid samples pass through untouched.
func HoleFillingFilter(window int) func(p image.Point, f *Field) float64 {
	xRange, yRange := makeRangeArray(window), makeRangeArray(window)
	return func(p image.Point, f *Field) float64 {
		v := f.Get(p)
		if v != 0 && !math.IsNaN(v) {
			return v
		}
		total := 0.0
		count := 0.0
		for _, dx := range xRange {
			for _, dy := range yRange {
				if dx == 0 && dy == 0 {
					continue
				}
				if !f.In(p.X+dx, p.Y+dy) {
					continue
				}
				d := f.GetXY(p.X+dx, p.Y+dy)
				if d == 0 || math.IsNaN(d) {
					continue
				}
				total += d
				count++
			}
		}
		if count == 0 {
			return 0
		}
		return total / count
	}
}

// ApplyFilter runs a pixel filter over the whole field and returns the
// filtered copy. The input field is not modified.
func ApplyFilter(f *Field, filter func(p image.Point, f *Field) float64) *Field {
	out := NewEmptyField(f.Width(), f.Height())
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			out.Set(x, y, filter(image.Point{x, y}, f))
		}
	}
	return out
}
