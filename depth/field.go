// Package depth defines the dense depth field produced by monocular depth
// estimation and implements the post-processing applied to it before mesh
// synthesis: normalization, edge-preserving filtering, hole filling,
// confidence estimation and resampling.
package depth

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// Field is a dense 2D grid of scalar depth samples stored row-major.
// After Clean, values are normalized to [0,1]. A Field is also used to hold
// per-pixel confidence (1 = certain, 0 = uncertain).
type Field struct {
	width  int
	height int

	data []float64
}

// NewEmptyField returns a zeroed field of the given dimensions.
func NewEmptyField(width, height int) *Field {
	return &Field{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// FieldFromSlice wraps a row-major sample slice in a Field. The slice is
// used directly, not copied.
func FieldFromSlice(samples []float64, width, height int) (*Field, error) {
	if len(samples) != width*height {
		return nil, errors.Errorf("expected %d samples for %dx%d field, got %d", width*height, width, height, len(samples))
	}
	return &Field{width: width, height: height, data: samples}, nil
}

func (f *Field) kxy(x, y int) int {
	return (y * f.width) + x
}

// Width returns the number of columns.
func (f *Field) Width() int {
	return f.width
}

// Height returns the number of rows.
func (f *Field) Height() int {
	return f.height
}

// In returns whether the given coordinates are within the field.
func (f *Field) In(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

// Get returns the sample at the given point.
func (f *Field) Get(p image.Point) float64 {
	return f.data[f.kxy(p.X, p.Y)]
}

// GetXY returns the sample at (x, y).
func (f *Field) GetXY(x, y int) float64 {
	return f.data[f.kxy(x, y)]
}

// Set stores a sample at (x, y).
func (f *Field) Set(x, y int, val float64) {
	f.data[f.kxy(x, y)] = val
}

// Data exposes the underlying row-major samples.
func (f *Field) Data() []float64 {
	return f.data
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	out := NewEmptyField(f.width, f.height)
	copy(out.data, f.data)
	return out
}

// MinMax returns the smallest and largest finite samples. NaN samples are
// skipped. An empty or all-NaN field reports (0, 0).
func (f *Field) MinMax() (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, v := range f.data {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min > max {
		return 0, 0
	}
	return min, max
}

// Normalize min-max stretches all samples into [0,1] in place. A constant
// field maps to uniform 0; the degenerate range is treated as 1 so the
// stretch never divides by zero. NaN samples become 0 and are left for hole
// filling to repair.
func (f *Field) Normalize() {
	min, max := f.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}
	for i, v := range f.data {
		if math.IsNaN(v) {
			f.data[i] = 0
			continue
		}
		f.data[i] = (v - min) / span
	}
}

// SampleNearest returns the sample at the pixel nearest to normalized
// coordinates (u, v) in [0,1].
func (f *Field) SampleNearest(u, v float64) float64 {
	x := int(math.Round(u * float64(f.width-1)))
	y := int(math.Round(v * float64(f.height-1)))
	if x < 0 {
		x = 0
	} else if x >= f.width {
		x = f.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.height {
		y = f.height - 1
	}
	return f.GetXY(x, y)
}

// SampleBilinear returns a bilinearly interpolated sample at normalized
// coordinates (u, v) in [0,1].
func (f *Field) SampleBilinear(u, v float64) float64 {
	fx := u * float64(f.width-1)
	fy := v * float64(f.height-1)
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= f.width {
		x1 = f.width - 1
	}
	if y1 >= f.height {
		y1 = f.height - 1
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	top := f.GetXY(x0, y0)*(1-tx) + f.GetXY(x1, y0)*tx
	bottom := f.GetXY(x0, y1)*(1-tx) + f.GetXY(x1, y1)*tx
	return top*(1-ty) + bottom*ty
}
