package depth

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vec2D represents the gradient of a depth field at a point, in polar form.
// Magnitude is in [0, infinity) and direction in [-pi, pi].
type Vec2D struct {
	magnitude float64
	direction float64
}

// Magnitude returns the gradient magnitude.
func (g Vec2D) Magnitude() float64 {
	return g.magnitude
}

// Direction returns the gradient direction.
func (g Vec2D) Direction() float64 {
	return g.direction
}

// VectorField stores the gradient vectors of a depth field.
type VectorField struct {
	width  int
	height int

	data         []Vec2D
	maxMagnitude float64
}

func (vf *VectorField) kxy(x, y int) int {
	return (y * vf.width) + x
}

// Width returns the number of columns.
func (vf *VectorField) Width() int {
	return vf.width
}

// Height returns the number of rows.
func (vf *VectorField) Height() int {
	return vf.height
}

// Get returns the gradient at the given point.
func (vf *VectorField) Get(p image.Point) Vec2D {
	return vf.data[vf.kxy(p.X, p.Y)]
}

// GetXY returns the gradient at (x, y).
func (vf *VectorField) GetXY(x, y int) Vec2D {
	return vf.data[vf.kxy(x, y)]
}

// MaxMagnitude returns the largest gradient magnitude in the field.
func (vf *VectorField) MaxMagnitude() float64 {
	return vf.maxMagnitude
}

// MagnitudeField returns all gradient magnitudes as a mat.Dense.
func (vf *VectorField) MagnitudeField() *mat.Dense {
	h, w := vf.height, vf.width
	mag := make([]float64, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mag = append(mag, vf.GetXY(x, y).Magnitude())
		}
	}
	return mat.NewDense(h, w, mag)
}

// Gradient approximates the depth gradient at every pixel with 4-neighbor
// central differences. Border pixels get a zero gradient.
func Gradient(f *Field) *VectorField {
	vf := &VectorField{
		width:  f.Width(),
		height: f.Height(),
		data:   make([]Vec2D, f.Width()*f.Height()),
	}
	for y := 1; y < f.Height()-1; y++ {
		for x := 1; x < f.Width()-1; x++ {
			gx := (f.GetXY(x+1, y) - f.GetXY(x-1, y)) / 2.
			gy := (f.GetXY(x, y+1) - f.GetXY(x, y-1)) / 2.
			v := Vec2D{math.Hypot(gx, gy), math.Atan2(gy, gx)}
			vf.data[vf.kxy(x, y)] = v
			if v.magnitude > vf.maxMagnitude {
				vf.maxMagnitude = v.magnitude
			}
		}
	}
	return vf
}

// Scharr kernels approximate the gradient with better rotational symmetry
// than Sobel. One kernel per direction.
var (
	scharrX = [3][3]float64{{-3, 0, 3}, {-10, 0, 10}, {-3, 0, 3}}
	scharrY = [3][3]float64{{-3, -10, -3}, {0, 0, 0}, {3, 10, 3}}
)

// ScharrGradient approximates the depth gradient at every pixel with the
// Scharr operator. Out-of-bounds taps are clamped to the nearest edge pixel.
func ScharrGradient(f *Field) *VectorField {
	vf := &VectorField{
		width:  f.Width(),
		height: f.Height(),
		data:   make([]Vec2D, f.Width()*f.Height()),
	}
	xRange, yRange := makeRangeArray(3), makeRangeArray(3)
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v >= max {
			return max - 1
		}
		return v
	}
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			sX, sY := 0.0, 0.0
			for i, dx := range xRange {
				for j, dy := range yRange {
					d := f.GetXY(clamp(x+dx, f.Width()), clamp(y+dy, f.Height()))
					// rows are height j, columns are width i
					sX += scharrX[j][i] * d
					sY += scharrY[j][i] * d
				}
			}
			v := Vec2D{math.Hypot(sX, sY), math.Atan2(sY, sX)}
			vf.data[vf.kxy(x, y)] = v
			if v.magnitude > vf.maxMagnitude {
				vf.maxMagnitude = v.magnitude
			}
		}
	}
	return vf
}

// ConfidenceFromGradient derives a confidence field as 1 minus the
// normalized gradient magnitude: flat regions are trusted, depth
// discontinuities are not. Border pixels carry full confidence since their
// gradient is defined as zero.
func ConfidenceFromGradient(f *Field) *Field {
	vf := Gradient(f)
	conf := NewEmptyField(f.Width(), f.Height())
	maxMag := vf.MaxMagnitude()
	if maxMag == 0 {
		maxMag = 1
	}
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			conf.Set(x, y, 1.-vf.GetXY(x, y).Magnitude()/maxMag)
		}
	}
	return conf
}
