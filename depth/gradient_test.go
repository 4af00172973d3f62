package depth

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func makeRampField(t *testing.T, w, h int) *Field {
	t.Helper()
	f := NewEmptyField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, float64(x)*0.1)
		}
	}
	return f
}

func TestGradientRamp(t *testing.T) {
	f := makeRampField(t, 8, 8)
	vf := Gradient(f)
	// interior of an x ramp: gx = 0.1, gy = 0
	g := vf.GetXY(4, 4)
	test.That(t, g.Magnitude(), test.ShouldAlmostEqual, 0.1)
	test.That(t, g.Direction(), test.ShouldAlmostEqual, 0)
}

func TestGradientBorderIsZero(t *testing.T) {
	f := makeRampField(t, 8, 8)
	vf := Gradient(f)
	test.That(t, vf.GetXY(0, 3).Magnitude(), test.ShouldEqual, 0)
	test.That(t, vf.GetXY(7, 3).Magnitude(), test.ShouldEqual, 0)
	test.That(t, vf.GetXY(3, 0).Magnitude(), test.ShouldEqual, 0)
	test.That(t, vf.GetXY(3, 7).Magnitude(), test.ShouldEqual, 0)
}

func TestMagnitudeFieldDims(t *testing.T) {
	f := makeRampField(t, 6, 4)
	m := Gradient(f).MagnitudeField()
	r, c := m.Dims()
	test.That(t, r, test.ShouldEqual, 4)
	test.That(t, c, test.ShouldEqual, 6)
}

func TestScharrGradientDirection(t *testing.T) {
	// y ramp: gradient should point along +y
	f := NewEmptyField(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			f.Set(x, y, float64(y)*0.2)
		}
	}
	vf := ScharrGradient(f)
	g := vf.GetXY(4, 4)
	test.That(t, g.Magnitude(), test.ShouldBeGreaterThan, 0)
	test.That(t, g.Direction(), test.ShouldAlmostEqual, math.Pi/2)
}

func TestConfidenceFromGradient(t *testing.T) {
	f := makeRampField(t, 8, 8)
	f.Set(4, 4, 5) // sharp discontinuity
	conf := ConfidenceFromGradient(f)
	// border pixels carry full confidence
	test.That(t, conf.GetXY(0, 0), test.ShouldEqual, 1)
	// the discontinuity's neighbors are the least trusted
	test.That(t, conf.GetXY(3, 4), test.ShouldAlmostEqual, 0)
	// flat interior far from the spike stays trusted
	test.That(t, conf.GetXY(6, 6), test.ShouldBeGreaterThan, 0.9)
}
