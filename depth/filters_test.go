package depth

import (
	"image"
	"math"
	"testing"

	"go.viam.com/test"
)

func TestMakeRangeArray(t *testing.T) {
	test.That(t, makeRangeArray(3), test.ShouldResemble, []int{-1, 0, 1})
	test.That(t, makeRangeArray(5), test.ShouldResemble, []int{-2, -1, 0, 1, 2})
	test.That(t, makeRangeArray(4), test.ShouldResemble, []int{-2, -1, 0, 1})
	test.That(t, makeRangeArray(0), test.ShouldHaveLength, 0)
}

func TestBilateralFlatFieldInvariance(t *testing.T) {
	for _, size := range []int{1, 4, 9} {
		f := makeConstantField(t, size, size, 0.42)
		out := ApplyFilter(f, BilateralFilter(3, 0.1))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				test.That(t, out.GetXY(x, y), test.ShouldEqual, 0.42)
			}
		}
	}
}

func TestBilateralPreservesEdges(t *testing.T) {
	// a hard step should survive filtering far better than under a plain
	// gaussian blur
	f := NewEmptyField(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				f.Set(x, y, 0.1)
			} else {
				f.Set(x, y, 0.9)
			}
		}
	}
	out := ApplyFilter(f, BilateralFilter(2, 0.05))
	test.That(t, out.GetXY(4, 5), test.ShouldAlmostEqual, 0.1, 0.01)
	test.That(t, out.GetXY(5, 5), test.ShouldAlmostEqual, 0.9, 0.01)
}

func TestMedianRemovesSpike(t *testing.T) {
	f := makeConstantField(t, 5, 5, 0.5)
	f.Set(2, 2, 99)
	out := ApplyFilter(f, MedianFilter3())
	test.That(t, out.GetXY(2, 2), test.ShouldEqual, 0.5)
}

func TestHoleFillingCompleteness(t *testing.T) {
	f := makeConstantField(t, 8, 8, 0.5)
	f.Set(3, 3, 0)
	f.Set(6, 1, math.NaN())
	out := ApplyFilter(f, HoleFillingFilter(5))
	test.That(t, out.GetXY(3, 3), test.ShouldAlmostEqual, 0.5)
	test.That(t, out.GetXY(6, 1), test.ShouldAlmostEqual, 0.5)
}

func TestHoleFillingAllZero(t *testing.T) {
	f := NewEmptyField(6, 6)
	out := ApplyFilter(f, HoleFillingFilter(5))
	for _, v := range out.Data() {
		test.That(t, v, test.ShouldEqual, 0)
	}
}

func TestAdaptiveRangeSigma(t *testing.T) {
	test.That(t, AdaptiveRangeSigma(256), test.ShouldEqual, 0.08)
	test.That(t, AdaptiveRangeSigma(800), test.ShouldEqual, 0.12)
	test.That(t, AdaptiveRangeSigma(2048), test.ShouldEqual, 0.15)
}

func TestGaussianFunction1D(t *testing.T) {
	g := GaussianFunction1D(1.0)
	test.That(t, g(0), test.ShouldEqual, 1.0)
	test.That(t, g(1), test.ShouldBeLessThan, g(0))
	test.That(t, g(2), test.ShouldBeLessThan, g(1))

	flat := GaussianFunction1D(0)
	test.That(t, flat(100), test.ShouldEqual, 1.0)
}

func TestApplyFilterDoesNotMutateInput(t *testing.T) {
	f := makeConstantField(t, 4, 4, 0.5)
	f.Set(1, 1, 0.9)
	_ = ApplyFilter(f, MedianFilter3())
	test.That(t, f.GetXY(1, 1), test.ShouldEqual, 0.9)
}

func TestFilterIdentityOnSinglePixel(t *testing.T) {
	f := makeConstantField(t, 1, 1, 0.3)
	out := ApplyFilter(f, BilateralFilter(2, 0.1))
	test.That(t, out.GetXY(0, 0), test.ShouldEqual, 0.3)
	p := image.Point{0, 0}
	test.That(t, MedianFilter3()(p, f), test.ShouldEqual, 0.3)
}
