package align

import (
	"testing"

	"go.viam.com/test"

	"github.com/monoscene/monoscene/depth"
)

func constantField(t *testing.T, width, height int, val float64) *depth.Field {
	t.Helper()
	f := depth.NewEmptyField(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Set(x, y, val)
		}
	}
	return f
}

func TestDepthOverlapSelf(t *testing.T) {
	f := constantField(t, 8, 8, 0.5)
	test.That(t, DepthOverlap(f, f), test.ShouldAlmostEqual, 1, 1e-9)
}

func TestDepthOverlapSymmetry(t *testing.T) {
	a := constantField(t, 8, 8, 0.3)
	b := constantField(t, 8, 8, 0.7)
	test.That(t, DepthOverlap(a, b), test.ShouldAlmostEqual, DepthOverlap(b, a), 1e-12)
}

func TestDepthOverlapDistinctBins(t *testing.T) {
	a := constantField(t, 4, 4, 0.5)
	b := constantField(t, 4, 4, 0.9)
	overlap := DepthOverlap(a, b)
	// distinct histogram bins: low but non-zero
	test.That(t, overlap, test.ShouldBeGreaterThan, 0)
	test.That(t, overlap, test.ShouldBeLessThan, 0.3)
}

func TestDepthOverlapEmpty(t *testing.T) {
	test.That(t, DepthOverlap(nil, constantField(t, 4, 4, 0.5)), test.ShouldEqual, 0)
	test.That(t, DepthOverlap(depth.NewEmptyField(0, 0), constantField(t, 4, 4, 0.5)), test.ShouldEqual, 0)
}
