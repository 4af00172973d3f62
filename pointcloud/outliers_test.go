package pointcloud

import (
	"testing"

	"go.viam.com/test"
)

func TestStatisticalOutlierRemoval(t *testing.T) {
	pc := New()
	// dense plane
	for i := 0; i < 15; i++ {
		for j := 0; j < 15; j++ {
			p := NewVector(float64(i)*0.02, float64(j)*0.02, 0)
			test.That(t, pc.Set(p, NewBasicData()), test.ShouldBeNil)
		}
	}
	// one isolated point far from everything
	outlier := NewVector(10, 10, 10)
	test.That(t, pc.Set(outlier, NewBasicData()), test.ShouldBeNil)

	cleaned, err := StatisticalOutlierRemoval(pc, DefaultOutlierConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cleaned.Size(), test.ShouldBeLessThan, pc.Size())
	// only the far point and at most the plane corners should go
	test.That(t, cleaned.Size(), test.ShouldBeGreaterThanOrEqualTo, pc.Size()-5)
	_, got := cleaned.At(outlier.X, outlier.Y, outlier.Z)
	test.That(t, got, test.ShouldBeFalse)
	// interior plane points survive
	_, got = cleaned.At(0.1, 0.1, 0)
	test.That(t, got, test.ShouldBeTrue)
}

func TestStatisticalOutlierRemovalSampleCap(t *testing.T) {
	pc := New()
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			p := NewVector(float64(i)*0.05, float64(j)*0.05, 0)
			test.That(t, pc.Set(p, NewBasicData()), test.ShouldBeNil)
		}
	}
	outlier := NewVector(10, 10, 10)
	test.That(t, pc.Set(outlier, NewBasicData()), test.ShouldBeNil)

	// cap forces a stride of 4, so three of every four points inherit the
	// mean neighbor distance of their nearest scored point
	cfg := OutlierConfig{KNeighbors: 8, StdDevFactor: 3, CellSize: 0.15, SampleCap: 16}
	cleaned, err := StatisticalOutlierRemoval(pc, cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cleaned.Size(), test.ShouldEqual, 64)
	_, got := cleaned.At(outlier.X, outlier.Y, outlier.Z)
	test.That(t, got, test.ShouldBeFalse)
	// an inherited plane point survives with its neighborhood
	q := NewVector(float64(3)*0.05, float64(3)*0.05, 0)
	_, got = cleaned.At(q.X, q.Y, q.Z)
	test.That(t, got, test.ShouldBeTrue)
}

func TestStatisticalOutlierRemovalTinyCloud(t *testing.T) {
	pc := New()
	test.That(t, pc.Set(NewVector(0, 0, 0), NewBasicData()), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(1, 0, 0), NewBasicData()), test.ShouldBeNil)

	cleaned, err := StatisticalOutlierRemoval(pc, DefaultOutlierConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cleaned.Size(), test.ShouldEqual, 2)
}
