package pointcloud

import (
	"image/color"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestBasicPointCloud(t *testing.T) {
	pc := New()
	test.That(t, pc.Size(), test.ShouldEqual, 0)

	p := NewVector(1, 2, 3)
	test.That(t, pc.Set(p, NewBasicData()), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 1)

	_, got := pc.At(1, 2, 3)
	test.That(t, got, test.ShouldBeTrue)
	_, got = pc.At(1, 2, 4)
	test.That(t, got, test.ShouldBeFalse)

	// replace, not duplicate
	test.That(t, pc.Set(p, NewColoredData(color.NRGBA{R: 255, A: 255})), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 1)
	d, got := pc.At(1, 2, 3)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d.HasColor(), test.ShouldBeTrue)
	r, g, b := d.RGB255()
	test.That(t, r, test.ShouldEqual, 255)
	test.That(t, g, test.ShouldEqual, 0)
	test.That(t, b, test.ShouldEqual, 0)
}

func TestMetaDataBounds(t *testing.T) {
	pc := New()
	test.That(t, pc.Set(NewVector(-1, 5, 2), NewBasicData()), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(3, -4, 7), NewBasicData()), test.ShouldBeNil)

	meta := pc.MetaData()
	test.That(t, meta.MinX, test.ShouldEqual, -1)
	test.That(t, meta.MaxX, test.ShouldEqual, 3)
	test.That(t, meta.MinY, test.ShouldEqual, -4)
	test.That(t, meta.MaxY, test.ShouldEqual, 5)
	test.That(t, meta.MinZ, test.ShouldEqual, 2)
	test.That(t, meta.MaxZ, test.ShouldEqual, 7)
	test.That(t, meta.HasColor, test.ShouldBeFalse)

	test.That(t, pc.Set(NewVector(0, 0, 0), NewColoredData(color.NRGBA{G: 1})), test.ShouldBeNil)
	test.That(t, pc.MetaData().HasColor, test.ShouldBeTrue)
}

func TestIterateStops(t *testing.T) {
	pc := New()
	for i := 0; i < 10; i++ {
		test.That(t, pc.Set(NewVector(float64(i), 0, 0), NewBasicData()), test.ShouldBeNil)
	}
	count := 0
	pc.Iterate(func(p r3.Vector, _ Data) bool {
		count++
		return count < 3
	})
	test.That(t, count, test.ShouldEqual, 3)
}
