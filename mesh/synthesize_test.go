package mesh

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/monoscene/monoscene/depth"
)

var pointOffset = r3.Vector{X: 1}

func uniformField(t *testing.T, width, height int, val float64) *depth.Field {
	t.Helper()
	f := depth.NewEmptyField(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.Set(x, y, val)
		}
	}
	return f
}

func TestSynthesizeUniformDepth(t *testing.T) {
	logger := golog.NewTestLogger(t)
	f := uniformField(t, 8, 8, 0.5)

	opts := DefaultOptions()
	opts.EnablePerspective = false
	m, err := Synthesize(f, nil, opts, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, m.SegX, test.ShouldEqual, 8)
	test.That(t, m.SegY, test.ShouldEqual, 8)
	test.That(t, m.VertexCount(), test.ShouldEqual, 9*9)
	for _, p := range m.Positions {
		test.That(t, p.Z, test.ShouldAlmostEqual, 1.0, 1e-12)
	}
}

func TestSynthesizeVertexCountInvariant(t *testing.T) {
	logger := golog.NewTestLogger(t)
	f := uniformField(t, 16, 12, 0.3)
	// a hard depth step down the middle
	for y := 0; y < 12; y++ {
		for x := 8; x < 16; x++ {
			f.Set(x, y, 0.9)
		}
	}

	for _, stretch := range []bool{false, true} {
		opts := DefaultOptions()
		opts.EnableStretchRemoval = stretch
		m, err := Synthesize(f, nil, opts, logger)
		test.That(t, err, test.ShouldBeNil)

		test.That(t, m.VertexCount(), test.ShouldEqual, (m.SegX+1)*(m.SegY+1))
		test.That(t, len(m.Indices), test.ShouldBeLessThan, m.SegX*m.SegY*6)
		test.That(t, len(m.Normals), test.ShouldEqual, m.VertexCount())
		test.That(t, len(m.Colors), test.ShouldEqual, m.VertexCount())
		test.That(t, len(m.UVs), test.ShouldEqual, m.VertexCount())
	}
}

func TestSynthesizeStretchRemoval(t *testing.T) {
	logger := golog.NewTestLogger(t)
	f := uniformField(t, 16, 16, 0.1)
	for y := 0; y < 16; y++ {
		for x := 8; x < 16; x++ {
			f.Set(x, y, 0.9)
		}
	}

	opts := DefaultOptions()
	opts.EnableStretchRemoval = false
	loose, err := Synthesize(f, nil, opts, logger)
	test.That(t, err, test.ShouldBeNil)

	opts.EnableStretchRemoval = true
	tight, err := Synthesize(f, nil, opts, logger)
	test.That(t, err, test.ShouldBeNil)

	// curtain triangles across the step are gone
	test.That(t, tight.TriangleCount(), test.ShouldBeLessThan, loose.TriangleCount())
}

func TestSynthesizePerspectiveExpandsNear(t *testing.T) {
	logger := golog.NewTestLogger(t)
	f := uniformField(t, 8, 8, 1.0)

	flat := DefaultOptions()
	flat.EnablePerspective = false
	ortho, err := Synthesize(f, nil, flat, logger)
	test.That(t, err, test.ShouldBeNil)

	persp, err := Synthesize(f, nil, DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)

	// uniform max depth, every off-center vertex pushed outward
	test.That(t, persp.Positions[0].X, test.ShouldBeLessThan, ortho.Positions[0].X)
}

func TestSynthesizeEmptyField(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := Synthesize(nil, nil, DefaultOptions(), logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = Synthesize(depth.NewEmptyField(0, 0), nil, DefaultOptions(), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCloneAndTranslate(t *testing.T) {
	logger := golog.NewTestLogger(t)
	f := uniformField(t, 8, 8, 0.5)
	m, err := Synthesize(f, nil, DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)

	clone := m.Clone()
	clone.Translate(pointOffset)
	test.That(t, clone.Positions[0].X, test.ShouldAlmostEqual, m.Positions[0].X+1)
	// the original did not move
	test.That(t, m.Positions[0].X, test.ShouldNotAlmostEqual, clone.Positions[0].X)
}

func TestToPointCloud(t *testing.T) {
	logger := golog.NewTestLogger(t)
	f := uniformField(t, 8, 8, 0.5)
	m, err := Synthesize(f, nil, DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)

	pc := m.ToPointCloud()
	test.That(t, pc.Size(), test.ShouldEqual, m.VertexCount())
	test.That(t, pc.MetaData().HasColor, test.ShouldBeTrue)
}
