package align

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/monoscene/monoscene/depth"
	"github.com/monoscene/monoscene/mesh"
)

func meshFromField(t *testing.T, f *depth.Field) *mesh.SurfaceMesh {
	t.Helper()
	logger := golog.NewTestLogger(t)
	m, err := mesh.Synthesize(f, nil, mesh.DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)
	return m
}

func TestAlignEmpty(t *testing.T) {
	logger := golog.NewTestLogger(t)
	test.That(t, Align(nil, DefaultConfig(), logger), test.ShouldBeNil)
}

func TestAlignAnchorNeverMoves(t *testing.T) {
	logger := golog.NewTestLogger(t)
	a := meshFromField(t, constantField(t, 16, 16, 0.4))
	b := meshFromField(t, constantField(t, 16, 16, 0.8))

	placed := Align([]*mesh.SurfaceMesh{a, b}, DefaultConfig(), logger)
	test.That(t, len(placed), test.ShouldEqual, 2)

	// anchor is a clone with identical geometry
	test.That(t, placed[0].Positions, test.ShouldResemble, a.Positions)
	test.That(t, placed[0] == a, test.ShouldBeFalse)

	// the second mesh moved along +X and the input did not
	test.That(t, placed[1].Positions[0].X, test.ShouldBeGreaterThan, b.Positions[0].X)
}

func TestAlignOverlapShrinksSpacing(t *testing.T) {
	logger := golog.NewTestLogger(t)
	same := meshFromField(t, constantField(t, 16, 16, 0.4))
	sameAgain := meshFromField(t, constantField(t, 16, 16, 0.4))
	different := meshFromField(t, constantField(t, 16, 16, 0.9))

	cfg := DefaultConfig()
	cfg.UseFeatureOffset = false

	near := Align([]*mesh.SurfaceMesh{same, sameAgain}, cfg, logger)
	far := Align([]*mesh.SurfaceMesh{same, different}, cfg, logger)

	nearShift := near[1].Positions[0].X - sameAgain.Positions[0].X
	farShift := far[1].Positions[0].X - different.Positions[0].X
	// overlapping views are pulled closer together
	test.That(t, nearShift, test.ShouldBeLessThan, farShift)
	test.That(t, nearShift, test.ShouldBeGreaterThan, 0)
}
