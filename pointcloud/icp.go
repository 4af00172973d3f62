package pointcloud

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrAlignmentDegenerate means registration could not find enough
// corresponding points between the two clouds to refine a transform.
var ErrAlignmentDegenerate = errors.New("alignment degenerate: too few correspondences between clouds")

// ICPConfig holds the tunables of translation-only iterative closest point.
type ICPConfig struct {
	// MaxIterations bounds the refinement loop.
	MaxIterations int
	// Tolerance stops iteration once the incremental translation magnitude
	// falls below it.
	Tolerance float64
	// CellSize is the spatial hash cell size used for correspondence search.
	CellSize float64
	// MaxSamples caps how many source points are used per iteration.
	MaxSamples int
	// MaxCorrespondDistSq rejects correspondences farther apart than this
	// squared distance.
	MaxCorrespondDistSq float64
	// MinCorrespondences is the smallest correspondence set that still
	// counts as a valid registration.
	MinCorrespondences int
}

// DefaultICPConfig returns the tunables used by the fusion stage.
func DefaultICPConfig() ICPConfig {
	return ICPConfig{
		MaxIterations:       20,
		Tolerance:           0.001,
		CellSize:            0.1,
		MaxSamples:          2000,
		MaxCorrespondDistSq: 1.0,
		MinCorrespondences:  3,
	}
}

// ICPResult reports the outcome of one registration.
type ICPResult struct {
	// Translation moves the source cloud onto the target.
	Translation r3.Vector
	// Transform is the same translation as a homogeneous matrix.
	Transform mgl64.Mat4
	// Iterations is how many refinement rounds ran.
	Iterations int
	// Converged is true when the loop stopped on tolerance rather than on
	// the iteration cap.
	Converged bool
	// Correspondences is the size of the final correspondence set.
	Correspondences int
}

// RegisterICP estimates the translation that best aligns source onto target
// using grid-accelerated nearest-neighbor correspondences. Rotation is not
// estimated; photo-derived surfaces from a shared capture session differ
// mostly by offset. Returns ErrAlignmentDegenerate when the clouds do not
// overlap enough.
func RegisterICP(source, target PointCloud, cfg ICPConfig) (ICPResult, error) {
	if cfg.MaxIterations <= 0 {
		cfg = DefaultICPConfig()
	}

	res := ICPResult{Transform: mgl64.Ident4()}
	if source.Size() == 0 || target.Size() == 0 {
		return res, ErrAlignmentDegenerate
	}

	targetGrid := NewSpatialGridFromCloud(target, cfg.CellSize)
	samples := samplePositions(source, cfg.MaxSamples)

	total := r3.Vector{}
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		res.Iterations = iter + 1

		sum := r3.Vector{}
		count := 0
		for _, p := range samples {
			moved := p.Add(total)
			q, ok := targetGrid.NearestWithin(moved, cfg.MaxCorrespondDistSq)
			if !ok {
				continue
			}
			sum = sum.Add(q.Sub(moved))
			count++
		}
		res.Correspondences = count
		if count < cfg.MinCorrespondences {
			// report whatever refinement happened before the correspondence
			// set collapsed
			res.Translation = total
			res.Transform = mgl64.Translate3D(total.X, total.Y, total.Z)
			return res, ErrAlignmentDegenerate
		}

		step := sum.Mul(1. / float64(count))
		total = total.Add(step)
		if step.Norm() < cfg.Tolerance {
			res.Converged = true
			break
		}
	}

	res.Translation = total
	res.Transform = mgl64.Translate3D(total.X, total.Y, total.Z)
	return res, nil
}

// samplePositions takes up to max evenly strided positions from the cloud.
func samplePositions(pc PointCloud, max int) []r3.Vector {
	all := Positions(pc)
	if max <= 0 || len(all) <= max {
		return all
	}
	stride := len(all) / max
	out := make([]r3.Vector, 0, max)
	for i := 0; i < len(all) && len(out) < max; i += stride {
		out = append(out, all[i])
	}
	return out
}

// ApplyTranslation returns a new cloud with every point offset by t.
func ApplyTranslation(pc PointCloud, t r3.Vector) PointCloud {
	out := NewWithPrealloc(pc.Size())
	pc.Iterate(func(p r3.Vector, d Data) bool {
		//nolint:errcheck
		out.Set(p.Add(t), d)
		return true
	})
	return out
}
