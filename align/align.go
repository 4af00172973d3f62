package align

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/monoscene/monoscene/mesh"
)

// Config tunes multi-view placement.
type Config struct {
	// NominalSpacing is the base X distance between consecutive mesh
	// origins before overlap shrinks it.
	NominalSpacing float64
	// OverlapShrink scales how strongly histogram overlap pulls
	// consecutive meshes together: spacing *= 1 - overlap*OverlapShrink.
	OverlapShrink float64
	// UseFeatureOffset enables the grid-feature refinement on top of the
	// spacing heuristic.
	UseFeatureOffset bool
}

// DefaultConfig returns the placement tunables used by the pipeline.
func DefaultConfig() Config {
	return Config{
		NominalSpacing:   4.0,
		OverlapShrink:    0.7,
		UseFeatureOffset: true,
	}
}

// Align places the given meshes into a shared scene frame and returns
// translated clones. The first mesh anchors the frame and never moves; each
// subsequent mesh is offset from its predecessor by nominal spacing shrunk
// by histogram overlap, refined by the grid-feature offset when one can be
// estimated. The inputs are not mutated.
func Align(meshes []*mesh.SurfaceMesh, cfg Config, logger golog.Logger) []*mesh.SurfaceMesh {
	if cfg.NominalSpacing <= 0 {
		cfg = DefaultConfig()
	}
	if len(meshes) == 0 {
		return nil
	}

	out := make([]*mesh.SurfaceMesh, 0, len(meshes))
	out = append(out, meshes[0].Clone())

	cursor := r3.Vector{}
	for i := 1; i < len(meshes); i++ {
		prev, cur := meshes[i-1], meshes[i]

		overlap := DepthOverlap(prev.Depth, cur.Depth)
		spacing := cfg.NominalSpacing * (1 - overlap*cfg.OverlapShrink)

		offset := r3.Vector{X: spacing}
		matches := 0
		if cfg.UseFeatureOffset {
			var feature r3.Vector
			feature, matches = FeatureOffset(prev.Depth, cur.Depth)
			offset = offset.Add(feature)
		}
		if logger != nil {
			logger.Debugw("placed mesh",
				"index", i,
				"overlap", overlap,
				"spacing", spacing,
				"featureMatches", matches,
			)
		}

		cursor = cursor.Add(offset)
		placed := cur.Clone()
		placed.Translate(cursor)
		out = append(out, placed)
	}
	return out
}
