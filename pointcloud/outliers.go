package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// OutlierConfig holds the tunables of statistical outlier removal.
type OutlierConfig struct {
	// KNeighbors is how many nearest neighbors contribute to each point's
	// mean distance.
	KNeighbors int
	// StdDevFactor keeps points whose mean neighbor distance is within this
	// many standard deviations of the global mean.
	StdDevFactor float64
	// CellSize is the spatial hash cell size bounding the neighbor search.
	CellSize float64
	// SampleCap bounds how many points get exact statistics on very large
	// clouds; the rest inherit the mean distance computed for their nearest
	// scored neighbor.
	SampleCap int
}

// DefaultOutlierConfig returns the tunables used by the fusion stage.
func DefaultOutlierConfig() OutlierConfig {
	return OutlierConfig{
		KNeighbors:   8,
		StdDevFactor: 2.0,
		CellSize:     0.15,
		SampleCap:    50000,
	}
}

// StatisticalOutlierRemoval drops points whose mean distance to their nearest
// neighbors is abnormally large. A point with no neighbors inside the search
// cells is treated as isolated and dropped. When the cloud is too small to
// yield meaningful statistics it is returned unchanged.
func StatisticalOutlierRemoval(pc PointCloud, cfg OutlierConfig) (PointCloud, error) {
	if cfg.KNeighbors <= 0 {
		cfg = DefaultOutlierConfig()
	}
	if pc.Size() <= cfg.KNeighbors {
		return pc, nil
	}

	grid := NewSpatialGridFromCloud(pc, cfg.CellSize)

	type scored struct {
		p        r3.Vector
		d        Data
		meanDist float64
		isolated bool
		pending  bool
	}
	points := make([]scored, 0, pc.Size())
	stride := 1
	if cfg.SampleCap > 0 && pc.Size() > cfg.SampleCap {
		stride = pc.Size() / cfg.SampleCap
	}

	scoredGrid := NewSpatialGrid(cfg.CellSize)
	scoredDist := map[r3.Vector]float64{}

	i := 0
	meanDists := make([]float64, 0, pc.Size())
	pc.Iterate(func(p r3.Vector, d Data) bool {
		s := scored{p: p, d: d}
		if i%stride == 0 {
			if md, ok := meanNeighborDist(grid, p, cfg.KNeighbors); ok {
				s.meanDist = md
				meanDists = append(meanDists, md)
				scoredGrid.Insert(p)
				scoredDist[p] = md
			} else {
				s.isolated = true
			}
		} else {
			s.pending = true
		}
		points = append(points, s)
		i++
		return true
	})

	// skipped points inherit the mean distance computed for their nearest
	// scored neighbor; a skipped point with no scored neighbor in its search
	// cells gets exact statistics of its own
	for idx := range points {
		s := &points[idx]
		if !s.pending {
			continue
		}
		if q, ok := scoredGrid.NearestWithin(s.p, math.MaxFloat64); ok {
			s.meanDist = scoredDist[q]
			continue
		}
		if md, ok := meanNeighborDist(grid, s.p, cfg.KNeighbors); ok {
			s.meanDist = md
		} else {
			s.isolated = true
		}
	}

	if len(meanDists) < 2 {
		return pc, nil
	}
	mean, err := stats.Mean(meanDists)
	if err != nil {
		return nil, errors.Wrap(err, "outlier statistics")
	}
	sd, err := stats.StandardDeviation(meanDists)
	if err != nil {
		return nil, errors.Wrap(err, "outlier statistics")
	}
	threshold := mean + cfg.StdDevFactor*sd

	out := NewWithPrealloc(len(points))
	for _, s := range points {
		if s.isolated || s.meanDist > threshold {
			continue
		}
		//nolint:errcheck
		out.Set(s.p, s.d)
	}
	return out, nil
}

// meanNeighborDist averages the distances to p's k nearest neighbors. The
// second return is false when no neighbor lies within the search cells.
func meanNeighborDist(grid *SpatialGrid, p r3.Vector, k int) (float64, bool) {
	dists := grid.KNearest(p, k)
	if len(dists) == 0 {
		return 0, false
	}
	sum := 0.
	for _, d := range dists {
		sum += d
	}
	return sum / float64(len(dists)), true
}
