package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// gridKey is the integer coordinate of one spatial hash cell.
type gridKey struct {
	x, y, z int
}

// SpatialGrid is a uniform hash grid over 3D space. It trades exactness for
// speed: neighbor queries only look at the 27 cells around the query point,
// so the cell size bounds the search radius.
type SpatialGrid struct {
	cellSize float64
	cells    map[gridKey][]r3.Vector
	size     int
}

// NewSpatialGrid returns an empty grid with the given cell size.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 0.1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    map[gridKey][]r3.Vector{},
	}
}

// NewSpatialGridFromCloud builds a grid over every point in the cloud.
func NewSpatialGridFromCloud(pc PointCloud, cellSize float64) *SpatialGrid {
	sg := NewSpatialGrid(cellSize)
	pc.Iterate(func(p r3.Vector, _ Data) bool {
		sg.Insert(p)
		return true
	})
	return sg
}

func (sg *SpatialGrid) keyFor(p r3.Vector) gridKey {
	return gridKey{
		x: int(math.Floor(p.X / sg.cellSize)),
		y: int(math.Floor(p.Y / sg.cellSize)),
		z: int(math.Floor(p.Z / sg.cellSize)),
	}
}

// Insert adds one point to the grid.
func (sg *SpatialGrid) Insert(p r3.Vector) {
	k := sg.keyFor(p)
	sg.cells[k] = append(sg.cells[k], p)
	sg.size++
}

// Size returns the number of inserted points.
func (sg *SpatialGrid) Size() int {
	return sg.size
}

// Neighbors returns all points in the 3x3x3 cell block around p, which
// covers every point within one cell size of p.
func (sg *SpatialGrid) Neighbors(p r3.Vector) []r3.Vector {
	k := sg.keyFor(p)
	var out []r3.Vector
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				nk := gridKey{k.x + dx, k.y + dy, k.z + dz}
				out = append(out, sg.cells[nk]...)
			}
		}
	}
	return out
}

// NearestWithin returns the closest point to p within the neighboring cells
// whose squared distance is below maxDistSq, and whether one was found.
func (sg *SpatialGrid) NearestWithin(p r3.Vector, maxDistSq float64) (r3.Vector, bool) {
	bestSq := maxDistSq
	var best r3.Vector
	found := false
	for _, q := range sg.Neighbors(p) {
		d := q.Sub(p)
		dSq := d.Dot(d)
		if dSq < bestSq {
			bestSq = dSq
			best = q
			found = true
		}
	}
	return best, found
}

// KNearest returns up to k neighbor distances to p from the neighboring
// cells, sorted ascending. The point itself (distance zero) is skipped.
func (sg *SpatialGrid) KNearest(p r3.Vector, k int) []float64 {
	neighbors := sg.Neighbors(p)
	dists := make([]float64, 0, len(neighbors))
	for _, q := range neighbors {
		d := q.Sub(p)
		dSq := d.Dot(d)
		if dSq == 0 {
			continue
		}
		dists = append(dists, math.Sqrt(dSq))
	}
	// insertion sort of only the k smallest, k is tiny
	if len(dists) > 1 {
		for i := 1; i < len(dists); i++ {
			for j := i; j > 0 && dists[j] < dists[j-1]; j-- {
				dists[j], dists[j-1] = dists[j-1], dists[j]
			}
		}
	}
	if len(dists) > k {
		dists = dists[:k]
	}
	return dists
}
