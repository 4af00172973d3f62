// Package pointcloud defines an unordered container of colored 3D points
// and the spatial operations the reconstruction pipeline runs on it:
// grid-accelerated nearest-neighbor search, translation-only ICP
// registration, voxel downsampling and statistical outlier removal.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// MetaData summarizes what is stored in a point cloud.
type MetaData struct {
	HasColor bool

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// PointCloud is a general purpose container of points without topology.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// MetaData returns meta data.
	MetaData() MetaData

	// Set places the given point in the cloud.
	Set(p r3.Vector, d Data) error

	// At returns the data of the point at the given position, and whether
	// such a point exists.
	At(x, y, z float64) (Data, bool)

	// Iterate calls the given function for each point. If the function
	// returns false, iteration stops.
	Iterate(fn func(p r3.Vector, d Data) bool)
}

// NewMetaData returns MetaData ready to merge points into.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64,
		MinY: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxY: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Merge folds one point into the metadata.
func (meta *MetaData) Merge(p r3.Vector, d Data) {
	if d != nil && d.HasColor() {
		meta.HasColor = true
	}

	if p.X > meta.MaxX {
		meta.MaxX = p.X
	}
	if p.Y > meta.MaxY {
		meta.MaxY = p.Y
	}
	if p.Z > meta.MaxZ {
		meta.MaxZ = p.Z
	}
	if p.X < meta.MinX {
		meta.MinX = p.X
	}
	if p.Y < meta.MinY {
		meta.MinY = p.Y
	}
	if p.Z < meta.MinZ {
		meta.MinZ = p.Z
	}
}

// NewVector is a convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Positions collects all point positions into a slice, in iteration order.
func Positions(pc PointCloud) []r3.Vector {
	out := make([]r3.Vector, 0, pc.Size())
	pc.Iterate(func(p r3.Vector, _ Data) bool {
		out = append(out, p)
		return true
	})
	return out
}
