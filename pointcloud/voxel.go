package pointcloud

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
)

// AdaptiveVoxelSize picks a voxel edge length from the input size so that
// downsampling keeps detail on small clouds and stays tractable on large
// ones.
func AdaptiveVoxelSize(numPoints int) float64 {
	switch {
	case numPoints < 100000:
		return 0.05
	case numPoints < 500000:
		return 0.07
	default:
		return 0.1
	}
}

type voxelAccum struct {
	sum      r3.Vector
	r, g, b  float64
	count    int
	hasColor bool
}

// VoxelDownsample merges all points falling in the same voxel into one point
// at their average position with their average color. Voxel size zero picks
// an adaptive size from the cloud size.
func VoxelDownsample(pc PointCloud, voxelSize float64) PointCloud {
	if voxelSize <= 0 {
		voxelSize = AdaptiveVoxelSize(pc.Size())
	}

	voxels := map[gridKey]*voxelAccum{}
	pc.Iterate(func(p r3.Vector, d Data) bool {
		k := gridKey{
			x: int(math.Floor(p.X / voxelSize)),
			y: int(math.Floor(p.Y / voxelSize)),
			z: int(math.Floor(p.Z / voxelSize)),
		}
		acc, ok := voxels[k]
		if !ok {
			acc = &voxelAccum{}
			voxels[k] = acc
		}
		acc.sum = acc.sum.Add(p)
		acc.count++
		if d != nil && d.HasColor() {
			r, g, b := d.RGB255()
			acc.r += float64(r)
			acc.g += float64(g)
			acc.b += float64(b)
			acc.hasColor = true
		}
		return true
	})

	out := NewWithPrealloc(len(voxels))
	for _, acc := range voxels {
		n := float64(acc.count)
		p := acc.sum.Mul(1. / n)
		var d Data
		if acc.hasColor {
			d = NewColoredData(color.NRGBA{
				R: uint8(acc.r / n),
				G: uint8(acc.g / n),
				B: uint8(acc.b / n),
				A: 255,
			})
		} else {
			d = NewBasicData()
		}
		//nolint:errcheck
		out.Set(p, d)
	}
	return out
}
