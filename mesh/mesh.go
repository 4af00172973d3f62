// Package mesh implements surface reconstruction from a cleaned depth field:
// grid mesh synthesis with perspective correction and artifact culling,
// Taubin smoothing, depth-keyed vertex coloring and normal-map generation.
package mesh

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/monoscene/monoscene/depth"
	"github.com/monoscene/monoscene/pointcloud"
)

// SurfaceMesh is the reconstructed geometry for one photograph: an indexed
// triangle grid plus the depth data it was built from.
//
// Mutation contract: the smoother may rewrite Z and Normals in place, the
// aligner clones before moving Positions, every other consumer is read-only.
type SurfaceMesh struct {
	// Positions holds one vertex per grid point, (SegX+1)*(SegY+1) of them.
	// Culling never shrinks this buffer, only Indices.
	Positions []r3.Vector
	Normals   []r3.Vector
	Colors    []color.NRGBA
	// UVs map each vertex into the source texture.
	UVs []mgl64.Vec2
	// Indices is the (possibly culled) triangle list.
	Indices []uint32

	SegX, SegY int

	// TextureRef names the source photograph this mesh was built from.
	TextureRef string

	// Depth and Confidence are the fields the mesh was synthesized from,
	// kept for alignment and debugging. Read-only here.
	Depth      *depth.Field
	Confidence *depth.Field
}

// VertexCount returns the number of vertices.
func (m *SurfaceMesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles in the index buffer.
func (m *SurfaceMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Clone deep-copies the geometry buffers. The depth fields and texture
// reference are shared, they are read-only downstream.
func (m *SurfaceMesh) Clone() *SurfaceMesh {
	out := &SurfaceMesh{
		Positions:  make([]r3.Vector, len(m.Positions)),
		Normals:    make([]r3.Vector, len(m.Normals)),
		Colors:     make([]color.NRGBA, len(m.Colors)),
		UVs:        make([]mgl64.Vec2, len(m.UVs)),
		Indices:    make([]uint32, len(m.Indices)),
		SegX:       m.SegX,
		SegY:       m.SegY,
		TextureRef: m.TextureRef,
		Depth:      m.Depth,
		Confidence: m.Confidence,
	}
	copy(out.Positions, m.Positions)
	copy(out.Normals, m.Normals)
	copy(out.Colors, m.Colors)
	copy(out.UVs, m.UVs)
	copy(out.Indices, m.Indices)
	return out
}

// Translate moves every vertex by t, in place.
func (m *SurfaceMesh) Translate(t r3.Vector) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(t)
	}
}

// ApplyTransform moves every vertex by the given rigid transform, in place.
func (m *SurfaceMesh) ApplyTransform(tf mgl64.Mat4) {
	for i, p := range m.Positions {
		v := mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, p.Z}, tf)
		m.Positions[i] = r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
	}
}

// fallbackColor stands in for meshes synthesized without vertex colors.
var fallbackColor = color.NRGBA{R: 127, G: 127, B: 127, A: 255}

// ToPointCloud flattens the mesh's vertices into a point cloud. Vertices
// without a color entry get a neutral gray.
func (m *SurfaceMesh) ToPointCloud() pointcloud.PointCloud {
	pc := pointcloud.NewWithPrealloc(len(m.Positions))
	for i, p := range m.Positions {
		c := fallbackColor
		if i < len(m.Colors) {
			c = m.Colors[i]
		}
		//nolint:errcheck
		pc.Set(p, pointcloud.NewColoredData(c))
	}
	return pc
}
