package mesh

import (
	"github.com/golang/geo/r3"
)

// RecomputeNormals rebuilds per-vertex normals from the current positions
// and index buffer. With areaWeighted set, each face contributes its raw
// cross product so larger faces count more; otherwise every face contributes
// a unit normal. Vertices not referenced by any triangle get a +Z normal.
func RecomputeNormals(m *SurfaceMesh, areaWeighted bool) {
	normals := make([]r3.Vector, len(m.Positions))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		ia, ib, ic := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		a, b, c := m.Positions[ia], m.Positions[ib], m.Positions[ic]
		face := b.Sub(a).Cross(c.Sub(a))
		if !areaWeighted {
			n := face.Norm()
			if n > 0 {
				face = face.Mul(1. / n)
			}
		}
		normals[ia] = normals[ia].Add(face)
		normals[ib] = normals[ib].Add(face)
		normals[ic] = normals[ic].Add(face)
	}

	for i, n := range normals {
		length := n.Norm()
		if length == 0 {
			normals[i] = r3.Vector{Z: 1}
			continue
		}
		normals[i] = n.Mul(1. / length)
	}
	m.Normals = normals
}
