package mesh

const (
	// Taubin factors: lambda shrinks toward the neighbor average, mu pushes
	// back out to counteract volume loss. |mu| > lambda.
	taubinLambda = 0.5
	taubinMu     = -0.53
)

// Smooth applies Taubin smoothing to the mesh's Z values in place, then
// recomputes normals. X/Y, and thus the texture mapping, are untouched.
// Vertices isolated by culling keep their Z.
func Smooth(m *SurfaceMesh, iterations int) {
	if iterations <= 0 || len(m.Indices) == 0 {
		return
	}

	adjacency := buildAdjacency(m)
	scratch := make([]float64, len(m.Positions))
	for it := 0; it < iterations; it++ {
		smoothPass(m, adjacency, taubinLambda, scratch)
		smoothPass(m, adjacency, taubinMu, scratch)
	}
	RecomputeNormals(m, false)
}

// buildAdjacency collects each vertex's neighbors from the (possibly culled)
// index buffer.
func buildAdjacency(m *SurfaceMesh) [][]uint32 {
	seen := make([]map[uint32]struct{}, len(m.Positions))
	link := func(a, b uint32) {
		if seen[a] == nil {
			seen[a] = map[uint32]struct{}{}
		}
		seen[a][b] = struct{}{}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		link(a, b)
		link(b, a)
		link(b, c)
		link(c, b)
		link(a, c)
		link(c, a)
	}

	adjacency := make([][]uint32, len(m.Positions))
	for i, s := range seen {
		if len(s) == 0 {
			continue
		}
		neighbors := make([]uint32, 0, len(s))
		for n := range s {
			neighbors = append(neighbors, n)
		}
		adjacency[i] = neighbors
	}
	return adjacency
}

// smoothPass moves each connected vertex's Z toward (or away from, for
// negative factors) its neighbor average. All reads happen before any write.
func smoothPass(m *SurfaceMesh, adjacency [][]uint32, factor float64, scratch []float64) {
	for i := range m.Positions {
		neighbors := adjacency[i]
		if len(neighbors) == 0 {
			scratch[i] = m.Positions[i].Z
			continue
		}
		sum := 0.
		for _, n := range neighbors {
			sum += m.Positions[n].Z
		}
		avg := sum / float64(len(neighbors))
		z := m.Positions[i].Z
		scratch[i] = z + factor*(avg-z)
	}
	for i := range m.Positions {
		m.Positions[i].Z = scratch[i]
	}
}
