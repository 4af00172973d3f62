package mesh

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/monoscene/monoscene/camera"
	"github.com/monoscene/monoscene/depth"
)

const (
	// maxSegments caps grid resolution for performance.
	maxSegments = 800
	// sceneHeight is the scene-space height of every synthesized mesh; width
	// scales with the photo's aspect ratio.
	sceneHeight = 4.0
	// edgeMargin is the normalized border band whose triangles are always
	// culled, depth at image edges is unreliable.
	edgeMargin = 0.03
)

// Options tunes mesh synthesis. The zero value is not useful, start from
// DefaultOptions.
type Options struct {
	// DepthScale multiplies normalized depth into world-space Z.
	DepthScale float64
	// SegX and SegY override the derived segment counts when positive.
	SegX, SegY int
	// EnablePerspective scales X/Y by depth so near points expand and far
	// points contract.
	EnablePerspective bool
	// Intrinsics supplies the field of view for perspective correction.
	// When nil, FOVDegrees is used.
	Intrinsics *camera.Intrinsics
	// FOVDegrees is the fallback horizontal field of view.
	FOVDegrees float64
	// EnableStretchRemoval culls triangles spanning depth discontinuities
	// wider than StretchThreshold in world-space Z.
	EnableStretchRemoval bool
	StretchThreshold     float64
	// EnhancedNormals selects area-weighted face-normal accumulation.
	EnhancedNormals bool
	// ClampSigma bounds Z spikes at mean + ClampSigma*stddev.
	ClampSigma float64
	// TextureRef names the source photograph.
	TextureRef string
}

// DefaultOptions returns the synthesis options used by the pipeline.
func DefaultOptions() Options {
	return Options{
		DepthScale:           2.0,
		EnablePerspective:    true,
		FOVDegrees:           60,
		EnableStretchRemoval: true,
		StretchThreshold:     0.15,
		ClampSigma:           2.5,
	}
}

// Synthesize converts a cleaned depth field into a textured surface mesh.
// The vertex buffer always holds exactly (segX+1)*(segY+1) vertices; culling
// only shrinks the index buffer.
func Synthesize(dm, confidence *depth.Field, opts Options, logger golog.Logger) (*SurfaceMesh, error) {
	if dm == nil || dm.Width() == 0 || dm.Height() == 0 {
		return nil, errors.New("cannot synthesize mesh from empty depth field")
	}
	if opts.DepthScale <= 0 {
		opts.DepthScale = DefaultOptions().DepthScale
	}

	width, height := dm.Width(), dm.Height()
	segX, segY := opts.SegX, opts.SegY
	if segX <= 0 {
		segX = minInt(width, maxSegments)
	}
	if segY <= 0 {
		segY = minInt(height, maxSegments)
	}

	aspect := float64(width) / float64(height)
	sceneWidth := aspect * sceneHeight

	fov := opts.FOVDegrees * math.Pi / 180.
	if opts.Intrinsics != nil {
		fov = opts.Intrinsics.FOVRadians()
	}
	perspectiveGain := math.Tan(fov/2) * 0.5

	numVerts := (segX + 1) * (segY + 1)
	m := &SurfaceMesh{
		Positions:  make([]r3.Vector, 0, numVerts),
		UVs:        make([]mgl64.Vec2, 0, numVerts),
		SegX:       segX,
		SegY:       segY,
		TextureRef: opts.TextureRef,
		Depth:      dm,
		Confidence: confidence,
	}

	for j := 0; j <= segY; j++ {
		v := float64(j) / float64(segY)
		for i := 0; i <= segX; i++ {
			u := float64(i) / float64(segX)
			z := dm.SampleNearest(u, v) * opts.DepthScale
			x := (u - 0.5) * sceneWidth
			y := (0.5 - v) * sceneHeight
			if opts.EnablePerspective {
				scale := 1 + z*perspectiveGain
				x *= scale
				y *= scale
			}
			m.Positions = append(m.Positions, r3.Vector{X: x, Y: y, Z: z})
			m.UVs = append(m.UVs, mgl64.Vec2{u, 1 - v})
		}
	}

	m.Indices = buildIndices(m, segX, segY, opts)
	clampOutliers(m, opts.ClampSigma)
	RecomputeNormals(m, opts.EnhancedNormals)
	m.Colors = depthColors(m.Positions, opts.DepthScale)

	if logger != nil {
		logger.Debugw("synthesized mesh",
			"vertices", m.VertexCount(),
			"triangles", m.TriangleCount(),
			"culled", segX*segY*2-m.TriangleCount(),
		)
	}
	return m, nil
}

// buildIndices emits two triangles per grid quad, skipping triangles culled
// by the edge margin or the stretch threshold.
func buildIndices(m *SurfaceMesh, segX, segY int, opts Options) []uint32 {
	indices := make([]uint32, 0, segX*segY*6)

	inMargin := func(idx uint32) bool {
		uv := m.UVs[idx]
		u, v := uv.X(), 1-uv.Y()
		return u < edgeMargin || u > 1-edgeMargin || v < edgeMargin || v > 1-edgeMargin
	}
	overstretched := func(a, b, c uint32) bool {
		if !opts.EnableStretchRemoval {
			return false
		}
		za, zb, zc := m.Positions[a].Z, m.Positions[b].Z, m.Positions[c].Z
		t := opts.StretchThreshold
		return math.Abs(za-zb) > t || math.Abs(zb-zc) > t || math.Abs(za-zc) > t
	}
	keep := func(a, b, c uint32) {
		if inMargin(a) || inMargin(b) || inMargin(c) {
			return
		}
		if overstretched(a, b, c) {
			return
		}
		indices = append(indices, a, b, c)
	}

	stride := uint32(segX + 1)
	for j := 0; j < segY; j++ {
		for i := 0; i < segX; i++ {
			topLeft := uint32(j)*stride + uint32(i)
			topRight := topLeft + 1
			bottomLeft := topLeft + stride
			bottomRight := bottomLeft + 1
			keep(topLeft, bottomLeft, topRight)
			keep(topRight, bottomLeft, bottomRight)
		}
	}
	return indices
}

// clampOutliers bounds Z spikes at mean + sigma*stddev of the positive Z
// values. Clamping preserves connectivity where deletion would not.
func clampOutliers(m *SurfaceMesh, sigma float64) {
	if sigma <= 0 {
		return
	}
	zs := make([]float64, 0, len(m.Positions))
	for _, p := range m.Positions {
		if p.Z > 0 {
			zs = append(zs, p.Z)
		}
	}
	if len(zs) < 2 {
		return
	}
	mean, sd := stat.MeanStdDev(zs, nil)
	limit := mean + sigma*sd
	for i := range m.Positions {
		if m.Positions[i].Z > limit {
			m.Positions[i].Z = limit
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
