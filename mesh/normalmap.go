package mesh

import (
	"image"
	"image/color"
	"math"

	"github.com/monoscene/monoscene/depth"
)

// NormalMap derives a tangent-space normal map from a depth field using the
// Scharr gradient, independent of any mesh topology. Strength scales how
// much depth relief tilts the normals; zero or negative means 1.
func NormalMap(dm *depth.Field, strength float64) *image.NRGBA {
	if strength <= 0 {
		strength = 1
	}
	vf := depth.ScharrGradient(dm)

	img := image.NewNRGBA(image.Rect(0, 0, dm.Width(), dm.Height()))
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			g := vf.GetXY(x, y)
			gx := g.Magnitude() * math.Cos(g.Direction()) * strength
			gy := g.Magnitude() * math.Sin(g.Direction()) * strength

			// surface normal of the height field z = depth(x, y)
			nx, ny, nz := -gx, -gy, 1.0
			length := math.Sqrt(nx*nx + ny*ny + nz*nz)
			nx /= length
			ny /= length
			nz /= length

			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((nx*0.5 + 0.5) * 255),
				G: uint8((ny*0.5 + 0.5) * 255),
				B: uint8((nz*0.5 + 0.5) * 255),
				A: 255,
			})
		}
	}
	return img
}
