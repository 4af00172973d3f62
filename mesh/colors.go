package mesh

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
)

// Solid-mode ramp endpoints: warm for near geometry, cool for far.
var (
	nearColor = colorful.Color{R: 0.93, G: 0.47, B: 0.26}
	farColor  = colorful.Color{R: 0.15, G: 0.25, B: 0.55}
)

// depthColors assigns each vertex a color interpolated in Lab space between
// the near and far ramp endpoints, keyed by normalized depth. A deterministic
// function of Z, not of the photo.
func depthColors(positions []r3.Vector, depthScale float64) []color.NRGBA {
	out := make([]color.NRGBA, len(positions))
	for i, p := range positions {
		t := p.Z / depthScale
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		r, g, b := nearColor.BlendLab(farColor, t).Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}
