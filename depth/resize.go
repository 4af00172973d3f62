package depth

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// Resample brings the field to the target resolution. Smaller targets use
// plain bilinear downsampling. Larger targets use joint bilateral upsampling
// guided by the full-resolution color image so depth edges snap to color
// edges; without a guide it falls back to bilinear. Equal dimensions return
// the field untouched.
func Resample(f *Field, targetWidth, targetHeight int, guide image.Image) *Field {
	if targetWidth == f.Width() && targetHeight == f.Height() {
		return f
	}
	if targetWidth < f.Width() || targetHeight < f.Height() || guide == nil {
		return resizeBilinear(f, targetWidth, targetHeight)
	}
	return jointBilateralUpsample(f, targetWidth, targetHeight, guide)
}

func resizeBilinear(f *Field, targetWidth, targetHeight int) *Field {
	out := NewEmptyField(targetWidth, targetHeight)
	for y := 0; y < targetHeight; y++ {
		v := unitCoord(y, targetHeight)
		for x := 0; x < targetWidth; x++ {
			u := unitCoord(x, targetWidth)
			out.Set(x, y, f.SampleBilinear(u, v))
		}
	}
	return out
}

// unitCoord maps index i on an n-sample axis into [0,1]. A one-sample axis
// has no extent and maps to 0.
func unitCoord(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// Joint bilateral upsampling parameters. Spatial support is small because
// the guide operates at full resolution.
const (
	jbuRadius       = 2
	jbuSpatialSigma = 1.5
	jbuColorSigma   = 30.0
)

// jointBilateralUpsample produces a high resolution depth field whose edges
// follow the guide image's color edges. For each target pixel the low
// resolution depth neighborhood is weighed by a spatial gaussian and a
// gaussian over the color distance between the target pixel and each
// neighbor's corresponding guide pixel.
func jointBilateralUpsample(f *Field, targetWidth, targetHeight int, guide image.Image) *Field {
	if guide.Bounds().Dx() != targetWidth || guide.Bounds().Dy() != targetHeight {
		guide = resize.Resize(uint(targetWidth), uint(targetHeight), guide, resize.Bilinear)
	}
	spatialFilter := GaussianFunction1D(jbuSpatialSigma)
	colorFilter := GaussianFunction1D(jbuColorSigma)
	offsets := makeRangeArray(1 + 2*jbuRadius)
	minX, minY := guide.Bounds().Min.X, guide.Bounds().Min.Y

	out := NewEmptyField(targetWidth, targetHeight)
	for y := 0; y < targetHeight; y++ {
		for x := 0; x < targetWidth; x++ {
			// position in low resolution space
			lx := unitCoord(x, targetWidth) * float64(f.Width()-1)
			ly := unitCoord(y, targetHeight) * float64(f.Height()-1)
			cx, cy := int(lx+0.5), int(ly+0.5)

			pr, pg, pb := rgbAt(guide, minX+x, minY+y)

			newDepth := 0.0
			totalWeight := 0.0
			for _, dx := range offsets {
				for _, dy := range offsets {
					if !f.In(cx+dx, cy+dy) {
						continue
					}
					// neighbor's position in guide space; a one-sample
					// source axis pins the guide lookup to its only column
					// or row
					gx, gy := 0, 0
					if f.Width() > 1 {
						gx = (cx + dx) * (targetWidth - 1) / (f.Width() - 1)
					}
					if f.Height() > 1 {
						gy = (cy + dy) * (targetHeight - 1) / (f.Height() - 1)
					}
					qr, qg, qb := rgbAt(guide, minX+gx, minY+gy)

					weight := spatialFilter(float64(dx)) * spatialFilter(float64(dy))
					weight *= colorFilter(colorDistance(pr, pg, pb, qr, qg, qb))
					newDepth += f.GetXY(cx+dx, cy+dy) * weight
					totalWeight += weight
				}
			}
			if totalWeight == 0 {
				out.Set(x, y, f.SampleBilinear(
					unitCoord(x, targetWidth),
					unitCoord(y, targetHeight)))
				continue
			}
			out.Set(x, y, newDepth/totalWeight)
		}
	}
	return out
}

func rgbAt(img image.Image, x, y int) (float64, float64, float64) {
	r, g, b, _ := img.At(x, y).RGBA()
	return float64(r >> 8), float64(g >> 8), float64(b >> 8)
}

func colorDistance(r1, g1, b1, r2, g2, b2 float64) float64 {
	dr := r1 - r2
	dg := g1 - g2
	db := b1 - b2
	return math.Sqrt((dr*dr + dg*dg + db*db) / 3.)
}
