package depth

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ToPrettyPicture renders the field as a false-color image for debugging,
// sweeping hue from orange (near) to blue (far).
func (f *Field) ToPrettyPicture() image.Image {
	min, max := f.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width(), f.Height()))
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			ratio := (f.GetXY(x, y) - min) / span
			hue := 30 + 200.*ratio
			r, g, b := colorful.Hsv(hue, 1.0, 1.0).RGB255()
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return img
}
