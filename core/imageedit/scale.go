package imageedit

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleImageTo - scales to exactly w x h with the given interpolator. Nearest neighbour keeps
// the colours of the source pixels unchanged
func ScaleImageTo(img image.Image, w int, h int, interp draw.Interpolator) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Rect, img, img.Bounds(), draw.Over, nil)
	return dst
}
