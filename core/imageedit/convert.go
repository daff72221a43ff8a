package imageedit

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gerritholl/fcitools/core/grid"
	"golang.org/x/image/draw"
)

// FloatToByte - v in [0, 1] to 0-255, truncating like a uint8 cast of 255*v. Out of range
// values are clamped, NaN is 0
func FloatToByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(255 * v)
}

// RGBFloatToImage - image from rows x cols RGB triplets in [0, 1], row 0 at the top
func RGBFloatToImage(rows int, cols int, data []float64) (*image.RGBA, error) {
	if len(data) != rows*cols*3 {
		return nil, fmt.Errorf("RGB data has %v values, expected %v for %vx%v", len(data), rows*cols*3, cols, rows)
	}

	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := (y*cols + x) * 3
			img.SetRGBA(x, y, color.RGBA{R: FloatToByte(data[i]), G: FloatToByte(data[i+1]), B: FloatToByte(data[i+2]), A: 255})
		}
	}
	return img, nil
}

// GreyFromGrid - linear stretch of [min, max] to 0-255 grey. Values outside are clamped,
// NaN is black. If min == max there is nothing to stretch and values are taken as already
// being in [0, 1]
func GreyFromGrid(g *grid.Grid, min float64, max float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			img.SetGray(x, y, color.Gray{Y: stretch(g.At(y, x), min, max)})
		}
	}
	return img
}

// GreyAlphaFromGrid - as GreyFromGrid, but NaN pixels are fully transparent
func GreyAlphaFromGrid(g *grid.Grid, min float64, max float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Cols, g.Rows))
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			v := g.At(y, x)
			if math.IsNaN(v) {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			grey := stretch(v, min, max)
			img.SetNRGBA(x, y, color.NRGBA{R: grey, G: grey, B: grey, A: 255})
		}
	}
	return img
}

func stretch(v float64, min float64, max float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	span := max - min
	if !(span > 0) {
		return FloatToByte(v)
	}
	return FloatToByte((v - min) / span)
}

// MarkPixels - copy of img with colour drawn wherever mask is not transparent. mask must be
// the same size as img
func MarkPixels(img image.Image, mask image.Image, markColour color.Color) image.Image {
	bounds := img.Bounds()

	outImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(outImage, outImage.Bounds(), img, bounds.Min, draw.Src)
	draw.DrawMask(outImage, outImage.Bounds(), image.NewUniform(markColour), image.Point{}, mask, mask.Bounds().Min, draw.Over)

	return outImage
}
