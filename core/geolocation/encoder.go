package geolocation

import (
	"math"

	"github.com/gerritholl/fcitools/core/grid"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultScale - brightness saturates at 100 m
const DefaultScale = 0.01

// ColorField - rows x cols RGB triplets in [0, 1], row-major
type ColorField struct {
	Rows int
	Cols int
	Data []float64
}

func NewColorField(rows int, cols int) *ColorField {
	return &ColorField{Rows: rows, Cols: cols, Data: make([]float64, rows*cols*3)}
}

func (f *ColorField) At(row int, col int) (float64, float64, float64) {
	i := (row*f.Cols + col) * 3
	return f.Data[i], f.Data[i+1], f.Data[i+2]
}

func (f *ColorField) Set(row int, col int, r float64, g float64, b float64) {
	i := (row*f.Cols + col) * 3
	f.Data[i] = r
	f.Data[i+1] = g
	f.Data[i+2] = b
}

// EncodePixel - heading selects the hue, (heading + 180) / 360 of the way round the colour
// circle, and scale * distance the brightness, saturating at 1. NaN in either is black
func EncodePixel(heading float64, distance float64, scale float64) (float64, float64, float64) {
	if math.IsNaN(heading) || math.IsNaN(distance) || math.IsInf(heading, 0) {
		return 0, 0, 0
	}

	value := math.Min(scale*distance, 1)
	if !(value > 0) {
		return 0, 0, 0
	}

	// Hue in degrees, [0, 360)
	hue := math.Mod(heading+180, 360)
	if hue < 0 {
		hue += 360
	}

	c := colorful.Hsv(hue, 1, value)
	return c.R, c.G, c.B
}

// Encode - EncodePixel applied to every pixel
func Encode(hd *HeadingDistance, scale float64) *ColorField {
	return encodeGrids(hd.Heading, hd.Distance, scale)
}

func encodeGrids(heading *grid.Grid, distance *grid.Grid, scale float64) *ColorField {
	result := NewColorField(heading.Rows, heading.Cols)
	for r := 0; r < heading.Rows; r++ {
		for c := 0; c < heading.Cols; c++ {
			red, green, blue := EncodePixel(heading.At(r, c), distance.At(r, c), scale)
			result.Set(r, c, red, green, blue)
		}
	}
	return result
}
