package geolocation

import (
	"image"
	"image/color"
	"strconv"

	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/imageedit"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Figure - a single image plot with labelled axes. The image is stretched over XLim x YLim.
// With Origin "lower" row 0 of the image is drawn at the bottom
type Figure struct {
	Image  *ColorField
	XLim   Range
	YLim   Range
	Aspect string
	Origin string
	XLabel string
	YLabel string
}

const (
	figMarginLeft   = 64
	figMarginRight  = 24
	figMarginTop    = 28
	figMarginBottom = 48
	figTickLen      = 5
	figTicks        = 5
)

var (
	figBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	figInk        = color.RGBA{A: 255}
)

// Render - draws the figure into a width x height image
func (f *Figure) Render(width int, height int) (*image.RGBA, error) {
	plotW := width - figMarginLeft - figMarginRight
	plotH := height - figMarginTop - figMarginBottom
	if plotW < 2 || plotH < 2 {
		return nil, errors.Errorf("Figure size %vx%v too small", width, height)
	}

	img, err := imageedit.RGBFloatToImage(f.Image.Rows, f.Image.Cols, f.Image.Data)
	if err != nil {
		return nil, err
	}
	if f.Origin == "lower" {
		img = flipVertical(img)
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(figBackground), image.Point{}, draw.Src)

	axes := image.Rect(figMarginLeft, figMarginTop, figMarginLeft+plotW, figMarginTop+plotH)
	scaled := imageedit.ScaleImageTo(img, plotW, plotH, draw.NearestNeighbor)
	draw.Draw(out, axes, scaled, image.Point{}, draw.Src)

	drawFrame(out, axes)

	// X ticks along the bottom, labels centred underneath
	for c, v := range grid.Linspace(f.XLim.Min, f.XLim.Max, figTicks) {
		x := axes.Min.X + int(float64(c)*float64(plotW-1)/float64(figTicks-1))
		vLine(out, x, axes.Max.Y, axes.Max.Y+figTickLen)
		label := tickLabel(v)
		drawText(out, x-textWidth(label)/2, axes.Max.Y+figTickLen+13, label)
	}

	// Y ticks up the left, Min at the bottom
	for c, v := range grid.Linspace(f.YLim.Min, f.YLim.Max, figTicks) {
		y := axes.Max.Y - 1 - int(float64(c)*float64(plotH-1)/float64(figTicks-1))
		hLine(out, axes.Min.X-figTickLen, axes.Min.X, y)
		label := tickLabel(v)
		drawText(out, axes.Min.X-figTickLen-2-textWidth(label), y+4, label)
	}

	drawText(out, axes.Min.X+(plotW-textWidth(f.XLabel))/2, height-8, f.XLabel)
	drawText(out, 4, figMarginTop-10, f.YLabel)

	return out, nil
}

// Save - renders and writes the figure, format from the file extension
func (f *Figure) Save(fs fileaccess.FileAccess, bucket string, path string, width int, height int) error {
	img, err := f.Render(width, height)
	if err != nil {
		return err
	}

	data, err := imageedit.GetImageBytesForPath(img, path)
	if err != nil {
		return errors.Wrapf(err, "Failed to encode figure %v", path)
	}

	if err := fs.WriteObject(bucket, path, data); err != nil {
		return errors.Wrapf(err, "Failed to write figure %v", path)
	}

	metrics.ImagesWritten.WithLabelValues("legend").Inc()
	return nil
}

func flipVertical(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		dst := out.Pix[(b.Dy()-1-y)*out.Stride:]
		copy(dst[:rowLen], src)
	}
	return out
}

func drawFrame(img *image.RGBA, r image.Rectangle) {
	hLine(img, r.Min.X-1, r.Max.X+1, r.Min.Y-1)
	hLine(img, r.Min.X-1, r.Max.X+1, r.Max.Y)
	vLine(img, r.Min.X-1, r.Min.Y-1, r.Max.Y+1)
	vLine(img, r.Max.X, r.Min.Y-1, r.Max.Y+1)
}

func hLine(img *image.RGBA, x0 int, x1 int, y int) {
	for x := x0; x < x1; x++ {
		img.SetRGBA(x, y, figInk)
	}
}

func vLine(img *image.RGBA, x int, y0 int, y1 int) {
	for y := y0; y < y1; y++ {
		img.SetRGBA(x, y, figInk)
	}
}

func drawText(img *image.RGBA, x int, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(figInk),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

func tickLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
