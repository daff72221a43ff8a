package scene

import (
	"image"
	"image/color"
	"math"

	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/imageedit"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/pkg/errors"
)

// OverlayRenderer - draws vector overlays such as coastlines for an area. The returned mask has
// the area's size and is opaque where the overlay is
type OverlayRenderer interface {
	Render(a *area.AreaDefinition, dir string) (image.Image, error)
}

// SaveOptions - optional overlay. Dir is passed to the renderer (for coastlines, where the
// shoreline database lives)
type SaveOptions struct {
	Overlay       OverlayRenderer
	OverlayDir    string
	OverlayColour color.Color
}

var ErrNoOverlayRenderer = errors.New("overlay requested but no overlay renderer configured")

// DefaultOverlayColour - red, as coastlines are usually drawn
var DefaultOverlayColour = color.RGBA{R: 255, A: 255}

// SaveDataset - writes the dataset as an 8-bit grey image, finite values stretched linearly
// over their range. NaN pixels are black, or transparent in formats with alpha. The format
// comes from the file extension
func SaveDataset(fs fileaccess.FileAccess, bucket string, path string, ds *Dataset, opts SaveOptions) error {
	if ds == nil || ds.Data == nil {
		return errors.Errorf("No data to save to %v", path)
	}

	min, max, _ := ds.Data.MinMax()

	var img image.Image
	if hasNaN(ds.Data.Data) {
		img = imageedit.GreyAlphaFromGrid(ds.Data, min, max)
	} else {
		img = imageedit.GreyFromGrid(ds.Data, min, max)
	}

	if len(opts.OverlayDir) > 0 {
		if opts.Overlay == nil {
			return errors.Wrapf(ErrNoOverlayRenderer, "saving %v", path)
		}
		mask, err := opts.Overlay.Render(ds.Area, opts.OverlayDir)
		if err != nil {
			return errors.Wrapf(err, "Failed to render overlay for %v", ds.Area.AreaID)
		}
		if mask.Bounds().Dx() != ds.Data.Cols || mask.Bounds().Dy() != ds.Data.Rows {
			return errors.Errorf("Overlay is %v, dataset %v is %v", mask.Bounds().Size(), ds.Name, ds.Data.Shape())
		}

		colour := opts.OverlayColour
		if colour == nil {
			colour = DefaultOverlayColour
		}
		img = imageedit.MarkPixels(img, mask, colour)
	}

	data, err := imageedit.GetImageBytesForPath(img, path)
	if err != nil {
		return errors.Wrapf(err, "Failed to encode %v", ds.Name)
	}

	if err := fs.WriteObject(bucket, path, data); err != nil {
		return errors.Wrapf(err, "Failed to write %v", path)
	}

	metrics.ImagesWritten.WithLabelValues("dataset").Inc()
	return nil
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
