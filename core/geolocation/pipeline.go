package geolocation

import (
	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/imageedit"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/gerritholl/fcitools/core/scene"
	"github.com/pkg/errors"
)

// PixelBounds - 1-based, half-open pixel ranges [XStart, XEnd) x [YStart, YEnd). Zero fields
// mean the full extent of the area
type PixelBounds struct {
	XStart int
	XEnd   int
	YStart int
	YEnd   int
}

// block - the 0-based block of an area of the given size these bounds select
func (p PixelBounds) block(width int, height int) (grid.Block, error) {
	b := p
	if b.XStart == 0 {
		b.XStart = 1
	}
	if b.YStart == 0 {
		b.YStart = 1
	}
	if b.XEnd == 0 {
		b.XEnd = width + 1
	}
	if b.YEnd == 0 {
		b.YEnd = height + 1
	}

	if b.XStart < 1 || b.YStart < 1 || b.XEnd > width+1 || b.YEnd > height+1 || b.XEnd <= b.XStart || b.YEnd <= b.YStart {
		return grid.Block{}, errors.Errorf("Invalid pixel bounds x=[%v, %v) y=[%v, %v) for %vx%v pixels", b.XStart, b.XEnd, b.YStart, b.YEnd, width, height)
	}
	return grid.Block{Row0: b.YStart - 1, Col0: b.XStart - 1, Rows: b.YEnd - b.YStart, Cols: b.XEnd - b.XStart}, nil
}

// Comparison - compares the geolocation of a dataset's area with a geolocation model
type Comparison struct {
	Model      GeolocationModel
	Comparator *Comparator
	Scale      float64
	ChunkSize  int
	Log        logger.ILogger
}

const defaultChunkSize = 128

// NewComparison - comparison on WGS84 with the default scale and chunk size. Pixels either
// source can't geolocate come out black
func NewComparison(model GeolocationModel, log logger.ILogger) (*Comparison, error) {
	if model == nil {
		return nil, errors.New("Comparison needs a geolocation model")
	}
	if log == nil {
		log = &logger.NullLogger{}
	}

	comparator, err := NewComparator(WGS84, log)
	if err != nil {
		return nil, err
	}
	comparator.SkipNonFinite = true

	return &Comparison{
		Model:      model,
		Comparator: comparator,
		Scale:      DefaultScale,
		ChunkSize:  defaultChunkSize,
		Log:        log,
	}, nil
}

// Compare - colour field for the bounded pixels of a loaded dataset. Hue shows the direction
// from the model's location of each pixel to the area's, brightness the distance
func (c *Comparison) Compare(sc scene.Scene, dataset string, bounds PixelBounds) (*ColorField, error) {
	ds, err := sc.Dataset(dataset)
	if err != nil {
		return nil, err
	}
	a := ds.Area

	b, err := bounds.block(a.Width, a.Height)
	if err != nil {
		return nil, errors.Wrapf(err, "Area %v", a.AreaID)
	}

	areaLons, areaLats, err := a.LonLats(b)
	if err != nil {
		return nil, err
	}

	// 1-based pixel coordinates, as the model expects
	cols := grid.New(b.Rows, b.Cols)
	rows := grid.New(b.Rows, b.Cols)
	for r := 0; r < b.Rows; r++ {
		for col := 0; col < b.Cols; col++ {
			cols.Set(r, col, float64(b.Col0+col+1))
			rows.Set(r, col, float64(b.Row0+r+1))
		}
	}

	resolution := a.Resolution()
	params, err := c.Model.Parameters(resolution)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get geolocation model parameters for %v", dataset)
	}

	modelLats, modelLons, err := c.Model.PixCoordToGeoCoord(cols, rows, params)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to geolocate %v pixels of %v", b.Rows*b.Cols, dataset)
	}

	chunk := c.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}

	hd, err := c.Comparator.ComputeBlocks(modelLats, modelLons, areaLats, areaLons, grid.Chunks(b.Rows, b.Cols, chunk))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to compare geolocation of %v", dataset)
	}

	c.Log.Infof("Compared geolocation of %v on %v: %vx%v pixels at %v m", dataset, a.AreaID, b.Cols, b.Rows, resolution)
	return Encode(hd, c.Scale), nil
}

// SaveRGB - writes a colour field as an 8-bit image, format chosen by the file extension
func SaveRGB(fs fileaccess.FileAccess, bucket string, path string, field *ColorField) error {
	img, err := imageedit.RGBFloatToImage(field.Rows, field.Cols, field.Data)
	if err != nil {
		return err
	}

	data, err := imageedit.GetImageBytesForPath(img, path)
	if err != nil {
		return err
	}

	if err := fs.WriteObject(bucket, path, data); err != nil {
		return errors.Wrapf(err, "Failed to write %v", path)
	}

	metrics.ImagesWritten.WithLabelValues("geolocation").Inc()
	return nil
}
