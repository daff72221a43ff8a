// Package geolocation compares two sources of geodetic coordinates for the same pixels and
// turns the displacement between them into an image: hue for the direction, brightness for
// the distance. It also builds the 2-D legend needed to read such images.
package geolocation

import (
	"math"
	"time"

	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/pkg/errors"
	"github.com/tidwall/geodesic"
)

var (
	ErrShapeMismatch     = errors.New("coordinate grids differ in shape")
	ErrInvalidEllipsoid  = errors.New("invalid ellipsoid")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Ellipsoid - reference ellipsoid for geodesic calculations
type Ellipsoid struct {
	SemiMajorAxis float64
	Flattening    float64
}

var WGS84 = Ellipsoid{SemiMajorAxis: 6378137, Flattening: 1 / 298.257223563}

func (e Ellipsoid) validate() error {
	if !(e.SemiMajorAxis > 0) || math.IsInf(e.SemiMajorAxis, 0) {
		return errors.Wrapf(ErrInvalidEllipsoid, "semi-major axis %v", e.SemiMajorAxis)
	}
	if math.IsNaN(e.Flattening) || math.IsInf(e.Flattening, 0) || e.Flattening >= 1 {
		return errors.Wrapf(ErrInvalidEllipsoid, "flattening %v", e.Flattening)
	}
	return nil
}

// HeadingDistance - per pixel direction in degrees, in (-180, 180] clockwise from north, and
// distance in metres. NaN in both means no data
type HeadingDistance struct {
	Heading  *grid.Grid
	Distance *grid.Grid
}

// Comparator - heading and distance between corresponding points of two coordinate grids
type Comparator struct {
	// If set, pixels with a NaN/Inf coordinate get NaN heading and distance instead of failing
	SkipNonFinite bool

	// Parallel blocks in ComputeBlocks, NumCPU if <= 0
	Workers int

	Log logger.ILogger

	geod *geodesic.Ellipsoid
}

// NewComparator - comparator on the given ellipsoid, usually WGS84
func NewComparator(ellipsoid Ellipsoid, log logger.ILogger) (*Comparator, error) {
	if err := ellipsoid.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = &logger.NullLogger{}
	}

	return &Comparator{
		Log:  log,
		geod: geodesic.NewEllipsoid(ellipsoid.SemiMajorAxis, ellipsoid.Flattening),
	}, nil
}

// Compute - heading from point 1 towards point 2 and the distance between them, for every pixel
func (c *Comparator) Compute(lat1 *grid.Grid, lon1 *grid.Grid, lat2 *grid.Grid, lon2 *grid.Grid) (*HeadingDistance, error) {
	if err := checkShapes(lat1, lon1, lat2, lon2); err != nil {
		return nil, err
	}

	result := newHeadingDistance(lat1.Rows, lat1.Cols)
	if err := c.computeBlock(grid.Whole(lat1.Rows, lat1.Cols), lat1, lon1, lat2, lon2, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ComputeBlocks - same result as Compute, evaluated one block at a time in parallel. Each
// block reads and writes only its own region, the blocks must not overlap
func (c *Comparator) ComputeBlocks(lat1 *grid.Grid, lon1 *grid.Grid, lat2 *grid.Grid, lon2 *grid.Grid, blocks []grid.Block) (*HeadingDistance, error) {
	if err := checkShapes(lat1, lon1, lat2, lon2); err != nil {
		return nil, err
	}

	for _, b := range blocks {
		if b.Row0 < 0 || b.Col0 < 0 || b.Rows < 0 || b.Cols < 0 || b.Row0+b.Rows > lat1.Rows || b.Col0+b.Cols > lat1.Cols {
			return nil, errors.Wrapf(ErrShapeMismatch, "block %v outside grid %v", b, lat1.Shape())
		}
	}

	result := newHeadingDistance(lat1.Rows, lat1.Cols)
	err := grid.MapBlocks(blocks, c.Workers, func(b grid.Block) error {
		start := time.Now()
		err := c.computeBlock(b, lat1, lon1, lat2, lon2, result)
		metrics.BlockDuration.WithLabelValues("geodesic").Observe(time.Since(start).Seconds())
		return err
	})
	if err != nil {
		return nil, err
	}

	c.Log.Debugf("Computed heading/distance for %v pixels in %v blocks", lat1.Rows*lat1.Cols, len(blocks))
	return result, nil
}

func (c *Comparator) computeBlock(b grid.Block, lat1 *grid.Grid, lon1 *grid.Grid, lat2 *grid.Grid, lon2 *grid.Grid, out *HeadingDistance) error {
	compared := 0
	for r := b.Row0; r < b.Row0+b.Rows; r++ {
		for col := b.Col0; col < b.Col0+b.Cols; col++ {
			la1, lo1 := lat1.At(r, col), lon1.At(r, col)
			la2, lo2 := lat2.At(r, col), lon2.At(r, col)

			if !validCoord(la1, lo1) || !validCoord(la2, lo2) {
				if c.SkipNonFinite && !hasFiniteInvalid(la1, lo1, la2, lo2) {
					out.Heading.Set(r, col, math.NaN())
					out.Distance.Set(r, col, math.NaN())
					continue
				}
				return errors.Wrapf(ErrInvalidCoordinate, "pixel (%v, %v): lat1=%v lon1=%v lat2=%v lon2=%v", r, col, la1, lo1, la2, lo2)
			}

			var dist, azi1 float64
			c.geod.Inverse(la1, lo1, la2, lo2, &dist, &azi1, nil)
			if azi1 == -180 {
				azi1 = 180
			} else if azi1 == 0 {
				// -0 for due north
				azi1 = 0
			}

			out.Heading.Set(r, col, azi1)
			out.Distance.Set(r, col, dist)
			compared++
		}
	}

	metrics.PixelsCompared.Add(float64(compared))
	return nil
}

func validCoord(lat float64, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && !math.IsNaN(lon) && !math.IsInf(lon, 0) && math.Abs(lat) <= 90
}

// hasFiniteInvalid - a finite latitude beyond the poles is bad input, not missing data
func hasFiniteInvalid(lats ...float64) bool {
	for c := 0; c < len(lats); c += 2 {
		if !math.IsNaN(lats[c]) && !math.IsInf(lats[c], 0) && math.Abs(lats[c]) > 90 {
			return true
		}
	}
	return false
}

func checkShapes(lat1 *grid.Grid, lon1 *grid.Grid, lat2 *grid.Grid, lon2 *grid.Grid) error {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return errors.Wrap(ErrShapeMismatch, "missing grid")
	}
	if !lat1.SameShape(lon1) || !lat1.SameShape(lat2) || !lat1.SameShape(lon2) {
		return errors.Wrapf(ErrShapeMismatch, "lat1 %v, lon1 %v, lat2 %v, lon2 %v", lat1.Shape(), lon1.Shape(), lat2.Shape(), lon2.Shape())
	}
	return nil
}

func newHeadingDistance(rows int, cols int) *HeadingDistance {
	return &HeadingDistance{Heading: grid.New(rows, cols), Distance: grid.New(rows, cols)}
}
