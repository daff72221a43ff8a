// Package area describes the regular pixel grids data are shown on, in the style of
// pyresample area definitions: a projection, a shape and an extent in projection units.
package area

import (
	"fmt"
	"math"

	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/projection"
	"github.com/pkg/errors"
)

// Native - area name meaning "don't resample, keep the data on its own grid"
const Native = "native"

// Extent - corners of the outer edges of the outermost pixels, in projection units. The
// "lower left" corner is the one at the first column and last row, which for geos areas of
// south-up or east-left scanning data is numerically greater than the "upper right"
type Extent struct {
	LowerLeftX  float64
	LowerLeftY  float64
	UpperRightX float64
	UpperRightY float64
}

// AreaDefinition - a regular grid of Width x Height pixels covering Extent in a projection.
// Row 0 is the top (largest y)
type AreaDefinition struct {
	AreaID      string
	Description string
	ProjID      string
	ProjParams  map[string]string
	Width       int
	Height      int
	Extent      Extent

	proj projection.Projection
}

// NewAreaDefinition - validates the shape and extent and sets up the projection
func NewAreaDefinition(id string, description string, projParams map[string]string, width int, height int, extent Extent) (*AreaDefinition, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Area %v has invalid shape %vx%v", id, width, height)
	}
	dx, dy := extent.UpperRightX-extent.LowerLeftX, extent.UpperRightY-extent.LowerLeftY
	if dx == 0 || dy == 0 || math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return nil, fmt.Errorf("Area %v has invalid extent %v", id, extent)
	}

	proj, err := projection.FromParams(projParams)
	if err != nil {
		return nil, errors.Wrapf(err, "Area %v", id)
	}

	return &AreaDefinition{
		AreaID:      id,
		Description: description,
		ProjID:      id,
		ProjParams:  projParams,
		Width:       width,
		Height:      height,
		Extent:      extent,
		proj:        proj,
	}, nil
}

// Projection - the projection of this area. Areas built without NewAreaDefinition get
// theirs rebuilt from ProjParams each call
func (a *AreaDefinition) Projection() (projection.Projection, error) {
	if a.proj != nil {
		return a.proj, nil
	}
	return projection.FromParams(a.ProjParams)
}

// PixelSize - pixel width and height in projection units, negative along a flipped axis
func (a *AreaDefinition) PixelSize() (float64, float64) {
	return (a.Extent.UpperRightX - a.Extent.LowerLeftX) / float64(a.Width),
		(a.Extent.UpperRightY - a.Extent.LowerLeftY) / float64(a.Height)
}

// Resolution - the x pixel size truncated to whole projection units (metres for geos)
func (a *AreaDefinition) Resolution() int {
	psx, _ := a.PixelSize()
	res := int(psx)
	if res < 0 {
		res = -res
	}
	return res
}

// PixelCentre - projection coordinates of the centre of a 0-based pixel
func (a *AreaDefinition) PixelCentre(col float64, row float64) (float64, float64) {
	psx, psy := a.PixelSize()
	return a.Extent.LowerLeftX + (col+0.5)*psx, a.Extent.UpperRightY - (row+0.5)*psy
}

// LonLats - longitude and latitude grids of the pixel centres in a block of the area.
// Pixels the projection can't invert (off the earth disk) are NaN
func (a *AreaDefinition) LonLats(b grid.Block) (*grid.Grid, *grid.Grid, error) {
	if b.Row0 < 0 || b.Col0 < 0 || b.Row0+b.Rows > a.Height || b.Col0+b.Cols > a.Width {
		return nil, nil, fmt.Errorf("Block %v outside area %v of shape %vx%v", b, a.AreaID, a.Width, a.Height)
	}

	proj, err := a.Projection()
	if err != nil {
		return nil, nil, err
	}

	lons := grid.New(b.Rows, b.Cols)
	lats := grid.New(b.Rows, b.Cols)
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			x, y := a.PixelCentre(float64(b.Col0+c), float64(b.Row0+r))
			lon, lat, ok := proj.Inverse(x, y)
			if !ok {
				lon, lat = math.NaN(), math.NaN()
			}
			lons.Set(r, c, lon)
			lats.Set(r, c, lat)
		}
	}
	return lons, lats, nil
}

// PixelCoords - fractional 0-based column and row of lon/lat, pixel centres falling on
// whole numbers plus one half. ok is false if the point can't be projected
func (a *AreaDefinition) PixelCoords(lon float64, lat float64) (col float64, row float64, ok bool) {
	proj, err := a.Projection()
	if err != nil {
		return 0, 0, false
	}

	x, y, ok := proj.Forward(lon, lat)
	if !ok {
		return 0, 0, false
	}

	psx, psy := a.PixelSize()
	return (x - a.Extent.LowerLeftX) / psx, (a.Extent.UpperRightY - y) / psy, true
}

// PixelFor - 0-based column and row of the pixel containing lon/lat. ok is false if the point
// can't be projected or falls outside the area
func (a *AreaDefinition) PixelFor(lon float64, lat float64) (col int, row int, ok bool) {
	fc, fr, ok := a.PixelCoords(lon, lat)
	if !ok {
		return 0, 0, false
	}

	fc, fr = math.Floor(fc), math.Floor(fr)
	if fc < 0 || fr < 0 || fc >= float64(a.Width) || fr >= float64(a.Height) {
		return 0, 0, false
	}
	return int(fc), int(fr), true
}

// Equal - same projection parameters, shape and extent
func (a *AreaDefinition) Equal(other *AreaDefinition) bool {
	if other == nil || a.Width != other.Width || a.Height != other.Height || a.Extent != other.Extent {
		return false
	}
	return projection.FormatParams(a.ProjParams) == projection.FormatParams(other.ProjParams)
}

func (a *AreaDefinition) String() string {
	return fmt.Sprintf("Area %v (%v): %vx%v %v", a.AreaID, a.Description, a.Width, a.Height, projection.FormatParams(a.ProjParams))
}
