package geolocation

import (
	"math"
	"sort"

	"github.com/gerritholl/fcitools/core/grid"
	"github.com/pkg/errors"
)

// GridParams - sampling of the instrument pixel grid at one resolution. A pixel's scan angles
// in radians are (col - Lambda) * AzimuthGridSampling eastward and
// (row - Phi) * ElevationGridSampling northward, col and row being 1-based
type GridParams struct {
	AzimuthGridSampling   float64 `json:"azimuth_grid_sampling" yaml:"azimuth_grid_sampling" mapstructure:"azimuth_grid_sampling"`
	ElevationGridSampling float64 `json:"elevation_grid_sampling" yaml:"elevation_grid_sampling" mapstructure:"elevation_grid_sampling"`
	Lambda                float64 `json:"lambda" yaml:"lambda" mapstructure:"lambda"`
	Phi                   float64 `json:"phi" yaml:"phi" mapstructure:"phi"`
}

// ModelParameters - everything a model needs to geolocate pixels at one resolution
type ModelParameters struct {
	EquatorialRadius float64
	Flattening       float64
	SatelliteHeight  float64
	SubSatelliteLon  float64
	Resolution       int
	Grid             GridParams
}

// GeolocationModel - an independent way of geolocating instrument pixels, compared against
// the area definition of a dataset
type GeolocationModel interface {
	// Parameters - model parameters for pixels of the given resolution in metres
	Parameters(resolution int) (ModelParameters, error)
	// PixCoordToGeoCoord - latitude and longitude in degrees of the 1-based pixel coordinates,
	// NaN where the pixel doesn't see the earth
	PixCoordToGeoCoord(cols *grid.Grid, rows *grid.Grid, params ModelParameters) (*grid.Grid, *grid.Grid, error)
}

var ErrNoGridParams = errors.New("no grid parameters for resolution")

// GeosModel - geostationary scan geometry: the line of sight for each pixel's scan angles is
// intersected with the ellipsoid. Heights are above the equator
type GeosModel struct {
	EquatorialRadius float64
	Flattening       float64
	SatelliteHeight  float64
	SubSatelliteLon  float64

	// Keyed by resolution in metres
	Grids map[int]GridParams
}

// Parameters - grid parameters for exactly this resolution, or for the nearest configured
// resolution within 1%. Resolutions derived from area extents are often slightly off, the
// FCI 2 km grid comes out as 1999 m
func (m *GeosModel) Parameters(resolution int) (ModelParameters, error) {
	if !(m.EquatorialRadius > 0) || !(m.SatelliteHeight > 0) || m.Flattening < 0 || m.Flattening >= 1 {
		return ModelParameters{}, errors.Errorf("Invalid geostationary model: radius %v, flattening %v, height %v", m.EquatorialRadius, m.Flattening, m.SatelliteHeight)
	}

	gp, ok := m.Grids[resolution]
	found := resolution
	if !ok {
		best := math.Inf(1)
		for res, p := range m.Grids {
			diff := math.Abs(float64(res - resolution))
			if diff <= 0.01*float64(res) && (diff < best || (diff == best && res < found)) {
				best = diff
				found = res
				gp = p
				ok = true
			}
		}
	}
	if !ok {
		return ModelParameters{}, errors.Wrapf(ErrNoGridParams, "%v (configured: %v)", resolution, m.resolutions())
	}

	return ModelParameters{
		EquatorialRadius: m.EquatorialRadius,
		Flattening:       m.Flattening,
		SatelliteHeight:  m.SatelliteHeight,
		SubSatelliteLon:  m.SubSatelliteLon,
		Resolution:       found,
		Grid:             gp,
	}, nil
}

func (m *GeosModel) resolutions() []int {
	result := make([]int, 0, len(m.Grids))
	for res := range m.Grids {
		result = append(result, res)
	}
	sort.Ints(result)
	return result
}

func (m *GeosModel) PixCoordToGeoCoord(cols *grid.Grid, rows *grid.Grid, params ModelParameters) (*grid.Grid, *grid.Grid, error) {
	if cols == nil || rows == nil || !cols.SameShape(rows) {
		return nil, nil, errors.Wrap(ErrShapeMismatch, "pixel coordinates")
	}

	req := params.EquatorialRadius
	rpol := req * (1 - params.Flattening)
	k := (req * req) / (rpol * rpol)
	h := req + params.SatelliteHeight

	lat := grid.New(cols.Rows, cols.Cols)
	lon := grid.New(cols.Rows, cols.Cols)
	for i := range cols.Data {
		x := (cols.Data[i] - params.Grid.Lambda) * params.Grid.AzimuthGridSampling
		y := (rows.Data[i] - params.Grid.Phi) * params.Grid.ElevationGridSampling

		cosX, sinX := math.Cos(x), math.Sin(x)
		cosY, sinY := math.Cos(y), math.Sin(y)

		d := cosY*cosY + k*sinY*sinY
		sa := math.Pow(h*cosX*cosY, 2) - d*(h*h-req*req)
		if sa < 0 {
			lat.Data[i] = math.NaN()
			lon.Data[i] = math.NaN()
			continue
		}

		sn := (h*cosX*cosY - math.Sqrt(sa)) / d
		s1 := h - sn*cosX*cosY
		s2 := sn * sinX * cosY
		s3 := sn * sinY

		lon.Data[i] = normaliseLon(math.Atan2(s2, s1)*180/math.Pi + params.SubSatelliteLon)
		lat.Data[i] = math.Atan(k*s3/math.Hypot(s1, s2)) * 180 / math.Pi
	}
	return lat, lon, nil
}

// normaliseLon - into (-180, 180]
func normaliseLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon > 180 {
		lon -= 360
	} else if lon <= -180 {
		lon += 360
	}
	return lon
}
