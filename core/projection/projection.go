// Package projection implements the few map projections needed to go between area pixel
// coordinates (metres) and geodetic longitude/latitude (degrees).
package projection

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Projection - forward and inverse map projection. ok is false for points the projection
// cannot represent, like those off the visible disk of a geostationary view
type Projection interface {
	Forward(lon float64, lat float64) (x float64, y float64, ok bool)
	Inverse(x float64, y float64) (lon float64, lat float64, ok bool)
	Name() string
}

// Ellipsoid - semi-major axis in metres and flattening
type Ellipsoid struct {
	A float64
	F float64
}

var WGS84 = Ellipsoid{A: 6378137.0, F: 1 / 298.257223563}
var GRS80 = Ellipsoid{A: 6378137.0, F: 1 / 298.257222101}

var namedEllipsoids = map[string]Ellipsoid{
	"WGS84":  WGS84,
	"GRS80":  GRS80,
	"sphere": {A: 6370997.0, F: 0},
}

// ES - eccentricity squared
func (e Ellipsoid) ES() float64 {
	return e.F * (2 - e.F)
}

// B - semi-minor axis
func (e Ellipsoid) B() float64 {
	return e.A * (1 - e.F)
}

var ErrUnsupportedProjection = errors.New("unsupported projection")

const deg = math.Pi / 180

// FromParams - builds a projection from PROJ style parameters, as found in area definition
// files. Supported: proj=geos|eqc|latlong (also longlat, lonlat), with lon_0, h, a, b, rf, ellps,
// sweep, lat_ts, lat_0, x_0 and y_0
func FromParams(params map[string]string) (Projection, error) {
	name := params["proj"]
	if len(name) == 0 {
		return nil, errors.Wrap(ErrUnsupportedProjection, "no proj parameter")
	}

	ell, err := ellipsoidFromParams(params)
	if err != nil {
		return nil, err
	}

	nums := map[string]float64{}
	for _, key := range []string{"lon_0", "h", "lat_ts", "lat_0", "x_0", "y_0"} {
		v, err := floatParam(params, key)
		if err != nil {
			return nil, err
		}
		nums[key] = v
	}

	switch name {
	case "geos":
		sweep := params["sweep"]
		if len(sweep) == 0 {
			sweep = "y"
		}
		if sweep != "x" && sweep != "y" {
			return nil, errors.Errorf("Invalid sweep axis: %v", sweep)
		}
		if nums["h"] <= 0 {
			return nil, errors.New("geos projection needs a positive satellite height h")
		}
		return NewGeos(ell, nums["h"], nums["lon_0"], sweep == "x", nums["x_0"], nums["y_0"]), nil
	case "eqc":
		return &Eqc{Ellipsoid: ell, Lon0: nums["lon_0"], Lat0: nums["lat_0"], LatTS: nums["lat_ts"], X0: nums["x_0"], Y0: nums["y_0"]}, nil
	case "latlong", "longlat", "lonlat", "latlon":
		return &LatLong{}, nil
	}

	return nil, errors.Wrap(ErrUnsupportedProjection, name)
}

// ParseProjString - splits "+proj=geos +lon_0=0 +no_defs" into parameters. Flags without a
// value map to an empty string
func ParseProjString(s string) map[string]string {
	result := map[string]string{}
	for _, tok := range strings.Fields(s) {
		tok = strings.TrimPrefix(tok, "+")
		if len(tok) == 0 {
			continue
		}
		key, value, _ := strings.Cut(tok, "=")
		result[key] = value
	}
	return result
}

// FormatParams - inverse of ParseProjString, keys sorted with proj first
func FormatParams(params map[string]string) string {
	keys := []string{}
	for k := range params {
		if k != "proj" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := params["proj"]; ok {
		keys = append([]string{"proj"}, keys...)
	}

	parts := []string{}
	for _, k := range keys {
		if len(params[k]) == 0 {
			parts = append(parts, "+"+k)
		} else {
			parts = append(parts, "+"+k+"="+params[k])
		}
	}
	return strings.Join(parts, " ")
}

func ellipsoidFromParams(params map[string]string) (Ellipsoid, error) {
	ell := WGS84
	if name, ok := params["ellps"]; ok && len(name) > 0 {
		named, ok := namedEllipsoids[name]
		if !ok {
			return ell, errors.Errorf("Unknown ellipsoid: %v", name)
		}
		ell = named
	}

	if _, ok := params["a"]; ok {
		a, err := floatParam(params, "a")
		if err != nil {
			return ell, err
		}
		ell.A = a

		switch {
		case len(params["b"]) > 0:
			b, err := floatParam(params, "b")
			if err != nil {
				return ell, err
			}
			ell.F = (a - b) / a
		case len(params["rf"]) > 0:
			rf, err := floatParam(params, "rf")
			if err != nil {
				return ell, err
			}
			if rf == 0 {
				ell.F = 0
			} else {
				ell.F = 1 / rf
			}
		default:
			// a on its own is a sphere, same as PROJ
			if _, named := params["ellps"]; !named {
				ell.F = 0
			}
		}
	}

	if ell.A <= 0 || math.IsNaN(ell.A) || math.IsInf(ell.A, 0) || ell.F < 0 || ell.F >= 1 {
		return ell, errors.Errorf("Invalid ellipsoid: a=%v f=%v", ell.A, ell.F)
	}
	return ell, nil
}

func floatParam(params map[string]string, key string) (float64, error) {
	s, ok := params[key]
	if !ok || len(s) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to read projection parameter %v", key)
	}
	return v, nil
}

// normaliseLon - wraps to [-180, 180)
func normaliseLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
