package projection

import "math"

// Eqc - equidistant cylindrical (plate carree when LatTS is 0), spherical with radius A
type Eqc struct {
	Ellipsoid Ellipsoid
	Lon0      float64
	Lat0      float64
	LatTS     float64
	X0        float64
	Y0        float64
}

func (e *Eqc) Name() string {
	return "eqc"
}

func (e *Eqc) Forward(lon float64, lat float64) (float64, float64, bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.Abs(lat) > 90 {
		return math.NaN(), math.NaN(), false
	}

	lam := normaliseLon(lon-e.Lon0) * deg
	x := e.Ellipsoid.A*lam*math.Cos(e.LatTS*deg) + e.X0
	y := e.Ellipsoid.A*(lat-e.Lat0)*deg + e.Y0
	return x, y, true
}

func (e *Eqc) Inverse(x float64, y float64) (float64, float64, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN(), math.NaN(), false
	}

	lat := (y-e.Y0)/e.Ellipsoid.A/deg + e.Lat0
	lon := (x-e.X0)/(e.Ellipsoid.A*math.Cos(e.LatTS*deg))/deg + e.Lon0
	if math.Abs(lat) > 90 || math.Abs(lon-e.Lon0) > 180 {
		return math.NaN(), math.NaN(), false
	}
	return normaliseLon(lon), lat, true
}

// LatLong - identity, coordinates are already degrees
type LatLong struct {
}

func (l *LatLong) Name() string {
	return "latlong"
}

func (l *LatLong) Forward(lon float64, lat float64) (float64, float64, bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.Abs(lat) > 90 {
		return math.NaN(), math.NaN(), false
	}
	return lon, lat, true
}

func (l *LatLong) Inverse(x float64, y float64) (float64, float64, bool) {
	return l.Forward(x, y)
}
