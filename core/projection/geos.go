package projection

import "math"

// Geos - geostationary satellite view on an ellipsoid, as seen from height H above the
// equator at longitude Lon0. SweepX selects the x sweep angle axis (GOES), otherwise the
// y axis (Meteosat)
type Geos struct {
	Ellipsoid Ellipsoid
	H         float64
	Lon0      float64
	SweepX    bool
	X0        float64
	Y0        float64

	radiusG    float64
	radiusG1   float64
	radiusP    float64
	radiusP2   float64
	radiusPInv float64
	c          float64
}

func NewGeos(ell Ellipsoid, h float64, lon0 float64, sweepX bool, x0 float64, y0 float64) *Geos {
	g := &Geos{Ellipsoid: ell, H: h, Lon0: lon0, SweepX: sweepX, X0: x0, Y0: y0}

	oneES := 1 - ell.ES()
	g.radiusG1 = h / ell.A
	g.radiusG = 1 + g.radiusG1
	g.c = g.radiusG*g.radiusG - 1
	g.radiusP = math.Sqrt(oneES)
	g.radiusP2 = oneES
	g.radiusPInv = 1 / oneES
	return g
}

func (g *Geos) Name() string {
	return "geos"
}

func (g *Geos) Forward(lon float64, lat float64) (float64, float64, bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return math.NaN(), math.NaN(), false
	}

	lam := normaliseLon(lon-g.Lon0) * deg

	// Geocentric latitude
	phi := math.Atan(g.radiusP2 * math.Tan(lat*deg))

	r := g.radiusP / math.Hypot(g.radiusP*math.Cos(phi), math.Sin(phi))
	vx := r * math.Cos(lam) * math.Cos(phi)
	vy := r * math.Sin(lam) * math.Cos(phi)
	vz := r * math.Sin(phi)

	tmp := g.radiusG - vx

	// Behind the visible disk
	if tmp*vx-vy*vy-vz*vz*g.radiusPInv < 0 {
		return math.NaN(), math.NaN(), false
	}

	var x, y float64
	if g.SweepX {
		x = g.radiusG1 * math.Atan(vy/math.Hypot(vz, tmp))
		y = g.radiusG1 * math.Atan(vz/tmp)
	} else {
		x = g.radiusG1 * math.Atan(vy/tmp)
		y = g.radiusG1 * math.Atan(vz/math.Hypot(vy, tmp))
	}

	return x*g.Ellipsoid.A + g.X0, y*g.Ellipsoid.A + g.Y0, true
}

func (g *Geos) Inverse(x float64, y float64) (float64, float64, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN(), math.NaN(), false
	}

	x = (x - g.X0) / g.Ellipsoid.A
	y = (y - g.Y0) / g.Ellipsoid.A

	// Unit vector pointing from the satellite to the point
	vx := -1.0
	var vy, vz float64
	if g.SweepX {
		vz = math.Tan(y / g.radiusG1)
		vy = math.Tan(x/g.radiusG1) * math.Hypot(1.0, vz)
	} else {
		vy = math.Tan(x / g.radiusG1)
		vz = math.Tan(y/g.radiusG1) * math.Hypot(1.0, vy)
	}

	a := vz / g.radiusP
	a = vy*vy + a*a + vx*vx
	b := 2 * g.radiusG * vx
	det := b*b - 4*a*g.c
	if det < 0 {
		// Line of sight misses the earth
		return math.NaN(), math.NaN(), false
	}

	k := (-b - math.Sqrt(det)) / (2 * a)
	vx = g.radiusG + k*vx
	vy *= k
	vz *= k

	lam := math.Atan2(vy, vx)
	phi := math.Atan(vz * math.Cos(lam) / vx)
	phi = math.Atan(g.radiusPInv * math.Tan(phi))

	return normaliseLon(lam/deg + g.Lon0), phi / deg, true
}
