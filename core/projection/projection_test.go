package projection

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

const fciH = 35786400.0

func Example_parseProjString() {
	p := ParseProjString("+proj=geos +lon_0=0 +h=35786400 +ellps=WGS84 +no_defs")
	fmt.Println(len(p), p["proj"], p["h"], p["no_defs"] == "")
	fmt.Println(FormatParams(p))

	// Output:
	// 5 geos 35786400 true
	// +proj=geos +ellps=WGS84 +h=35786400 +lon_0=0 +no_defs
}

func Example_fromParams() {
	for _, s := range []string{
		"+proj=geos +lon_0=0 +h=35786400 +ellps=WGS84",
		"+proj=geos +h=35785831 +a=6378169 +b=6356583.8 +sweep=x",
		"+proj=geos +h=35786400 +sweep=z",
		"+proj=geos +lon_0=0",
		"+proj=eqc +lat_ts=30 +ellps=sphere",
		"+proj=longlat",
		"+proj=merc",
		"+ellps=WGS84",
		"+proj=eqc +ellps=potato",
		"+proj=eqc +lon_0=abc",
	} {
		p, err := FromParams(ParseProjString(s))
		if err != nil {
			fmt.Printf("%v\n", err)
			continue
		}
		fmt.Printf("%v\n", p.Name())
	}

	// Output:
	// geos
	// geos
	// Invalid sweep axis: z
	// geos projection needs a positive satellite height h
	// eqc
	// latlong
	// merc: unsupported projection
	// no proj parameter: unsupported projection
	// Unknown ellipsoid: potato
	// Failed to read projection parameter lon_0: strconv.ParseFloat: parsing "abc": invalid syntax
}

func Test_GeosSubSatellitePoint(t *testing.T) {
	g := NewGeos(WGS84, fciH, 9.5, false, 0, 0)
	x, y, ok := g.Forward(9.5, 0)
	if !ok || math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("Sub-satellite point projected to %v %v %v", x, y, ok)
	}

	lon, lat, ok := g.Inverse(0, 0)
	if !ok || math.Abs(lon-9.5) > 1e-9 || math.Abs(lat) > 1e-9 {
		t.Errorf("Centre inverted to %v %v %v", lon, lat, ok)
	}
}

func Test_GeosRoundTrip(t *testing.T) {
	for _, sweepX := range []bool{false, true} {
		g := NewGeos(WGS84, fciH, 0, sweepX, 0, 0)
		for _, pt := range [][2]float64{{0, 0}, {10, 45}, {-30, -20}, {60, 60}, {-70, 5}, {5, -75}} {
			x, y, ok := g.Forward(pt[0], pt[1])
			if !ok {
				t.Fatalf("sweepX=%v: %v should be visible", sweepX, pt)
			}
			lon, lat, ok := g.Inverse(x, y)
			if !ok {
				t.Fatalf("sweepX=%v: %v %v did not invert", sweepX, x, y)
			}
			if math.Abs(lon-pt[0]) > 1e-7 || math.Abs(lat-pt[1]) > 1e-7 {
				t.Errorf("sweepX=%v: %v came back as %v, %v", sweepX, pt, lon, lat)
			}
		}
	}
}

func Test_GeosOffDisk(t *testing.T) {
	g := NewGeos(WGS84, fciH, 0, false, 0, 0)

	if _, _, ok := g.Forward(120, 0); ok {
		t.Errorf("Far side of the earth should not be visible")
	}
	if _, _, ok := g.Inverse(5.0e6, 0); !ok {
		t.Errorf("5000km east of centre should be on the disk")
	}
	lon, lat, ok := g.Inverse(5.5e6, 0)
	if ok || !math.IsNaN(lon) || !math.IsNaN(lat) {
		t.Errorf("5500km east of centre should be off the disk, got %v %v", lon, lat)
	}
	if _, _, ok := g.Inverse(math.NaN(), 0); ok {
		t.Errorf("NaN should not invert")
	}
}

func Test_GeosEllipsoidVsSphere(t *testing.T) {
	// Geodetic latitude is further poleward than geocentric, so on the ellipsoid the same
	// latitude appears nearer the equator in the satellite view
	ell := NewGeos(WGS84, fciH, 0, false, 0, 0)
	sph := NewGeos(Ellipsoid{A: WGS84.A}, fciH, 0, false, 0, 0)

	_, yEll, _ := ell.Forward(0, 45)
	_, ySph, _ := sph.Forward(0, 45)
	if !(yEll < ySph) {
		t.Errorf("Expected ellipsoidal y %v < spherical y %v", yEll, ySph)
	}
}

func Test_EqcRoundTrip(t *testing.T) {
	p, err := FromParams(map[string]string{"proj": "eqc", "ellps": "sphere", "lat_ts": "0", "lon_0": "10"})
	if err != nil {
		t.Fatal(err)
	}

	x, y, ok := p.Forward(11, 2)
	wantY := 6370997.0 * 2 * math.Pi / 180
	wantX := 6370997.0 * 1 * math.Pi / 180
	if !ok || math.Abs(x-wantX) > 1e-6 || math.Abs(y-wantY) > 1e-6 {
		t.Errorf("Forward gave %v %v, want %v %v", x, y, wantX, wantY)
	}

	lon, lat, ok := p.Inverse(x, y)
	if !ok || math.Abs(lon-11) > 1e-9 || math.Abs(lat-2) > 1e-9 {
		t.Errorf("Inverse gave %v %v", lon, lat)
	}

	if _, _, ok := p.Inverse(0, 1e8); ok {
		t.Errorf("Beyond the pole should fail")
	}
}

func Test_UnsupportedIsSentinel(t *testing.T) {
	_, err := FromParams(map[string]string{"proj": "stere"})
	if !errors.Is(err, ErrUnsupportedProjection) {
		t.Errorf("Expected ErrUnsupportedProjection, got %v", err)
	}
}
