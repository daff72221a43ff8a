// Package coastline draws shorelines from GeoJSON files onto area grids, as an overlay mask for
// saved datasets.
package coastline

import (
	"encoding/json"
	"image"
	"image/color"
	"math"
	"path"
	"strings"
	"sync"

	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// Line - lon/lat vertices of one polyline
type Line [][2]float64

// Renderer - reads every .geojson/.json file in the coastline dir (once per dir) and draws
// its line and polygon outlines. Implements scene.OverlayRenderer
type Renderer struct {
	FS  fileaccess.FileAccess
	Log logger.ILogger

	mu    sync.Mutex
	lines map[string][]Line
}

func NewRenderer(fs fileaccess.FileAccess, log logger.ILogger) *Renderer {
	if log == nil {
		log = &logger.NullLogger{}
	}
	return &Renderer{FS: fs, Log: log, lines: map[string][]Line{}}
}

// Render - alpha mask the size of the area, opaque on coastline pixels
func (r *Renderer) Render(a *area.AreaDefinition, dir string) (image.Image, error) {
	lines, err := r.load(dir)
	if err != nil {
		return nil, err
	}

	mask := image.NewAlpha(image.Rect(0, 0, a.Width, a.Height))
	for _, l := range lines {
		drawLine(mask, a, l)
	}
	return mask, nil
}

func (r *Renderer) load(dir string) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lines, ok := r.lines[dir]; ok {
		return lines, nil
	}

	files, err := r.FS.ListObjects(dir, "")
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to list coastline dir %v", dir)
	}

	lines := []Line{}
	read := 0
	for _, f := range files {
		ext := strings.ToLower(path.Ext(f))
		if ext != ".geojson" && ext != ".json" {
			continue
		}

		data, err := r.FS.ReadObject(dir, f)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read coastlines %v", f)
		}
		fileLines, err := ParseGeoJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse coastlines %v", f)
		}
		lines = append(lines, fileLines...)
		read++
	}

	if read == 0 {
		return nil, errors.Errorf("No coastline files (.geojson) found in %v", dir)
	}

	r.Log.Debugf("Read %v coastline segments from %v files in %v", len(lines), read, dir)
	r.lines[dir] = lines
	return lines, nil
}

// ParseGeoJSON - polylines of a FeatureCollection, Feature or bare geometry. Polygons give
// their rings, points are ignored. Altitudes are dropped
func ParseGeoJSON(data []byte) ([]Line, error) {
	head := struct {
		Type string `json:"type"`
	}{}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		result := []Line{}
		for _, f := range fc.Features {
			lines, err := geometryLines(f.Geometry)
			if err != nil {
				return nil, err
			}
			result = append(result, lines...)
		}
		return result, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return geometryLines(f.Geometry)
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		return geometryLines(g.Geometry())
	}
	return nil, errors.Errorf("Unsupported GeoJSON type: %v", head.Type)
}

func geometryLines(g orb.Geometry) ([]Line, error) {
	result := []Line{}
	switch geom := g.(type) {
	case nil, orb.Point, orb.MultiPoint:
	case orb.LineString:
		result = append(result, toLine(geom))
	case orb.MultiLineString:
		for _, ls := range geom {
			result = append(result, toLine(ls))
		}
	case orb.Ring:
		result = append(result, toLine(geom))
	case orb.Polygon:
		for _, r := range geom {
			result = append(result, toLine(r))
		}
	case orb.MultiPolygon:
		for _, p := range geom {
			for _, r := range p {
				result = append(result, toLine(r))
			}
		}
	case orb.Collection:
		for _, sub := range geom {
			lines, err := geometryLines(sub)
			if err != nil {
				return nil, err
			}
			result = append(result, lines...)
		}
	default:
		return nil, errors.Errorf("Unsupported geometry: %v", g.GeoJSONType())
	}
	return result, nil
}

func toLine(points []orb.Point) Line {
	l := make(Line, 0, len(points))
	for _, p := range points {
		l = append(l, [2]float64{p.Lon(), p.Lat()})
	}
	return l
}

// drawLine - straight segments between the projected vertices. Segments with an end that
// can't be projected, or jumping more than half the area (wrapping round the globe), are left out
func drawLine(mask *image.Alpha, a *area.AreaDefinition, l Line) {
	prevOK := false
	var px, py float64
	for _, v := range l {
		x, y, ok := a.PixelCoords(v[0], v[1])
		if ok && prevOK && math.Abs(x-px) <= float64(a.Width)/2 {
			segment(mask, px, py, x, y)
		}
		px, py, prevOK = x, y, ok
	}
}

func segment(mask *image.Alpha, x0 float64, y0 float64, x1 float64, y1 float64) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Floor(x0 + t*(x1-x0)))
		y := int(math.Floor(y0 + t*(y1-y0)))
		if image.Pt(x, y).In(mask.Rect) {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
}
