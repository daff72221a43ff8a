package area

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/gerritholl/fcitools/core/grid"
)

// Number of sample points along each axis used to find an area's lon/lat bounding box
const boundsSamples = 33

// Bounds - lon/lat bounding box
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

type indexedArea struct {
	area   *AreaDefinition
	bounds Bounds
}

// Bounds implements rtreego.Spatial
func (e *indexedArea) Bounds() rtreego.Rect {
	point := rtreego.Point{e.bounds.MinLon, e.bounds.MinLat}
	lengths := []float64{
		math.Max(e.bounds.MaxLon-e.bounds.MinLon, 1e-9),
		math.Max(e.bounds.MaxLat-e.bounds.MinLat, 1e-9),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// Index - R-tree of area bounding boxes for answering "which areas cover this point"
type Index struct {
	rtree *rtreego.Rtree
	count int
}

// NewIndex - indexes every area in the registry. Areas with no pixel on the earth are left out
func NewIndex(reg *Registry) (*Index, error) {
	idx := &Index{rtree: rtreego.NewTree(2, 25, 50)}

	for _, name := range reg.Names() {
		a, _ := reg.Get(name)
		b, ok, err := GeoBounds(a)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		idx.rtree.Insert(&indexedArea{area: a, bounds: b})
		idx.count++
	}
	return idx, nil
}

func (idx *Index) Size() int {
	return idx.count
}

// Covering - names of the areas with a pixel containing lon/lat, sorted
func (idx *Index) Covering(lon float64, lat float64) []string {
	result := []string{}

	for _, s := range idx.rtree.SearchIntersect(rtreego.Point{lon, lat}.ToRect(1e-6)) {
		entry := s.(*indexedArea)

		// The bounding box is approximate, check the actual pixel
		if _, _, ok := entry.area.PixelFor(lon, lat); ok {
			result = append(result, entry.area.AreaID)
		}
	}

	sort.Strings(result)
	return result
}

// GeoBounds - lon/lat bounding box from a lattice of sample points across the area,
// including its edges. ok is false if none of the points are on the earth. Areas crossing the
// antimeridian get a box spanning all longitudes
func GeoBounds(a *AreaDefinition) (Bounds, bool, error) {
	rows := sampleCoords(a.Height)
	cols := sampleCoords(a.Width)

	b := Bounds{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	found := false

	for _, r := range rows {
		for _, c := range cols {
			lons, lats, err := a.LonLats(grid.Block{Row0: r, Col0: c, Rows: 1, Cols: 1})
			if err != nil {
				return b, false, err
			}
			lon, lat := lons.Data[0], lats.Data[0]
			if math.IsNaN(lon) || math.IsNaN(lat) {
				continue
			}
			found = true
			b.MinLon = math.Min(b.MinLon, lon)
			b.MaxLon = math.Max(b.MaxLon, lon)
			b.MinLat = math.Min(b.MinLat, lat)
			b.MaxLat = math.Max(b.MaxLat, lat)
		}
	}

	if !found {
		return b, false, nil
	}

	// Pixel centres sit half a pixel in from the edges, and sampling misses bulges between
	// samples, so pad a little
	const pad = 1.0
	b.MinLon = math.Max(b.MinLon-pad, -180)
	b.MaxLon = math.Min(b.MaxLon+pad, 180)
	b.MinLat = math.Max(b.MinLat-pad, -90)
	b.MaxLat = math.Min(b.MaxLat+pad, 90)

	if b.MaxLon-b.MinLon > 180 {
		b.MinLon, b.MaxLon = -180, 180
	}
	return b, true, nil
}

func sampleCoords(n int) []int {
	if n <= boundsSamples {
		result := make([]int, n)
		for c := range result {
			result[c] = c
		}
		return result
	}

	result := []int{}
	for _, f := range grid.Linspace(0.0, float64(n-1), boundsSamples) {
		result = append(result, int(math.Round(f)))
	}
	return result
}
