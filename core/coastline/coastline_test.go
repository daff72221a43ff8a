package coastline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/fileaccess"
)

func Example_parseGeoJSON() {
	docs := []string{
		`{"type": "LineString", "coordinates": [[0, 1], [2, 3, 100]]}`,
		`{"type": "Feature", "properties": {"name": "island"}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}}`,
		`{"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "MultiLineString", "coordinates": [[[0, 0], [1, 1]], [[5, 5], [6, 6]]]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [3, 3]}}
		]}`,
		`{"type": "MultiPolygon", "coordinates": [[[[0, 0], [1, 0], [0, 0]]], [[[9, 9], [8, 8], [9, 9]]]]}`,
		`{"type": "GeometryCollection", "geometries": [
			{"type": "LineString", "coordinates": [[4, 4], [5, 5]]},
			{"type": "Point", "coordinates": [1, 2]}
		]}`,
		`{"type": "Circle", "coordinates": []}`,
	}

	for _, d := range docs {
		lines, err := ParseGeoJSON([]byte(d))
		fmt.Printf("%v|%v\n", lines, err)
	}

	_, err := ParseGeoJSON([]byte(`{"type": "LineString", "coordinates": "nope"}`))
	fmt.Println(err != nil)

	// Output:
	// [[[0 1] [2 3]]]|<nil>
	// [[[0 0] [1 0] [1 1] [0 0]]]|<nil>
	// [[[0 0] [1 1]] [[5 5] [6 6]]]|<nil>
	// [[[0 0] [1 0] [0 0]] [[9 9] [8 8] [9 9]]]|<nil>
	// [[[4 4] [5 5]]]|<nil>
	// []|Unsupported GeoJSON type: Circle
	// true
}

func Test_Render(t *testing.T) {
	dir := t.TempDir()
	// Along latitude 10, plus one crossing the date line which must not be drawn across the map
	doc := `{"type": "MultiLineString", "coordinates": [[[-170, 10], [-90, 10], [0, 10], [90, 10], [170, 10]], [[170, -60], [-170, -60]]]}`
	if err := os.WriteFile(filepath.Join(dir, "coast.geojson"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not coastlines"), 0o644)

	a, err := area.NewAreaDefinition("globe", "globe", map[string]string{"proj": "latlong"}, 8, 4, area.Extent{LowerLeftX: -180, LowerLeftY: -90, UpperRightX: 180, UpperRightY: 90})
	if err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(&fileaccess.FSAccess{}, nil)
	img, err := r.Render(a, dir)
	if err != nil {
		t.Fatal(err)
	}
	mask := img.(*image.Alpha)

	rows := ""
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			if mask.AlphaAt(x, y).A > 0 {
				rows += "#"
			} else {
				rows += "."
			}
		}
		rows += "\n"
	}
	// The date line segment spans 340 degrees of x, so it's skipped
	exp := "........\n########\n........\n........\n"
	if rows != exp {
		t.Errorf("Unexpected mask:\n%v", rows)
	}

	// Second call uses the lines already read
	os.Remove(filepath.Join(dir, "coast.geojson"))
	if _, err := r.Render(a, dir); err != nil {
		t.Errorf("Expected cached lines, got %v", err)
	}

	if _, err := r.Render(a, t.TempDir()); err == nil {
		t.Errorf("Expected error for dir without coastlines")
	}
}
