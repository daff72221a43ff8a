package vis

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gerritholl/fcitools/core/archive"
	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/scene"
)

const testReader = "vis_test_reader"

var (
	registerOnce sync.Once
	openedMu     sync.Mutex
	openedFiles  []string
)

func globe() *area.AreaDefinition {
	a, err := area.NewAreaDefinition("globe", "globe", map[string]string{"proj": "latlong"}, 8, 4, area.Extent{LowerLeftX: -180, LowerLeftY: -90, UpperRightX: 180, UpperRightY: 90})
	if err != nil {
		panic(err)
	}
	return a
}

func registerTestReader() {
	registerOnce.Do(func() {
		scene.Register(testReader, func(files []string, log logger.ILogger) (scene.Scene, error) {
			openedMu.Lock()
			openedFiles = append([]string{}, files...)
			openedMu.Unlock()

			a := globe()
			datasets := []*scene.Dataset{}
			for i, name := range []string{"vis_04", "ir_38", "natural_color"} {
				g := grid.New(a.Height, a.Width)
				for j := range g.Data {
					g.Data[j] = float64(i*100 + j)
				}
				datasets = append(datasets, &scene.Dataset{Name: name, Area: a, Data: g})
			}
			return scene.NewMemoryScene(datasets, log)
		})
	})
}

type fakeOverlay struct {
	calls int
}

func (f *fakeOverlay) Render(a *area.AreaDefinition, dir string) (image.Image, error) {
	f.calls++
	return image.NewAlpha(image.Rect(0, 0, a.Width, a.Height)), nil
}

func baseNames(paths []string) []string {
	result := []string{}
	for _, p := range paths {
		result = append(result, filepath.Base(p))
	}
	return result
}

func Example_formatFilename() {
	fields := map[string]string{"area": "eurol", "dataset": "vis_06", "label": "fish"}
	for _, p := range []string{DefaultFilenamePattern, "{label}_{area:s}_{dataset}.png", "{{literal}}_{area}.tif", "{colour}.png", "{area:d}.png", "{area.png", "area}.png"} {
		fn, err := FormatFilename(p, fields)
		fmt.Printf("%q %v\n", fn, err)
	}

	// Output:
	// "eurol_vis_06.tiff" <nil>
	// "fish_eurol_vis_06.png" <nil>
	// "{literal}_eurol.tif" <nil>
	// "" Unknown field "colour" in filename pattern {colour}.png, have: [area dataset label]
	// "" Unsupported format "d" for field area in filename pattern {area:d}.png
	// "" Unterminated field in filename pattern {area.png
	// "" Single '}' in filename pattern area}.png
}

func Test_ShowTestdataFromDir(t *testing.T) {
	registerTestReader()
	outDir := t.TempDir()

	half, err := area.NewAreaDefinition("north_east", "north east", map[string]string{"proj": "latlong"}, 4, 2, area.Extent{LowerLeftX: 0, LowerLeftY: 0, UpperRightX: 180, UpperRightY: 90})
	if err != nil {
		t.Fatal(err)
	}

	overlay := &fakeOverlay{}
	v := NewVisualizer(testReader, overlay, nil, nil)
	written, err := v.ShowTestdataFromDir(ShowRequest{
		Files:           []string{"/tmp/pinguin/telly"},
		Composites:      []string{"natural_color"},
		Channels:        []string{"vis_04", "ir_38"},
		Regions:         []*area.AreaDefinition{nil, half},
		OutDir:          outDir,
		FilenamePattern: "{label:s}_{area:s}_{dataset:s}.png",
		CoastlineDir:    "/coast",
		Label:           "fish",
	})
	if err != nil {
		t.Fatal(err)
	}

	exp := "[fish_native_ir_38.png fish_native_natural_color.png fish_native_vis_04.png fish_north_east_ir_38.png fish_north_east_natural_color.png fish_north_east_vis_04.png]"
	if got := fmt.Sprint(baseNames(written)); got != exp {
		t.Errorf("Unexpected files written: %v", got)
	}
	for _, w := range written {
		if filepath.Dir(w) != outDir {
			t.Errorf("%v not in %v", w, outDir)
		}
		if _, err := os.Stat(w); err != nil {
			t.Errorf("%v not written: %v", w, err)
		}
	}
	if overlay.calls != 6 {
		t.Errorf("Expected 6 overlay renders, got %v", overlay.calls)
	}
	if fmt.Sprint(openedFiles) != "[/tmp/pinguin/telly]" {
		t.Errorf("Reader got %v", openedFiles)
	}
}

func Test_ShowOnlyCoastlines(t *testing.T) {
	registerTestReader()
	outDir := t.TempDir()
	v := NewVisualizer(testReader, nil, nil, nil)

	written, err := v.ShowTestdataFromDir(ShowRequest{
		Channels:        []string{"vis_04"},
		Regions:         []*area.AreaDefinition{nil},
		OutDir:          outDir,
		FilenamePattern: "{dataset}.png",
		OnlyCoastlines:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := fmt.Sprint(baseNames(written)); got != "[black.png nans.png vis_04.png white.png]" {
		t.Errorf("Unexpected files written: %v", got)
	}

	data, _ := os.ReadFile(filepath.Join(outDir, "white.png"))
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := img.At(3, 2).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Errorf("white.png not white: %v %v %v", r, g, b)
	}

	data, _ = os.ReadFile(filepath.Join(outDir, "nans.png"))
	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(3, 2).RGBA(); a != 0 {
		t.Errorf("nans.png not transparent: %v", a)
	}

	_, err = v.ShowTestdataFromDir(ShowRequest{Regions: []*area.AreaDefinition{nil}, OutDir: outDir, OnlyCoastlines: true})
	if err == nil || !strings.Contains(err.Error(), "needs at least one channel") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func Test_ShowErrors(t *testing.T) {
	registerTestReader()
	outDir := t.TempDir()

	v := NewVisualizer("", nil, nil, nil)
	if v.Reader != DefaultReader {
		t.Errorf("Expected default reader, got %v", v.Reader)
	}
	_, err := v.ShowTestdataFromDir(ShowRequest{Files: []string{"a.nc"}, OutDir: outDir})
	if !errors.Is(err, scene.ErrUnknownReader) {
		t.Errorf("Expected unknown reader, got %v", err)
	}

	v = NewVisualizer(testReader, nil, nil, nil)
	_, err = v.ShowTestdataFromDir(ShowRequest{Channels: []string{"vis_04"}, Regions: []*area.AreaDefinition{nil}, OutDir: outDir, CoastlineDir: "/coast"})
	if !errors.Is(err, scene.ErrNoOverlayRenderer) {
		t.Errorf("Expected missing overlay renderer, got %v", err)
	}

	_, err = v.ShowTestdataFromDir(ShowRequest{Channels: []string{"wv_87"}, OutDir: outDir})
	if !errors.Is(err, scene.ErrUnknownDataset) {
		t.Errorf("Expected unknown dataset, got %v", err)
	}

	_, err = v.ShowTestdataFromDir(ShowRequest{OutDir: "s3://bucket/out"})
	if err == nil {
		t.Errorf("Expected error for S3 output without client")
	}
}

const shrubberyYAML = `
shrubbery:
  description: it is a good shrubbery
  projection:
    proj: eqc
    ellps: WGS84
    lat_0: 0
    lat_ts: 0
    lon_0: 0
  shape:
    height: 12
    width: 30
  area_extent: [2500000, 4000000, 3000000, 40000000]
`

func writeTar(t testing.TB, path string, files map[string]string) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	names := []string{}
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		tw.WriteHeader(&tar.Header{Name: n, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(files[n]))})
		tw.Write([]byte(files[n]))
	}
	tw.Close()
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func Test_UnpackAndShowTestdata(t *testing.T) {
	registerTestReader()
	srcDir := t.TempDir()
	outDir := t.TempDir()

	tarPath := filepath.Join(srcDir, "file.tar")
	writeTar(t, tarPath, map[string]string{"file1.dat": "abcd", "file2.dat": "efgh"})

	areas, err := area.ParseAreas([]byte(shrubberyYAML))
	if err != nil {
		t.Fatal(err)
	}
	reg := area.NewRegistry()
	for _, a := range areas {
		reg.Put(a)
	}

	v := NewVisualizer(testReader, nil, nil, nil)
	unpacker := archive.NewUnpacker(filepath.Join(srcDir, "cache"), nil, nil)

	written, err := v.UnpackAndShowTestdata(UnpackRequest{
		Archive:         tarPath,
		Composites:      []string{"natural_color"},
		Channels:        []string{"vis_04"},
		Regions:         []string{"shrubbery", area.Native},
		OutDir:          outDir,
		FilenamePattern: "{label}_{area}_{dataset}.tif",
	}, unpacker, reg)
	if err != nil {
		t.Fatal(err)
	}

	if got := fmt.Sprint(baseNames(openedFiles)); got != "[file1.dat file2.dat]" {
		t.Errorf("Reader got %v", got)
	}
	exp := "[file_shrubbery_natural_color.tif file_shrubbery_vis_04.tif file_native_natural_color.tif file_native_vis_04.tif]"
	if got := fmt.Sprint(baseNames(written)); got != exp {
		t.Errorf("Unexpected files written: %v", got)
	}

	_, err = v.UnpackAndShowTestdata(UnpackRequest{Archive: tarPath, Regions: []string{"socotra"}, OutDir: outDir}, unpacker, reg)
	if !errors.Is(err, area.ErrUnknownArea) {
		t.Errorf("Expected unknown area, got %v", err)
	}
}
