// Package vis writes images of FCI test data: the requested channels and composites of a set of
// files, or of an archive of them, for each of a list of areas.
package vis

import (
	"fmt"
	"math"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gerritholl/fcitools/core/archive"
	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/scene"
	"github.com/pkg/errors"
)

// DefaultReader - reader for FCI level 1c full disk high spectral resolution data
const DefaultReader = "fci_l1c_fdhsi"

// Visualizer - opens scenes with Reader and saves their datasets. Overlay draws coastlines
// when a request names a coastline dir. S3 is only needed for s3:// output dirs
type Visualizer struct {
	Reader  string
	Overlay scene.OverlayRenderer
	S3      s3iface.S3API
	Log     logger.ILogger
}

func NewVisualizer(reader string, overlay scene.OverlayRenderer, s3Api s3iface.S3API, log logger.ILogger) *Visualizer {
	if len(reader) == 0 {
		reader = DefaultReader
	}
	if log == nil {
		log = &logger.NullLogger{}
	}
	return &Visualizer{Reader: reader, Overlay: overlay, S3: s3Api, Log: log}
}

// ShowRequest - what to write for a set of data files. A nil region means the data's own grid
type ShowRequest struct {
	Files           []string
	Composites      []string
	Channels        []string
	Regions         []*area.AreaDefinition
	OutDir          string
	FilenamePattern string
	CoastlineDir    string
	Label           string
	OnlyCoastlines  bool
}

// ShowTestdataFromDir - writes every loaded dataset for every region, named by the pattern
// fields {area}, {dataset} and {label}. With OnlyCoastlines, black, white and transparent
// datasets shaped like the first channel (or composite) are added, to show coastlines over
// plain backgrounds. Returns the paths written
func (v *Visualizer) ShowTestdataFromDir(req ShowRequest) ([]string, error) {
	pattern := req.FilenamePattern
	if len(pattern) == 0 {
		pattern = DefaultFilenamePattern
	}

	out, err := fileaccess.Resolve(req.OutDir, v.S3)
	if err != nil {
		return nil, err
	}

	sc, err := scene.Open(v.Reader, req.Files, v.Log)
	if err != nil {
		return nil, err
	}

	if len(req.Channels) > 0 {
		if err := sc.Load(req.Channels); err != nil {
			return nil, errors.Wrap(err, "Failed to load channels")
		}
	}
	if len(req.Composites) > 0 {
		if err := sc.Load(req.Composites); err != nil {
			return nil, errors.Wrap(err, "Failed to load composites")
		}
	}

	if req.OnlyCoastlines {
		if err := addBackgrounds(sc, append(append([]string{}, req.Channels...), req.Composites...)); err != nil {
			return nil, err
		}
	}

	opts := scene.SaveOptions{}
	if len(req.CoastlineDir) > 0 {
		opts = scene.SaveOptions{Overlay: v.Overlay, OverlayDir: req.CoastlineDir, OverlayColour: scene.DefaultOverlayColour}
	}

	written := []string{}
	for _, region := range req.Regions {
		areaName := area.Native
		resampled := sc
		if region != nil {
			areaName = region.AreaID
			resampled, err = sc.Resample(region)
			if err != nil {
				return written, err
			}
		}

		for _, name := range resampled.Loaded() {
			ds, err := resampled.Dataset(name)
			if err != nil {
				return written, err
			}

			fn, err := FormatFilename(pattern, map[string]string{"area": areaName, "dataset": name, "label": req.Label})
			if err != nil {
				return written, err
			}

			savePath, shown := outputPath(out, fn)
			if err := scene.SaveDataset(out.FS, out.Bucket, savePath, ds, opts); err != nil {
				return written, err
			}

			v.Log.Debugf("Wrote %v", shown)
			written = append(written, shown)
		}
	}

	v.Log.Infof("Wrote %v files for %v regions to %v", len(written), len(req.Regions), req.OutDir)
	return written, nil
}

// outputPath - path to save to within the location, and how to show it to the user
func outputPath(out fileaccess.Location, fn string) (string, string) {
	if len(out.Bucket) > 0 {
		key := path.Join(out.Path, fn)
		return key, fmt.Sprintf("s3://%v/%v", out.Bucket, key)
	}
	p := filepath.Join(out.Path, fn)
	return p, p
}

func addBackgrounds(sc scene.Scene, requested []string) error {
	if len(requested) == 0 {
		return errors.New("Showing only coastlines needs at least one channel or composite")
	}

	first, err := sc.Dataset(requested[0])
	if err != nil {
		return err
	}

	rows, cols := first.Data.Rows, first.Data.Cols
	for _, bg := range []struct {
		name  string
		value float64
	}{
		{"black", 0},
		{"white", 1},
		{"nans", math.NaN()},
	} {
		err := sc.Put(&scene.Dataset{Name: bg.name, Area: first.Area, Data: grid.NewFilled(rows, cols, bg.value)})
		if err != nil {
			return err
		}
	}
	return nil
}

// UnpackRequest - like ShowRequest for an archive, with regions named in an area registry
type UnpackRequest struct {
	Archive         string
	Composites      []string
	Channels        []string
	Regions         []string
	OutDir          string
	FilenamePattern string
	CoastlineDir    string
	OnlyCoastlines  bool
}

// UnpackAndShowTestdata - unpacks the archive and shows its files. The label is the archive
// name up to the first dot. Region "native" means no resampling
func (v *Visualizer) UnpackAndShowTestdata(req UnpackRequest, unpacker *archive.Unpacker, areas *area.Registry) ([]string, error) {
	regions := make([]*area.AreaDefinition, 0, len(req.Regions))
	for _, name := range req.Regions {
		if name == area.Native {
			regions = append(regions, nil)
			continue
		}
		a, err := areas.Get(name)
		if err != nil {
			return nil, err
		}
		regions = append(regions, a)
	}

	files, err := unpacker.Unpack(req.Archive)
	if err != nil {
		return nil, err
	}

	return v.ShowTestdataFromDir(ShowRequest{
		Files:           files,
		Composites:      req.Composites,
		Channels:        req.Channels,
		Regions:         regions,
		OutDir:          req.OutDir,
		FilenamePattern: req.FilenamePattern,
		CoastlineDir:    req.CoastlineDir,
		Label:           archive.TrueStem(req.Archive),
		OnlyCoastlines:  req.OnlyCoastlines,
	})
}
