// Package scene is the satellite scene abstraction: a set of named datasets on areas that can be
// loaded from files through a registered reader, resampled to other areas and saved as images.
package scene

import (
	"sort"
	"sync"

	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/pkg/errors"
)

var (
	ErrUnknownReader     = errors.New("unknown reader")
	ErrDatasetNotLoaded  = errors.New("dataset not loaded")
	ErrUnknownDataset    = errors.New("dataset not available")
	ErrAreaShapeMismatch = errors.New("dataset shape does not match its area")
)

// Dataset - a named 2-D field on an area
type Dataset struct {
	Name  string
	Area  *area.AreaDefinition
	Data  *grid.Grid
	Attrs map[string]string
}

func (d *Dataset) validate() error {
	if d.Area == nil || d.Data == nil {
		return errors.Wrapf(ErrAreaShapeMismatch, "dataset %v has no area or data", d.Name)
	}
	if d.Data.Rows != d.Area.Height || d.Data.Cols != d.Area.Width {
		return errors.Wrapf(ErrAreaShapeMismatch, "dataset %v is %v, area %v is %vx%v", d.Name, d.Data.Shape(), d.Area.AreaID, d.Area.Height, d.Area.Width)
	}
	return nil
}

// Scene - datasets loaded from a set of files
type Scene interface {
	// Load - makes the named channels/composites available through Dataset
	Load(names []string) error
	Dataset(name string) (*Dataset, error)
	// Loaded - names of the loaded datasets, sorted
	Loaded() []string
	// Put - adds or replaces a dataset
	Put(ds *Dataset) error
	// Resample - new scene with every loaded dataset on the target area
	Resample(target *area.AreaDefinition) (Scene, error)
}

// OpenFunc - opens a scene from reader specific files
type OpenFunc func(files []string, log logger.ILogger) (Scene, error)

var (
	readersMu sync.RWMutex
	readers   = map[string]OpenFunc{}
)

// Register - makes a reader available by name. Panics if called twice for the same name or
// with a nil OpenFunc, like database/sql.Register
func Register(name string, open OpenFunc) {
	readersMu.Lock()
	defer readersMu.Unlock()

	if open == nil {
		panic("scene: Register open func is nil")
	}
	if _, dup := readers[name]; dup {
		panic("scene: Register called twice for reader " + name)
	}
	readers[name] = open
}

// Readers - sorted names of the registered readers
func Readers() []string {
	readersMu.RLock()
	defer readersMu.RUnlock()

	result := make([]string, 0, len(readers))
	for name := range readers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Open - opens files with the named reader
func Open(reader string, files []string, log logger.ILogger) (Scene, error) {
	readersMu.RLock()
	open, ok := readers[reader]
	readersMu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownReader, "%v (registered: %v)", reader, Readers())
	}
	if log == nil {
		log = &logger.NullLogger{}
	}

	sc, err := open(files, log)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %v files with reader %v", len(files), reader)
	}
	return sc, nil
}
