package scene

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gerritholl/fcitools/core/area"
	"github.com/gerritholl/fcitools/core/grid"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/metrics"
	"github.com/pkg/errors"
)

// MemoryScene - Scene over datasets held in memory. Readers decode their files into the
// available datasets and Load picks from those
type MemoryScene struct {
	// Blocks for resampling, 128 if <= 0
	ChunkSize int
	// Parallel blocks when resampling, NumCPU if <= 0
	Workers int

	log       logger.ILogger
	mu        sync.RWMutex
	available map[string]*Dataset
	loaded    map[string]*Dataset
}

const defaultChunkSize = 128

func NewMemoryScene(available []*Dataset, log logger.ILogger) (*MemoryScene, error) {
	if log == nil {
		log = &logger.NullLogger{}
	}

	sc := &MemoryScene{
		log:       log,
		available: map[string]*Dataset{},
		loaded:    map[string]*Dataset{},
	}
	for _, ds := range available {
		if err := ds.validate(); err != nil {
			return nil, err
		}
		sc.available[ds.Name] = ds
	}
	return sc, nil
}

func (s *MemoryScene) Load(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		ds, ok := s.available[name]
		if !ok {
			return errors.Wrap(ErrUnknownDataset, name)
		}
		s.loaded[name] = ds
		s.log.Debugf("Loaded %v on %v", name, ds.Area.AreaID)
	}
	return nil
}

func (s *MemoryScene) Dataset(name string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.loaded[name]
	if !ok {
		return nil, errors.Wrap(ErrDatasetNotLoaded, name)
	}
	return ds, nil
}

func (s *MemoryScene) Loaded() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, len(s.loaded))
	for name := range s.loaded {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (s *MemoryScene) Put(ds *Dataset) error {
	if err := ds.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded[ds.Name] = ds
	return nil
}

// Resample - nearest neighbour: every target pixel takes the value of the source pixel its
// centre falls in, NaN if none
func (s *MemoryScene) Resample(target *area.AreaDefinition) (Scene, error) {
	if target == nil {
		return nil, errors.New("Resample needs a target area")
	}

	result, _ := NewMemoryScene(nil, s.log)
	result.ChunkSize = s.ChunkSize
	result.Workers = s.Workers

	for _, name := range s.Loaded() {
		ds, _ := s.Dataset(name)

		resampled, err := s.resampleDataset(ds, target)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to resample %v to %v", name, target.AreaID)
		}
		result.loaded[name] = resampled
	}
	return result, nil
}

func (s *MemoryScene) resampleDataset(ds *Dataset, target *area.AreaDefinition) (*Dataset, error) {
	if ds.Area.Equal(target) {
		return &Dataset{Name: ds.Name, Area: target, Data: ds.Data, Attrs: ds.Attrs}, nil
	}

	chunk := s.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}

	out := grid.New(target.Height, target.Width)
	err := grid.MapBlocks(grid.Chunks(target.Height, target.Width, chunk), s.Workers, func(b grid.Block) error {
		start := time.Now()
		defer func() {
			metrics.BlockDuration.WithLabelValues("resample").Observe(time.Since(start).Seconds())
		}()

		lons, lats, err := target.LonLats(b)
		if err != nil {
			return err
		}

		for r := 0; r < b.Rows; r++ {
			for c := 0; c < b.Cols; c++ {
				v := math.NaN()
				if col, row, ok := ds.Area.PixelFor(lons.At(r, c), lats.At(r, c)); ok {
					v = ds.Data.At(row, col)
				}
				out.Set(b.Row0+r, b.Col0+c, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debugf("Resampled %v from %v to %v", ds.Name, ds.Area.AreaID, target.AreaID)
	return &Dataset{Name: ds.Name, Area: target, Data: out, Attrs: ds.Attrs}, nil
}
