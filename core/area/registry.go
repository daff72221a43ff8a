package area

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gerritholl/fcitools/core/fileaccess"
	"github.com/gerritholl/fcitools/core/logger"
	"github.com/gerritholl/fcitools/core/projection"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrUnknownArea = errors.New("unknown area")

// One entry of a pyresample style areas file
type areaYAML struct {
	Description string      `yaml:"description"`
	Projection  interface{} `yaml:"projection"`
	Shape       struct {
		Height int `yaml:"height"`
		Width  int `yaml:"width"`
	} `yaml:"shape"`
	AreaExtent interface{} `yaml:"area_extent"`
}

// LoadAreasFile - reads every area in a YAML areas file
func LoadAreasFile(fs fileaccess.FileAccess, bucket string, path string) (map[string]*AreaDefinition, error) {
	data, err := fs.ReadObject(bucket, path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read areas file %v", path)
	}

	areas, err := ParseAreas(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse areas file %v", path)
	}
	return areas, nil
}

// ParseAreas - parses the contents of a YAML areas file
func ParseAreas(data []byte) (map[string]*AreaDefinition, error) {
	entries := map[string]areaYAML{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	result := map[string]*AreaDefinition{}
	for name, entry := range entries {
		params, err := projParamsFromYAML(entry.Projection)
		if err != nil {
			return nil, errors.Wrapf(err, "Area %v", name)
		}

		extent, err := extentFromYAML(entry.AreaExtent)
		if err != nil {
			return nil, errors.Wrapf(err, "Area %v", name)
		}

		a, err := NewAreaDefinition(name, entry.Description, params, entry.Shape.Width, entry.Shape.Height, extent)
		if err != nil {
			return nil, err
		}
		result[name] = a
	}
	return result, nil
}

// projection is either a PROJ string or a mapping of parameters
func projParamsFromYAML(v interface{}) (map[string]string, error) {
	switch p := v.(type) {
	case string:
		return projection.ParseProjString(p), nil
	case map[string]interface{}:
		result := map[string]string{}
		for k, val := range p {
			result[k] = yamlScalarString(val)
		}
		return result, nil
	}
	return nil, fmt.Errorf("projection must be a PROJ string or a mapping, got %T", v)
}

// area_extent is either [x_ll, y_ll, x_ur, y_ur] or a mapping with lower_left_xy and upper_right_xy
func extentFromYAML(v interface{}) (Extent, error) {
	switch e := v.(type) {
	case []interface{}:
		vals, err := yamlFloats(e, 4)
		if err != nil {
			return Extent{}, err
		}
		return Extent{vals[0], vals[1], vals[2], vals[3]}, nil
	case map[string]interface{}:
		ll, okLL := e["lower_left_xy"].([]interface{})
		ur, okUR := e["upper_right_xy"].([]interface{})
		if !okLL || !okUR {
			return Extent{}, fmt.Errorf("area_extent needs lower_left_xy and upper_right_xy")
		}
		llv, err := yamlFloats(ll, 2)
		if err != nil {
			return Extent{}, err
		}
		urv, err := yamlFloats(ur, 2)
		if err != nil {
			return Extent{}, err
		}
		return Extent{llv[0], llv[1], urv[0], urv[1]}, nil
	}
	return Extent{}, fmt.Errorf("area_extent must be a list or a mapping, got %T", v)
}

func yamlFloats(items []interface{}, n int) ([]float64, error) {
	if len(items) != n {
		return nil, fmt.Errorf("expected %v values, got %v", n, len(items))
	}
	result := make([]float64, n)
	for c, item := range items {
		f, err := strconv.ParseFloat(yamlScalarString(item), 64)
		if err != nil {
			return nil, err
		}
		result[c] = f
	}
	return result, nil
}

func yamlScalarString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// Registry - named areas, merged from one or more areas files
type Registry struct {
	areas map[string]*AreaDefinition
}

func NewRegistry() *Registry {
	return &Registry{areas: map[string]*AreaDefinition{}}
}

// LoadRegistry - loads the files in order, areas in later files replace same-named ones
// from earlier files
func LoadRegistry(fs fileaccess.FileAccess, bucket string, paths []string, log logger.ILogger) (*Registry, error) {
	reg := NewRegistry()
	for _, p := range paths {
		areas, err := LoadAreasFile(fs, bucket, p)
		if err != nil {
			return nil, err
		}

		for name, a := range areas {
			if _, exists := reg.areas[name]; exists {
				log.Debugf("Area %v from %v replaces earlier definition", name, p)
			}
			reg.areas[name] = a
		}
		log.Debugf("Loaded %v areas from %v", len(areas), p)
	}
	return reg, nil
}

func (r *Registry) Put(a *AreaDefinition) {
	r.areas[a.AreaID] = a
}

// Get - looks up an area by name
func (r *Registry) Get(name string) (*AreaDefinition, error) {
	a, ok := r.areas[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownArea, name)
	}
	return a, nil
}

// Names - sorted area names
func (r *Registry) Names() []string {
	result := make([]string, 0, len(r.areas))
	for name := range r.areas {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
