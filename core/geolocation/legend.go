package geolocation

import (
	"math"

	"github.com/gerritholl/fcitools/core/grid"
	"github.com/pkg/errors"
)

var ErrInvalidLegendSpec = errors.New("invalid legend specification")

// Range - closed interval, Min is drawn at the left/bottom of a plot axis
type Range struct {
	Min float64
	Max float64
}

func (r Range) valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && !math.IsInf(r.Min, 0) && !math.IsInf(r.Max, 0) && r.Min != r.Max
}

// LegendSpec - what a legend covers: N steps along each axis, for the angle range in degrees
// and the distance range in metres
type LegendSpec struct {
	N         int
	Angles    Range
	Distances Range
}

func DefaultLegendSpec() LegendSpec {
	return LegendSpec{
		N:         1000,
		Angles:    Range{Min: -180, Max: 180},
		Distances: Range{Min: 0, Max: 100},
	}
}

func (s LegendSpec) validate() error {
	if s.N < 2 {
		return errors.Wrapf(ErrInvalidLegendSpec, "need at least 2 steps, got %v", s.N)
	}
	if !s.Angles.valid() {
		return errors.Wrapf(ErrInvalidLegendSpec, "angle range %v", s.Angles)
	}
	if !s.Distances.valid() {
		return errors.Wrapf(ErrInvalidLegendSpec, "distance range %v", s.Distances)
	}
	return nil
}

// Legend - a 2-D colour bar: the colour of every heading/distance combination. Row i of Field
// is distance step i (Distances.Min first), column j is angle step j (Angles.Min first)
type Legend struct {
	Spec  LegendSpec
	Field *ColorField
}

// BuildLegend - encodes an N x N lattice of headings and distances with DefaultScale
func BuildLegend(spec LegendSpec) (*Legend, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	angles := grid.Linspace(spec.Angles.Min, spec.Angles.Max, spec.N)
	distances := grid.Linspace(spec.Distances.Min, spec.Distances.Max, spec.N)

	heading := grid.New(spec.N, spec.N)
	distance := grid.New(spec.N, spec.N)
	for r := 0; r < spec.N; r++ {
		for c := 0; c < spec.N; c++ {
			heading.Set(r, c, angles[c])
			distance.Set(r, c, distances[r])
		}
	}

	return &Legend{Spec: spec, Field: encodeGrids(heading, distance, DefaultScale)}, nil
}

// Plot - figure of this legend, labelled with the ranges it was built for
func (l *Legend) Plot() (*Figure, error) {
	return PlotLegend(l.Field, l.Spec.Angles, l.Spec.Distances)
}

// PlotLegend - figure showing a legend field with its axes labelled. The field carries no
// coordinates, so the ranges must be the ones it was built with; this can't be checked here.
// Use Legend.Plot where possible
func PlotLegend(field *ColorField, angleRange Range, distanceRange Range) (*Figure, error) {
	if field == nil || field.Rows == 0 || field.Cols == 0 {
		return nil, errors.Wrap(ErrInvalidLegendSpec, "empty legend field")
	}
	if !angleRange.valid() {
		return nil, errors.Wrapf(ErrInvalidLegendSpec, "angle range %v", angleRange)
	}
	if !distanceRange.valid() {
		return nil, errors.Wrapf(ErrInvalidLegendSpec, "distance range %v", distanceRange)
	}

	return &Figure{
		Image:  field,
		XLim:   angleRange,
		YLim:   distanceRange,
		Aspect: "auto",
		Origin: "lower",
		XLabel: "direction / degrees",
		YLabel: "distance / m",
	}, nil
}
