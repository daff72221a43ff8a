// Package grid holds the row-major 2-D float grids every other package passes around,
// plus the block decomposition used to process them in parallel.
package grid

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Grid - rows x cols of float64, row-major. NaN means "no data"
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// New - grid of zeros
func New(rows int, cols int) *Grid {
	if rows < 0 || cols < 0 {
		rows, cols = 0, 0
	}
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// NewFilled - grid where every element is v
func NewFilled(rows int, cols int, v float64) *Grid {
	g := New(rows, cols)
	for c := range g.Data {
		g.Data[c] = v
	}
	return g
}

// FromRows - builds a grid from a slice of equal length rows
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}

	g := New(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Cols {
			return nil, errors.Errorf("Row %v has %v columns, expected %v", r, len(row), g.Cols)
		}
		copy(g.Data[r*g.Cols:], row)
	}
	return g, nil
}

func (g *Grid) At(row int, col int) float64 {
	return g.Data[row*g.Cols+col]
}

func (g *Grid) Set(row int, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

// SameShape - true if both grids have the same rows and cols
func (g *Grid) SameShape(other *Grid) bool {
	return other != nil && g.Rows == other.Rows && g.Cols == other.Cols
}

func (g *Grid) Shape() string {
	return fmt.Sprintf("(%v, %v)", g.Rows, g.Cols)
}

// MinMax - range of the finite values. ok is false if there are none
func (g *Grid) MinMax() (min float64, max float64, ok bool) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}
