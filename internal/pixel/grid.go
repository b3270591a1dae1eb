// Package pixel decodes the primary data unit of a FITS file into a grid
// of float64 samples and computes its summary statistics.
package pixel

import (
	"fmt"
	"math"
)

// Stats summarizes a grid. All fields are NaN for an empty grid.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Grid is a row-major width*height array of samples with BZERO applied.
// A Grid is never modified after it is returned.
type Grid struct {
	width  int
	height int
	values []float64
	stats  Stats
}

// NewGrid wraps values as a grid and computes its statistics. values is
// retained; the caller must not modify it afterwards.
func NewGrid(width, height int, values []float64) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadGeometry, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrBadGeometry, len(values), width, height)
	}

	acc := newAccumulator()
	for _, v := range values {
		acc.add(v)
	}
	return &Grid{
		width:  width,
		height: height,
		values: values,
		stats:  acc.finish(values),
	}, nil
}

func (g *Grid) Width() int   { return g.width }
func (g *Grid) Height() int  { return g.height }
func (g *Grid) Len() int     { return len(g.values) }
func (g *Grid) Stats() Stats { return g.stats }

// At returns the sample in column x of row y.
func (g *Grid) At(x, y int) float64 { return g.values[y*g.width+x] }

// Values returns the backing slice in row-major order. It is shared with
// the grid and must be treated as read-only.
func (g *Grid) Values() []float64 { return g.values }

// accumulator collects sum, min and max in the decode pass.
type accumulator struct {
	sum, min, max float64
	n             int
}

func newAccumulator() accumulator {
	return accumulator{min: math.Inf(1), max: math.Inf(-1)}
}

func (a *accumulator) add(v float64) {
	a.sum += v
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
	a.n++
}

// finish computes the mean and then the population standard deviation
// with a second pass over values.
func (a *accumulator) finish(values []float64) Stats {
	if a.n == 0 {
		nan := math.NaN()
		return Stats{Min: nan, Max: nan, Mean: nan, StdDev: nan}
	}

	mean := a.sum / float64(a.n)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return Stats{
		Min:    a.min,
		Max:    a.max,
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(a.n)),
	}
}
