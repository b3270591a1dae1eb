// Package zscale picks display limits for astronomical images from a
// random interior sub-sample and renders them to 8-bit intensities.
//
// The limits follow the zscale idea: sort the sample, fit a straight line
// of value against rank, steepen the slope by 1/contrast and centre the
// resulting window on the sample median, clipped to the data range.
package zscale

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/AnyUserName/fitsview/internal/pixel"
)

const (
	DefaultContrast = 0.25

	// MaxSamples caps the sub-sample size; otherwise it is a tenth of
	// the pixel count.
	MaxSamples = 10000

	// Epsilon is the smallest display range that is not treated as flat.
	Epsilon = 1e-12
)

var (
	// ErrInsufficientData is returned when the image has no interior
	// pixels to sample (width or height below 3).
	ErrInsufficientData = errors.New("image too small for adaptive scaling")

	ErrBadContrast = errors.New("contrast must be a positive finite number")
)

// Result holds the fitted limits and the rendered display.
type Result struct {
	Z1      float64 // black point
	Z2      float64 // white point
	Median  float64 // sample median
	Slope   float64 // fitted slope after contrast adjustment
	Samples int     // values that entered the fit
	Display *Display
}

// Scale computes z1 and z2 for g and renders it. src drives the choice of
// sample coordinates; a nil src is replaced by an entropy-seeded one.
func Scale(g *pixel.Grid, contrast float64, src Source) (*Result, error) {
	w, h := g.Width(), g.Height()
	if w < 3 || h < 3 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInsufficientData, w, h)
	}
	if !(contrast > 0) || math.IsInf(contrast, 1) {
		return nil, fmt.Errorf("%w: %v", ErrBadContrast, contrast)
	}
	if src == nil {
		src = EntropySource()
	}

	sorted := Sample(g, src)
	res := fit(sorted, g.Stats(), contrast)
	res.Display = render(g, res.Z1, res.Z2)
	return res, nil
}

// Linear renders g with z1 = min and z2 = max.
func Linear(g *pixel.Grid) *Result {
	s := g.Stats()
	return &Result{
		Z1:      s.Min,
		Z2:      s.Max,
		Median:  math.NaN(),
		Slope:   math.NaN(),
		Display: render(g, s.Min, s.Max),
	}
}

// Auto runs Scale and falls back to Linear when the image is too small
// to sample. The bool reports whether the fallback was used.
func Auto(g *pixel.Grid, contrast float64, src Source) (*Result, bool, error) {
	res, err := Scale(g, contrast, src)
	if errors.Is(err, ErrInsufficientData) {
		return Linear(g), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return res, false, nil
}

// Sample draws min(n/10, MaxSamples) interior coordinates (at least one)
// with replacement and returns their values sorted. For each draw x is
// taken before y. NaN values are dropped after drawing.
func Sample(g *pixel.Grid, src Source) []float64 {
	w, h := g.Width(), g.Height()
	n := g.Len() / 10
	if n > MaxSamples {
		n = MaxSamples
	}
	if n < 1 {
		n = 1
	}

	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x := 1 + src.Intn(w-2)
		y := 1 + src.Intn(h-2)
		if v := g.At(x, y); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// fit derives the limits from a sorted sample.
func fit(sorted []float64, s pixel.Stats, contrast float64) *Result {
	n := len(sorted)
	if n == 0 {
		return &Result{Z1: s.Min, Z2: s.Min, Median: math.NaN()}
	}

	mid := n / 2
	zmed := sorted[mid]
	slope, _ := leastSquares(sorted)
	slope /= contrast

	res := &Result{
		Z1:      math.Max(s.Min, zmed-float64(mid)*slope),
		Z2:      math.Min(s.Max, zmed+float64(mid)*slope),
		Median:  zmed,
		Slope:   slope,
		Samples: n,
	}
	if math.IsNaN(res.Z1) || math.IsNaN(res.Z2) {
		res.Z1, res.Z2 = zmed, zmed
	}
	return res
}

// leastSquares fits value = a*rank + b over ys with rank 0..n-1. A single
// point has no slope and yields a = 0.
func leastSquares(ys []float64) (a, b float64) {
	n := float64(len(ys))
	rank := make([]float64, len(ys))
	for i := range rank {
		rank[i] = float64(i)
	}

	sx := 0.5 * n * (n - 1)
	sxx := floats.Dot(rank, rank)
	sy := floats.Sum(ys)
	sxy := floats.Dot(rank, ys)

	den := n*sxx - sx*sx
	if den == 0 {
		return 0, sy / n
	}
	a = (n*sxy - sx*sy) / den
	b = (sy - a*sx) / n
	return a, b
}

// render maps every sample to [0, 255]. Output pixel (W-1-x, H-1-y)
// receives input sample (x, y).
func render(g *pixel.Grid, z1, z2 float64) *Display {
	w, h := g.Width(), g.Height()
	var byteScale float64
	if r := z2 - z1; r >= Epsilon {
		byteScale = 255 / r
	}

	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[(h-1-y)*w+(w-1-x)] = intensity(g.At(x, y), z1, byteScale)
		}
	}
	return &Display{width: w, height: h, pix: pix}
}

func intensity(v, z1, byteScale float64) uint8 {
	t := math.Round((v - z1) * byteScale)
	switch {
	case math.IsNaN(t) || t <= 0:
		return 0
	case t >= 255:
		return 255
	}
	return uint8(t)
}
