// Package summary computes the robust statistics printed by the stats
// command and recorded in the render manifest.
package summary

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/AnyUserName/fitsview/internal/pixel"
)

// Summary holds order statistics over the finite samples of a grid.
// Fields are NaN when there are no finite samples or a percentile is
// undefined for the sample count.
type Summary struct {
	Count  int
	Median float64
	MAD    float64 // median absolute deviation from Median
	P01    float64
	P99    float64
}

// Of summarizes g. NaN and infinite samples are skipped.
func Of(g *pixel.Grid) Summary {
	data := make(stats.Float64Data, 0, g.Len())
	for _, v := range g.Values() {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	return compute(data)
}

func compute(data stats.Float64Data) Summary {
	s := Summary{Count: len(data)}
	s.Median = orNaN(stats.Median(data))
	s.MAD = orNaN(stats.MedianAbsoluteDeviation(data))
	s.P01 = orNaN(stats.Percentile(data, 1))
	s.P99 = orNaN(stats.Percentile(data, 99))
	return s
}

func orNaN(v float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}
