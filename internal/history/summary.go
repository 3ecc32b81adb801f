package history

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds statistics over the numeric cells of a row. N is zero when
// no cell is numeric.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Spread is Max - Min.
func (s Summary) Spread() float64 {
	return s.Max - s.Min
}

func summarize(runIDs []string, values map[string]string) Summary {
	var xs []float64
	for _, id := range runIDs {
		if v, ok := parseNumber(values[id]); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return Summary{}
	}

	s := Summary{N: len(xs), Min: floats.Min(xs), Max: floats.Max(xs)}
	if len(xs) == 1 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	return s
}
