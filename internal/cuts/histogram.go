package cuts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/mdebony/ctapipe/internal/events"
)

// HistogramBin is one row of a binned response table: the raw and weighted
// number of selected events falling into [Low, High) of the binning
// variable.
type HistogramBin struct {
	Low       float64
	High      float64
	N         int
	NWeighted float64
}

// Histogram bins the rows of evs where the selected flag is set by the
// binColumn values, accumulating counts and weight sums per bin. Bin edges
// must be finite and strictly increasing.
func Histogram(evs *events.Table, binColumn string, edges []float64) ([]HistogramBin, error) {
	if len(edges) < 2 {
		return nil, events.Configf("histogram needs at least two bin edges")
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, events.Configf("histogram bin edge %d is not finite", i)
		}
		if i > 0 && e <= edges[i-1] {
			return nil, events.Configf("histogram bin edges must be strictly increasing")
		}
	}

	binValues, err := evs.Floats(binColumn)
	if err != nil {
		return nil, err
	}
	weights, err := evs.Floats("weight")
	if err != nil {
		return nil, err
	}
	selected, err := evs.Bools("selected")
	if err != nil {
		return nil, err
	}

	bins := make([]HistogramBin, len(edges)-1)
	weightSums := make([][]float64, len(bins))
	for i := range bins {
		bins[i].Low = edges[i]
		bins[i].High = edges[i+1]
	}
	for row, v := range binValues {
		if !selected[row] {
			continue
		}
		if v < edges[0] || v >= edges[len(edges)-1] {
			continue
		}
		bin := sort.SearchFloat64s(edges, v)
		if bin == len(edges) || edges[bin] > v {
			bin--
		}
		bins[bin].N++
		weightSums[bin] = append(weightSums[bin], weights[row])
	}
	for i := range bins {
		bins[i].NWeighted = floats.Sum(weightSums[i])
	}
	return bins, nil
}
