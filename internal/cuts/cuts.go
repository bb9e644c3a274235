// Package cuts evaluates energy-binned threshold cuts against event tables
// and derives the combined selection flags used for response tabulation.
package cuts

import (
	"fmt"
	"math"
	"sort"

	"github.com/mdebony/ctapipe/internal/events"
)

// Bin is one (low, high, cut) row of a binned cut table. The bin covers
// [Low, High) of the binning variable.
type Bin struct {
	Low  float64
	High float64
	Cut  float64
}

// Operator compares an event value against a bin's cut threshold.
type Operator uint8

const (
	// GreaterEqual keeps events at or above the cut, e.g. classifier
	// scores.
	GreaterEqual Operator = iota
	// LessEqual keeps events at or below the cut, e.g. angular offsets.
	LessEqual
)

func (op Operator) apply(value, cut float64) bool {
	if op == GreaterEqual {
		return value >= cut
	}
	return value <= cut
}

// Table is a validated sequence of contiguous cut bins over one monotone
// binning variable, typically reconstructed energy. Gaps or unordered
// edges are rejected at construction so that evaluation never has to guess
// about uncovered ranges inside the table: the only uncovered region is
// outside [first.Low, last.High), and events there fail closed.
type Table struct {
	bins []Bin
	lows []float64
}

// New validates and builds a binned cut table.
func New(bins []Bin) (*Table, error) {
	if len(bins) == 0 {
		return nil, events.Configf("binned cut table has no bins")
	}
	for i, b := range bins {
		if !(b.High > b.Low) {
			return nil, events.Configf("cut bin %d has non-increasing edges [%g, %g)", i, b.Low, b.High)
		}
		if math.IsNaN(b.Cut) || math.IsInf(b.Cut, 0) {
			return nil, events.Configf("cut bin %d has non-finite threshold", i)
		}
		if i > 0 && b.Low != bins[i-1].High {
			return nil, events.Configf("cut bins %d and %d leave the range [%g, %g) uncovered",
				i-1, i, bins[i-1].High, b.Low)
		}
	}
	t := &Table{bins: append([]Bin(nil), bins...)}
	t.lows = make([]float64, len(t.bins))
	for i, b := range t.bins {
		t.lows[i] = b.Low
	}
	return t, nil
}

// Range returns the covered range [low, high) of the binning variable.
func (t *Table) Range() (low, high float64) {
	return t.bins[0].Low, t.bins[len(t.bins)-1].High
}

// Bins returns a copy of the cut bins.
func (t *Table) Bins() []Bin { return append([]Bin(nil), t.bins...) }

// Evaluate assigns each event to a bin by binValues and tests values
// against that bin's threshold with op. Events whose binning variable falls
// outside the covered range are excluded, never silently passed.
func (t *Table) Evaluate(values, binValues []float64, op Operator) ([]bool, error) {
	if len(values) != len(binValues) {
		return nil, fmt.Errorf("value columns have different lengths: %d vs %d", len(values), len(binValues))
	}
	low, high := t.Range()
	mask := make([]bool, len(values))
	for i, bv := range binValues {
		if bv < low || bv >= high || math.IsNaN(bv) {
			continue // fail closed outside the table
		}
		// Index of the bin with the largest Low <= bv.
		bin := sort.SearchFloat64s(t.lows, bv)
		if bin == len(t.lows) || t.lows[bin] > bv {
			bin--
		}
		mask[i] = op.apply(values[i], t.bins[bin].Cut)
	}
	return mask, nil
}
