package irf

import (
	"github.com/mdebony/ctapipe/internal/cuts"
	"github.com/mdebony/ctapipe/internal/events"
	"github.com/mdebony/ctapipe/internal/monitoring"
)

// ResponseTabulator applies the optimized binned cuts to the signal and
// background tables and produces per-reco-energy-bin statistics of the
// selected events.
type ResponseTabulator struct {
	GHCuts    *cuts.Table
	ThetaCuts *cuts.Table
	// FullEnclosure selects classifier-cut-only selection; otherwise the
	// angular cut is applied as well.
	FullEnclosure bool
	// EnergyBinEdgesTeV are the reconstructed-energy bin edges of the
	// response tables.
	EnergyBinEdgesTeV []float64
}

// ResponseTable holds the binned statistics of one tabulation.
type ResponseTable struct {
	Signal     []cuts.HistogramBin
	Background []cuts.HistogramBin
}

// Tabulate adds the selection flags to both tables and bins the selected
// events by reconstructed energy. Background may be nil when no background
// populations were supplied.
func (rt *ResponseTabulator) Tabulate(signal, background *events.Table) (*ResponseTable, error) {
	if err := cuts.ApplySelections(signal, rt.GHCuts, rt.ThetaCuts, rt.FullEnclosure); err != nil {
		return nil, err
	}
	out := &ResponseTable{}
	var err error
	out.Signal, err = cuts.Histogram(signal, "reco_energy", rt.EnergyBinEdgesTeV)
	if err != nil {
		return nil, err
	}

	if background != nil {
		if err := cuts.ApplySelections(background, rt.GHCuts, rt.ThetaCuts, rt.FullEnclosure); err != nil {
			return nil, err
		}
		out.Background, err = cuts.Histogram(background, "reco_energy", rt.EnergyBinEdgesTeV)
		if err != nil {
			return nil, err
		}
		monitoring.Logf("keeping %d signal, %d background events",
			countSelected(signal), countSelected(background))
	} else {
		monitoring.Logf("keeping %d signal events", countSelected(signal))
	}
	return out, nil
}

func countSelected(t *events.Table) int {
	selected, err := t.Bools("selected")
	if err != nil {
		return 0
	}
	n := 0
	for _, s := range selected {
		if s {
			n++
		}
	}
	return n
}
