package spectral

import (
	"fmt"
	"math"

	"github.com/mdebony/ctapipe/internal/events"
)

// CalculateEventWeights returns target(E)/simulated(E) for every true
// energy.
func CalculateEventWeights(trueEnergyTeV []float64, target, simulated Model) []float64 {
	weights := make([]float64, len(trueEnergyTeV))
	for i, e := range trueEnergyTeV {
		weights[i] = target.Flux(e) / simulated.Flux(e)
	}
	return weights
}

// Reweighter rewrites the weight column of a reduced table so the sample
// statistically represents the target spectrum instead of the simulated
// one. Weights are overwritten, never accumulated, so reapplying with the
// same models reproduces the column exactly.
type Reweighter struct {
	Target    Model
	Simulated PowerLaw

	// FovOffsetBinsDeg are the field-of-view offset bin edges used to
	// integrate a diffuse simulated spectrum when the target describes a
	// point-like source. Required in exactly that combination.
	FovOffsetBinsDeg []float64
}

// Apply computes the per-event weights in place on t's weight column.
func (rw Reweighter) Apply(t *events.Table) error {
	if rw.Target == nil {
		return events.Configf("no target spectrum defined, need a spectrum for event weighting")
	}
	trueEnergy, err := t.Floats("true_energy")
	if err != nil {
		return err
	}
	weight, err := t.Floats("weight")
	if err != nil {
		return err
	}

	if rw.Target.Kind() == PointSource && rw.Simulated.Kind() == Diffuse {
		// A single global ratio is invalid here: the diffuse simulated
		// flux must first be integrated over each offset shell.
		if len(rw.FovOffsetBinsDeg) < 2 {
			return events.Configf("target spectrum is point-like, but no fov offset bins " +
				"for the integration of the simulated diffuse spectrum were given")
		}
		offsets, err := t.Floats("true_source_fov_offset")
		if err != nil {
			return err
		}
		edges := rw.FovOffsetBinsDeg
		for b := 0; b < len(edges)-1; b++ {
			low, high := edges[b], edges[b+1]
			integrated, err := rw.Simulated.IntegrateCone(low, high)
			if err != nil {
				return fmt.Errorf("integrating simulated spectrum over [%g, %g) deg: %w", low, high, err)
			}
			for i := range weight {
				if offsets[i] >= low && offsets[i] < high {
					weight[i] = rw.Target.Flux(trueEnergy[i]) / integrated.Flux(trueEnergy[i])
				}
			}
		}
		return rw.checkFinite(weight)
	}

	// One global ratio is correct for all other combinations; computing it
	// per bin would only repeat the same division.
	for i := range weight {
		weight[i] = rw.Target.Flux(trueEnergy[i]) / rw.Simulated.Flux(trueEnergy[i])
	}
	return rw.checkFinite(weight)
}

func (rw Reweighter) checkFinite(weights []float64) error {
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("event %d has invalid weight %g", i, w)
		}
	}
	return nil
}
