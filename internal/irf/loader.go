// Package irf drives the response-tabulation analysis: reducing and
// reweighting each simulated population, stacking the background, applying
// the optimized binned cuts and producing binned response tables. The
// response formulas themselves (effective area, migration, sensitivity)
// live outside this module.
package irf

import (
	"fmt"

	"github.com/mdebony/ctapipe/internal/events"
	"github.com/mdebony/ctapipe/internal/monitoring"
	"github.com/mdebony/ctapipe/internal/spectral"
)

// Loader reduces one simulated population and reweights it to its target
// spectrum. The simulated spectrum is reconstructed from the thrown-event
// metadata, so populations with different simulation settings (e.g. protons
// and electrons) keep their own spectra even when later stacked.
type Loader struct {
	// Kind names the population: "gammas", "protons" or "electrons".
	Kind string
	// Source supplies the raw event chunks.
	Source events.ChunkSource
	// Reducer is the chunked reduction configuration for this population.
	Reducer *events.Reducer
	// SimInfo describes the thrown events of this population.
	SimInfo spectral.SimulatedEventsInfo
	// ObsTimeSeconds normalizes the simulated spectrum.
	ObsTimeSeconds float64
	// Target is the spectrum the population should represent after
	// weighting.
	Target spectral.Model
}

// Load reduces the population and applies the event weights. The offset
// bins are required when the target is point-like but the population was
// simulated diffuse; the reweighter enforces that.
func (l *Loader) Load(chunkSize int, fovOffsetBinsDeg []float64) (*events.Table, spectral.PowerLaw, error) {
	reduced, _, err := l.Reducer.Reduce(l.Source, chunkSize)
	if err != nil {
		return nil, spectral.PowerLaw{}, fmt.Errorf("reducing %s: %w", l.Kind, err)
	}

	simulated := spectral.PowerLawFromSimulation(l.SimInfo, l.ObsTimeSeconds)
	rw := spectral.Reweighter{
		Target:           l.Target,
		Simulated:        simulated,
		FovOffsetBinsDeg: fovOffsetBinsDeg,
	}
	if err := rw.Apply(reduced); err != nil {
		return nil, spectral.PowerLaw{}, fmt.Errorf("weighting %s: %w", l.Kind, err)
	}
	monitoring.Logf("loaded %d %s events", reduced.NumRows(), l.Kind)
	return reduced, simulated, nil
}

// StackBackground concatenates the reduced background populations into one
// table with the canonical reduced schema. With a single population the
// stack is a copy with canonical metadata.
func StackBackground(populations ...*events.Table) (*events.Table, error) {
	if len(populations) == 0 {
		return nil, events.Configf("no background populations to stack")
	}
	header, err := events.EmptyReducedTable().Keep(events.ReducedColumns...)
	if err != nil {
		return nil, err
	}
	return events.Vstack(header, populations...)
}
