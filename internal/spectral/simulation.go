package spectral

import "math"

// SimulatedEventsInfo summarizes the thrown-event population of one
// simulated input: how many showers were generated, over which energy
// range and scatter area, with which spectral slope, and into which
// viewcone.
type SimulatedEventsInfo struct {
	NShowers       int64
	EnergyMinTeV   float64
	EnergyMaxTeV   float64
	MaxImpactM     float64
	SpectralIndex  float64
	ViewconeMinDeg float64
	ViewconeMaxDeg float64
}

// PointLike reports whether the population was simulated at a single point
// in the field of view rather than over a viewcone.
func (s SimulatedEventsInfo) PointLike() bool {
	return s.ViewconeMaxDeg == s.ViewconeMinDeg
}

// PowerLawFromSimulation reconstructs the differential spectrum the thrown
// events follow, normalized to the given observation time in seconds. The
// result is diffuse when the population was simulated over a viewcone and
// point-source-like otherwise.
func PowerLawFromSimulation(info SimulatedEventsInfo, obsTimeSeconds float64) PowerLaw {
	const refEnergy = 1.0 // TeV

	index := info.SpectralIndex
	// Scatter area in cm^2, matching the flux unit convention of the
	// reference spectra.
	impactCm := info.MaxImpactM * 100
	area := math.Pi * impactCm * impactCm

	delta := math.Pow(info.EnergyMaxTeV, index+1) - math.Pow(info.EnergyMinTeV, index+1)
	norm := (index + 1) * math.Pow(refEnergy, index) * float64(info.NShowers) /
		(area * obsTimeSeconds * delta)

	kind := PointSource
	if !info.PointLike() {
		omega := ConeSolidAngle(info.ViewconeMaxDeg) - ConeSolidAngle(info.ViewconeMinDeg)
		norm /= omega
		kind = Diffuse
	}

	return PowerLaw{
		Normalization: norm,
		Index:         index,
		RefEnergy:     refEnergy,
		FluxKind:      kind,
	}
}
