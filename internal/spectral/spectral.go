// Package spectral provides differential flux models for simulated and
// target event populations, and the event reweighting built on their ratio.
package spectral

import (
	"fmt"
	"math"
)

// FluxKind distinguishes point-source differential fluxes (per area, time
// and energy) from diffuse ones (additionally per solid angle).
type FluxKind uint8

const (
	PointSource FluxKind = iota
	Diffuse
)

// Model maps true energy in TeV to a differential flux. The absolute units
// cancel in weight ratios; the only requirement is that target and
// simulated spectra of a reweighting share them.
type Model interface {
	Flux(energyTeV float64) float64
	Kind() FluxKind
}

// PowerLaw is a differential power-law spectrum
// N * (E/E0)^index, with E0 = RefEnergy.
type PowerLaw struct {
	Normalization float64
	Index         float64
	RefEnergy     float64
	FluxKind      FluxKind
}

// Flux implements Model.
func (p PowerLaw) Flux(energyTeV float64) float64 {
	return p.Normalization * math.Pow(energyTeV/p.RefEnergy, p.Index)
}

// Kind implements Model.
func (p PowerLaw) Kind() FluxKind { return p.FluxKind }

// IntegrateCone integrates a diffuse power law over the solid angle of the
// field-of-view offset shell [lowDeg, highDeg), returning a point-source
// equivalent spectrum. Only defined for diffuse spectra.
func (p PowerLaw) IntegrateCone(lowDeg, highDeg float64) (PowerLaw, error) {
	if p.FluxKind != Diffuse {
		return PowerLaw{}, fmt.Errorf("cone integration requires a diffuse spectrum")
	}
	if highDeg <= lowDeg {
		return PowerLaw{}, fmt.Errorf("invalid cone shell [%g, %g)", lowDeg, highDeg)
	}
	omega := ConeSolidAngle(highDeg) - ConeSolidAngle(lowDeg)
	return PowerLaw{
		Normalization: p.Normalization * omega,
		Index:         p.Index,
		RefEnergy:     p.RefEnergy,
		FluxKind:      PointSource,
	}, nil
}

// LogParabola is a differential spectrum
// N * (E/E0)^(a + b*log10(E/E0)).
type LogParabola struct {
	Normalization float64
	A             float64
	B             float64
	RefEnergy     float64
	FluxKind      FluxKind
}

// Flux implements Model.
func (l LogParabola) Flux(energyTeV float64) float64 {
	e := energyTeV / l.RefEnergy
	return l.Normalization * math.Pow(e, l.A+l.B*math.Log10(e))
}

// Kind implements Model.
func (l LogParabola) Kind() FluxKind { return l.FluxKind }

// ConeSolidAngle returns the solid angle in steradians of a cone with the
// given opening radius in degrees.
func ConeSolidAngle(radiusDeg float64) float64 {
	return 2 * math.Pi * (1 - math.Cos(radiusDeg*math.Pi/180))
}

// CrabHegra is the HEGRA power-law fit of the Crab nebula spectrum, the
// conventional point-source reference for gamma rates. Units:
// cm^-2 s^-1 TeV^-1.
var CrabHegra = PowerLaw{
	Normalization: 2.83e-11,
	Index:         -2.62,
	RefEnergy:     1.0,
	FluxKind:      PointSource,
}

// IRFDocProton is the cosmic-ray proton reference spectrum used for
// background rates. Units: cm^-2 s^-1 TeV^-1 sr^-1.
var IRFDocProton = PowerLaw{
	Normalization: 9.8e-6,
	Index:         -2.62,
	RefEnergy:     1.0,
	FluxKind:      Diffuse,
}
