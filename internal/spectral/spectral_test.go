package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPowerLawFlux(t *testing.T) {
	p := PowerLaw{Normalization: 2e-11, Index: -2.5, RefEnergy: 1, FluxKind: PointSource}

	require.Equal(t, 2e-11, p.Flux(1), "flux at the reference energy is the normalization")
	require.InEpsilon(t, 2e-11*math.Pow(10, -2.5), p.Flux(10), 1e-12)
	require.InEpsilon(t, 2e-11*math.Pow(0.1, -2.5), p.Flux(0.1), 1e-12)
}

func TestLogParabolaFlux(t *testing.T) {
	// With B = 0 a log parabola degenerates to a power law.
	l := LogParabola{Normalization: 3e-11, A: -2.4, B: 0, RefEnergy: 1, FluxKind: PointSource}
	p := PowerLaw{Normalization: 3e-11, Index: -2.4, RefEnergy: 1, FluxKind: PointSource}
	for _, e := range []float64{0.05, 0.5, 1, 5, 50} {
		require.InEpsilon(t, p.Flux(e), l.Flux(e), 1e-12)
	}

	curved := LogParabola{Normalization: 3e-11, A: -2.4, B: -0.2, RefEnergy: 1}
	require.Equal(t, 3e-11, curved.Flux(1))
	require.Less(t, curved.Flux(10), p.Flux(10), "negative curvature steepens the spectrum")
}

func TestConeSolidAngle(t *testing.T) {
	require.Equal(t, 0.0, ConeSolidAngle(0))
	require.InEpsilon(t, 2*math.Pi, ConeSolidAngle(90), 1e-12)
	require.InEpsilon(t, 4*math.Pi, ConeSolidAngle(180), 1e-12)
}

func TestIntegrateCone(t *testing.T) {
	diffuse := PowerLaw{Normalization: 1e-5, Index: -2.6, RefEnergy: 1, FluxKind: Diffuse}

	integrated, err := diffuse.IntegrateCone(0, 1)
	require.NoError(t, err)
	require.Equal(t, PointSource, integrated.Kind())
	omega := ConeSolidAngle(1)
	require.InEpsilon(t, 1e-5*omega, integrated.Normalization, 1e-12)
	require.Equal(t, diffuse.Index, integrated.Index)

	// An offset shell integrates only the ring between the two radii.
	shell, err := diffuse.IntegrateCone(1, 2)
	require.NoError(t, err)
	require.InEpsilon(t, 1e-5*(ConeSolidAngle(2)-ConeSolidAngle(1)), shell.Normalization, 1e-12)

	_, err = PowerLaw{FluxKind: PointSource}.IntegrateCone(0, 1)
	require.Error(t, err, "point-source spectra have no solid-angle density")

	_, err = diffuse.IntegrateCone(2, 2)
	require.Error(t, err, "empty shell")
}

func TestPowerLawFromSimulation(t *testing.T) {
	info := SimulatedEventsInfo{
		NShowers:      1e6,
		EnergyMinTeV:  0.01,
		EnergyMaxTeV:  100,
		MaxImpactM:    500,
		SpectralIndex: -2,
	}

	t.Run("point-like", func(t *testing.T) {
		p := PowerLawFromSimulation(info, 3600)
		require.Equal(t, PointSource, p.Kind())
		require.Equal(t, -2.0, p.Index)

		// Integrating the spectrum over energy, area and time must give
		// back the number of thrown showers.
		area := math.Pi * math.Pow(info.MaxImpactM*100, 2)
		integral := p.Normalization / (p.Index + 1) *
			(math.Pow(info.EnergyMaxTeV, p.Index+1) - math.Pow(info.EnergyMinTeV, p.Index+1))
		require.InEpsilon(t, float64(info.NShowers), integral*area*3600, 1e-9)
	})

	t.Run("diffuse", func(t *testing.T) {
		diffuseInfo := info
		diffuseInfo.ViewconeMaxDeg = 10
		p := PowerLawFromSimulation(diffuseInfo, 3600)
		require.Equal(t, Diffuse, p.Kind())

		point := PowerLawFromSimulation(info, 3600)
		omega := ConeSolidAngle(10)
		require.InEpsilon(t, point.Normalization/omega, p.Normalization, 1e-12)
	})
}

func TestSimulatedEventsInfoPointLike(t *testing.T) {
	require.True(t, SimulatedEventsInfo{}.PointLike())
	require.True(t, SimulatedEventsInfo{ViewconeMinDeg: 2, ViewconeMaxDeg: 2}.PointLike())
	require.False(t, SimulatedEventsInfo{ViewconeMaxDeg: 10}.PointLike())
}
