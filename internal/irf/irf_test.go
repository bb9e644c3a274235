package irf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdebony/ctapipe/internal/cuts"
	"github.com/mdebony/ctapipe/internal/events"
	"github.com/mdebony/ctapipe/internal/spectral"
)

// reducedFixture builds a canonical reduced table with n rows, unit weights
// and the given spread of true energies and offsets.
func reducedFixture(t *testing.T, n int) *events.Table {
	t.Helper()
	canonical := events.EmptyReducedTable()
	cols := make([]events.Column, 0, len(events.ReducedColumns))
	for _, name := range events.ReducedColumns {
		c := events.Column{Name: name, Kind: canonical.Col(name).Kind}
		for i := 0; i < n; i++ {
			switch {
			case c.Kind == events.Int:
				c.Ints = append(c.Ints, uint64(i))
			case name == "true_energy" || name == "reco_energy":
				c.Floats = append(c.Floats, 0.2+float64(i)*0.5)
			case name == "true_source_fov_offset":
				c.Floats = append(c.Floats, 0.5)
			case name == "gh_score":
				c.Floats = append(c.Floats, 0.9)
			case name == "theta":
				c.Floats = append(c.Floats, 0.05)
			case name == "weight":
				c.Floats = append(c.Floats, 1)
			default:
				c.Floats = append(c.Floats, float64(i))
			}
		}
		cols = append(cols, c)
	}
	tbl, err := events.NewTable(cols...)
	require.NoError(t, err)
	return tbl
}

func passthroughReducer(partition string) *events.Reducer {
	return &events.Reducer{Partition: partition}
}

func TestLoaderLoad(t *testing.T) {
	table := reducedFixture(t, 8)
	loader := &Loader{
		Kind:    "gammas",
		Source:  &events.SliceSource{Table: table},
		Reducer: passthroughReducer("gammas"),
		SimInfo: spectral.SimulatedEventsInfo{
			NShowers:      100000,
			EnergyMinTeV:  0.01,
			EnergyMaxTeV:  100,
			MaxImpactM:    800,
			SpectralIndex: -2,
		},
		ObsTimeSeconds: 50 * 3600,
		Target:         spectral.CrabHegra,
	}

	reduced, simulated, err := loader.Load(3, nil)
	require.NoError(t, err)
	require.Equal(t, 8, reduced.NumRows())
	require.Equal(t, spectral.PointSource, simulated.Kind())

	weight, err := reduced.Floats("weight")
	require.NoError(t, err)
	trueEnergy, err := reduced.Floats("true_energy")
	require.NoError(t, err)
	for i := range weight {
		require.Greater(t, weight[i], 0.0)
		require.InEpsilon(t, spectral.CrabHegra.Flux(trueEnergy[i])/simulated.Flux(trueEnergy[i]), weight[i], 1e-12)
	}
}

func TestLoaderDiffusePopulationNeedsOffsetBins(t *testing.T) {
	loader := &Loader{
		Kind:    "protons",
		Source:  &events.SliceSource{Table: reducedFixture(t, 4)},
		Reducer: passthroughReducer("protons"),
		SimInfo: spectral.SimulatedEventsInfo{
			NShowers:       100000,
			EnergyMinTeV:   0.01,
			EnergyMaxTeV:   100,
			MaxImpactM:     800,
			SpectralIndex:  -2,
			ViewconeMaxDeg: 10,
		},
		ObsTimeSeconds: 3600,
		Target:         spectral.CrabHegra,
	}

	_, _, err := loader.Load(10, nil)
	require.ErrorContains(t, err, "no fov offset bins")

	reduced, _, err := loader.Load(10, []float64{0, 1, 10})
	require.NoError(t, err)
	require.Equal(t, 4, reduced.NumRows())
}

func TestStackBackground(t *testing.T) {
	protons := reducedFixture(t, 3)
	electrons := reducedFixture(t, 2)

	stacked, err := StackBackground(protons, electrons)
	require.NoError(t, err)
	require.Equal(t, 5, stacked.NumRows())
	require.Equal(t, events.ReducedColumns, stacked.Names())
	require.Equal(t, "TeV", stacked.Col("true_energy").Unit)

	_, err = StackBackground()
	var confErr *events.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func optimizationFixture() *OptimizationResult {
	return &OptimizationResult{
		GHCuts: []cuts.Bin{
			{Low: 0.1, High: 1, Cut: 0.5},
			{Low: 1, High: 10, Cut: 0.8},
		},
		ThetaCuts: []cuts.Bin{
			{Low: 0.1, High: 10, Cut: 0.1},
		},
		FovOffsetBinsDeg:  []float64{0, 1},
		EnergyBinEdgesTeV: []float64{0.1, 1, 10},
	}
}

func TestTabulate(t *testing.T) {
	tabulator, err := optimizationFixture().Tabulator(false)
	require.NoError(t, err)

	signal := reducedFixture(t, 8)
	background := reducedFixture(t, 4)
	response, err := tabulator.Tabulate(signal, background)
	require.NoError(t, err)

	require.Len(t, response.Signal, 2)
	require.Len(t, response.Background, 2)

	totalSignal := 0
	for _, b := range response.Signal {
		totalSignal += b.N
		require.InDelta(t, float64(b.N), b.NWeighted, 1e-12, "unit weights")
	}
	require.Greater(t, totalSignal, 0)

	selected, err := signal.Bools("selected")
	require.NoError(t, err)
	require.Len(t, selected, 8, "selection flags are added to the input table")
}

func TestTabulateFullEnclosureSkipsThetaCut(t *testing.T) {
	result := optimizationFixture()
	result.ThetaCuts = nil
	tabulator, err := result.Tabulator(true)
	require.NoError(t, err)

	signal := reducedFixture(t, 6)
	response, err := tabulator.Tabulate(signal, nil)
	require.NoError(t, err)
	require.Nil(t, response.Background)
	require.False(t, signal.Has("selected_theta"))
}

func TestTabulatorPointLikeRequiresThetaCuts(t *testing.T) {
	result := optimizationFixture()
	result.ThetaCuts = nil
	_, err := result.Tabulator(false)
	var confErr *events.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Contains(t, err.Error(), "theta cut")
}

func TestLoadOptimizationResult(t *testing.T) {
	dir := t.TempDir()

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(dir, "cuts.json")
		content := `{
			"gh_cuts": [{"Low": 0.1, "High": 10, "Cut": 0.6}],
			"theta_cuts": [{"Low": 0.1, "High": 10, "Cut": 0.15}],
			"fov_offset_bins_deg": [0, 1],
			"energy_bin_edges_tev": [0.1, 1, 10]
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		result, err := LoadOptimizationResult(path)
		require.NoError(t, err)
		require.Len(t, result.GHCuts, 1)
		require.Equal(t, 0.6, result.GHCuts[0].Cut)
		require.Equal(t, []float64{0, 1}, result.FovOffsetBinsDeg)
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := LoadOptimizationResult(filepath.Join(dir, "cuts.yaml"))
		require.ErrorContains(t, err, ".json")
	})

	t.Run("missing required sections", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		_, err := LoadOptimizationResult(path)
		var confErr *events.ConfigurationError
		require.ErrorAs(t, err, &confErr)
	})
}
