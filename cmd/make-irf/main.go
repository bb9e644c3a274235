// Command make-irf reduces and reweights the simulated gamma, proton and
// electron populations, applies the externally optimized binned cuts and
// stores binned response tables in the event database. Gammas are weighted
// to the HEGRA Crab spectrum; the hadronic and electron backgrounds to
// their cosmic-ray reference spectra.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/mdebony/ctapipe/internal/eventdb"
	"github.com/mdebony/ctapipe/internal/events"
	"github.com/mdebony/ctapipe/internal/irf"
	"github.com/mdebony/ctapipe/internal/monitoring"
	"github.com/mdebony/ctapipe/internal/spectral"
)

var (
	inputPath     = flag.String("input", "", "Path to the event database")
	cutsPath      = flag.String("cuts", "", "JSON file with the optimized cuts and binning")
	criteriaPath  = flag.String("quality-criteria", "", "Optional JSON file with quality criteria")
	gammaTable    = flag.String("gamma-table", "gammas", "Raw gamma event table")
	protonTable   = flag.String("proton-table", "", "Raw proton event table (empty to skip)")
	electronTable = flag.String("electron-table", "", "Raw electron event table (empty to skip)")
	obsTimeHours  = flag.Float64("obs-time-hours", 50, "Observation time the weights normalize to")
	fullEnclosure = flag.Bool("full-enclosure", false, "Skip the angular cut and keep the full point spread function")
	doBackground  = flag.Bool("background", true, "Tabulate the background response")
	chunkSize     = flag.Int("chunk-size", 100000, "How many events to load at once while selecting")
	electronNorm  = flag.Float64("electron-norm", 0, "Electron spectrum normalization at 1 TeV in 1/(TeV cm2 s sr); 0 disables electron weighting")
	electronIndex = flag.Float64("electron-index", -3.43, "Electron spectrum spectral index")
	saveReduced   = flag.Bool("save-reduced", false, "Also persist the reduced event tables")
	verbose       = flag.Bool("verbose", false, "Enable chunk-level debug logging")
)

func main() {
	flag.Parse()
	monitoring.Verbose = *verbose
	if err := run(); err != nil {
		log.Fatalf("make-irf: %v", err)
	}
}

func run() error {
	if *inputPath == "" || *cutsPath == "" {
		return fmt.Errorf("-input and -cuts are required")
	}
	if *doBackground && *protonTable == "" && *electronTable == "" {
		return fmt.Errorf("background tabulation requested but no background tables given")
	}

	result, err := irf.LoadOptimizationResult(*cutsPath)
	if err != nil {
		return err
	}
	criteria, err := events.LoadCriteriaFile(*criteriaPath)
	if err != nil {
		return err
	}

	db, err := eventdb.Open(*inputPath)
	if err != nil {
		return err
	}
	defer db.Close()

	obsTimeSeconds := *obsTimeHours * 3600

	signal, err := loadPopulation(db, "gammas", *gammaTable, criteria, spectral.CrabHegra, result, obsTimeSeconds)
	if err != nil {
		return err
	}

	var background *events.Table
	if *doBackground {
		var populations []*events.Table
		if *protonTable != "" {
			protons, err := loadPopulation(db, "protons", *protonTable, criteria, spectral.IRFDocProton, result, obsTimeSeconds)
			if err != nil {
				return err
			}
			populations = append(populations, protons)
		}
		if *electronTable != "" {
			if *electronNorm <= 0 {
				return fmt.Errorf("-electron-norm is required with -electron-table")
			}
			spectrum := spectral.PowerLaw{
				Normalization: *electronNorm,
				Index:         *electronIndex,
				RefEnergy:     1,
				FluxKind:      spectral.Diffuse,
			}
			electrons, err := loadPopulation(db, "electrons", *electronTable, criteria, spectrum, result, obsTimeSeconds)
			if err != nil {
				return err
			}
			populations = append(populations, electrons)
		}
		background, err = irf.StackBackground(populations...)
		if err != nil {
			return err
		}
	}

	tabulator, err := result.Tabulator(*fullEnclosure)
	if err != nil {
		return err
	}
	response, err := tabulator.Tabulate(signal, background)
	if err != nil {
		return err
	}

	runID, err := db.NewRun("make-irf")
	if err != nil {
		return err
	}
	if err := db.WriteResponseBins(runID, "signal", response.Signal); err != nil {
		return err
	}
	if background != nil {
		if err := db.WriteResponseBins(runID, "background", response.Background); err != nil {
			return err
		}
	}
	if *saveReduced {
		if err := db.SaveReducedEvents(runID, "signal", signal); err != nil {
			return err
		}
		if background != nil {
			if err := db.SaveReducedEvents(runID, "background", background); err != nil {
				return err
			}
		}
	}
	monitoring.Logf("wrote response tables for run %s", runID)
	return nil
}

// loadPopulation reduces, derives and reweights one simulated population
// using its stored thrown-event metadata.
func loadPopulation(db *eventdb.DB, kind, table string, criteria events.CriteriaSet, target spectral.Model, result *irf.OptimizationResult, obsTimeSeconds float64) (*events.Table, error) {
	simInfo, err := db.SimulationInfo(kind)
	if err != nil {
		return nil, err
	}
	source, err := db.EventSource(table, nil)
	if err != nil {
		return nil, err
	}
	normalizer := events.DefaultNormalizer()
	loader := &irf.Loader{
		Kind:   kind,
		Source: source,
		Reducer: &events.Reducer{
			Normalizer: &normalizer,
			Derive:     true,
			Criteria:   criteria,
			Partition:  kind,
		},
		SimInfo:        simInfo,
		ObsTimeSeconds: obsTimeSeconds,
		Target:         target,
	}
	reduced, _, err := loader.Load(*chunkSize, result.FovOffsetBinsDeg)
	if err != nil {
		return nil, err
	}
	return reduced, nil
}
