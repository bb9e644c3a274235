// Command train-model trains one reconstruction model per telescope type
// on reduced simulation tables: an energy regressor or a gamma/hadron
// classifier, selected with -task. It first cross-validates the model to
// estimate its quality, then performs a single full-data fit per telescope
// type, which is the model that gets written out. Cross-validation results
// are stored in the event database.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/mdebony/ctapipe/internal/eventdb"
	"github.com/mdebony/ctapipe/internal/events"
	"github.com/mdebony/ctapipe/internal/monitoring"
	"github.com/mdebony/ctapipe/internal/reco"
)

var (
	inputPath     = flag.String("input", "", "Path to the event database")
	task          = flag.String("task", "energy", "Model to train: energy (regressor) or classifier")
	eventsTable   = flag.String("events-table", "telescope_events", "Raw event table to train on")
	telTypeColumn = flag.String("type-column", "tel_type", "Column holding the telescope type")
	telTypes      = flag.String("types", "", "Comma-separated telescope types to train")
	featureList   = flag.String("features", "", "Comma-separated feature columns")
	criteriaPath  = flag.String("quality-criteria", "", "Optional JSON file with quality criteria")
	outputPath    = flag.String("output", "", "Output path for the trained model set")
	overwrite     = flag.Bool("overwrite", false, "Overwrite the output file if it exists")
	nEvents       = flag.Int("n-events", 0, "Number of events to sample per telescope type (0 = all)")
	chunkSize     = flag.Int("chunk-size", 100000, "How many events to load at once while selecting")
	nFolds        = flag.Int("cv-folds", 5, "Number of cross-validation folds")
	saveCV        = flag.Bool("cv-results", true, "Store fold metrics in the event database")
	seed          = flag.Int64("seed", 0, "Random seed for sampling and cross validation")
	verbose       = flag.Bool("verbose", false, "Enable chunk-level debug logging")
)

func main() {
	flag.Parse()
	monitoring.Verbose = *verbose
	if err := run(); err != nil {
		log.Fatalf("train-model: %v", err)
	}
}

func run() error {
	if *inputPath == "" || *outputPath == "" || *telTypes == "" || *featureList == "" {
		return fmt.Errorf("-input, -output, -types and -features are required")
	}
	features := splitList(*featureList)
	types := splitList(*telTypes)

	criteria, err := events.LoadCriteriaFile(*criteriaPath)
	if err != nil {
		return err
	}

	db, err := eventdb.Open(*inputPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rng := rand.New(rand.NewSource(*seed))
	var model *reco.Reconstructor
	var runKind string
	switch *task {
	case "energy":
		model = reco.NewEnergyRegressor(features, criteria)
		runKind = "train-energy-regressor"
	case "classifier":
		model = reco.NewParticleClassifier(features, criteria)
		runKind = "train-particle-classifier"
	default:
		return fmt.Errorf("unknown -task %q, want energy or classifier", *task)
	}
	validator := &reco.CrossValidator{NFolds: *nFolds, Rng: rng}

	runID, err := db.NewRun(runKind)
	if err != nil {
		return err
	}
	monitoring.Logf("training models for %d telescope types (run %s)", len(types), runID)

	var allFolds []reco.FoldMetrics
	for _, telType := range types {
		monitoring.Logf("loading events for %s", telType)
		table, err := readTrainingTable(db, telType, model, rng)
		if err != nil {
			return err
		}

		monitoring.Logf("cross validating on %d events for %s", table.NumRows(), telType)
		folds, err := validator.Run(telType, table, model)
		if err != nil {
			return err
		}
		allFolds = append(allFolds, folds...)

		monitoring.Logf("performing final fit for %s", telType)
		if err := model.Fit(telType, table); err != nil {
			return err
		}
	}

	if err := model.Write(*outputPath, *overwrite); err != nil {
		return err
	}
	if *saveCV {
		if err := db.WriteCVResults(runID, allFolds); err != nil {
			return err
		}
	}
	monitoring.Logf("wrote model set to %s", *outputPath)
	return nil
}

// readTrainingTable reduces one telescope type's rows to the training
// columns, drops rows the model could not digest, and optionally samples
// down to the requested event count.
func readTrainingTable(db *eventdb.DB, telType string, model *reco.Reconstructor, rng *rand.Rand) (*events.Table, error) {
	source, err := db.EventSource(*eventsTable, &eventdb.Selector{Column: *telTypeColumn, Value: telType})
	if err != nil {
		return nil, err
	}
	reducer := &events.Reducer{
		Criteria:  model.Quality,
		Columns:   model.TrainingColumns(),
		Partition: telType,
	}
	table, progress, err := reducer.Reduce(source, *chunkSize)
	if err != nil {
		return nil, err
	}
	table, err = events.DropInvalidRows(table, model.TrainingColumns(), progress)
	if err != nil {
		return nil, err
	}
	if *nEvents > 0 {
		table = events.Sample(table, *nEvents, rng)
	}
	return table, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
