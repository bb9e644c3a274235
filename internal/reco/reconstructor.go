package reco

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/mdebony/ctapipe/internal/events"
)

// Task distinguishes regression from binary classification.
type Task uint8

const (
	Regression Task = iota
	Classification
)

func (t Task) String() string {
	if t == Classification {
		return "classification"
	}
	return "regression"
}

// Reconstructor is a per-telescope-type model set. It owns its feature
// list, target column name and the quality criteria used to produce its
// training tables. Models are created empty at setup, fit once per
// cross-validation fold (on fresh instances, discarded after scoring) and
// once on the full dataset, which is the fit that gets persisted.
type Reconstructor struct {
	Task     Task
	Features []string
	Target   string
	Quality  events.CriteriaSet

	models map[string]Model
}

// NewEnergyRegressor builds a regressor set predicting true_energy.
func NewEnergyRegressor(features []string, quality events.CriteriaSet) *Reconstructor {
	return &Reconstructor{
		Task:     Regression,
		Features: append([]string(nil), features...),
		Target:   "true_energy",
		Quality:  quality,
		models:   make(map[string]Model),
	}
}

// NewParticleClassifier builds a classifier set predicting the binary
// true_shower_primary_id label (1 for the signal class).
func NewParticleClassifier(features []string, quality events.CriteriaSet) *Reconstructor {
	return &Reconstructor{
		Task:     Classification,
		Features: append([]string(nil), features...),
		Target:   "true_shower_primary_id",
		Quality:  quality,
		models:   make(map[string]Model),
	}
}

// TrainingColumns returns the columns a training table must carry.
func (r *Reconstructor) TrainingColumns() []string {
	return append(append([]string(nil), r.Features...), r.Target)
}

// newModel creates a fresh, unfit model for one fold or the final fit.
func (r *Reconstructor) newModel() Model {
	if r.Task == Classification {
		return &LogisticClassifier{}
	}
	return &LinearRegressor{}
}

// trainingMatrix extracts the design matrix and target vector from a
// reduced training table.
func (r *Reconstructor) trainingMatrix(table *events.Table) (*mat.Dense, []float64, error) {
	n := table.NumRows()
	x := mat.NewDense(n, len(r.Features), nil)
	for j, name := range r.Features {
		col, err := table.Floats(name)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < n; i++ {
			x.Set(i, j, col[i])
		}
	}
	target, err := table.Floats(r.Target)
	if err != nil {
		return nil, nil, err
	}
	y := append([]float64(nil), target...)

	if r.Task == Classification {
		if err := checkTwoClasses(y); err != nil {
			return nil, nil, err
		}
	}
	return x, y, nil
}

func checkTwoClasses(y []float64) error {
	seen := make(map[float64]bool, 2)
	for _, v := range y {
		seen[v] = true
	}
	if len(seen) < 2 {
		return events.Configf("only one class in training data")
	}
	return nil
}

// Fit trains the model for one telescope type on the full table, replacing
// any previous fit for that type.
func (r *Reconstructor) Fit(telescopeType string, table *events.Table) error {
	x, y, err := r.trainingMatrix(table)
	if err != nil {
		return err
	}
	model := r.newModel()
	if err := model.Fit(x, y); err != nil {
		return fmt.Errorf("fitting %s model for %s: %w", r.Task, telescopeType, err)
	}
	if r.models == nil {
		r.models = make(map[string]Model)
	}
	r.models[telescopeType] = model
	return nil
}

// Predict applies the trained model of one telescope type. Requesting a
// prediction before the full fit is a precondition error, never a stale
// result.
func (r *Reconstructor) Predict(telescopeType string, table *events.Table) ([]float64, error) {
	model, ok := r.models[telescopeType]
	if !ok {
		return nil, fmt.Errorf("model for telescope type %q is not trained yet", telescopeType)
	}
	x, _, err := r.predictionMatrix(table)
	if err != nil {
		return nil, err
	}
	return model.Predict(x), nil
}

func (r *Reconstructor) predictionMatrix(table *events.Table) (*mat.Dense, int, error) {
	n := table.NumRows()
	x := mat.NewDense(n, len(r.Features), nil)
	for j, name := range r.Features {
		col, err := table.Floats(name)
		if err != nil {
			return nil, 0, err
		}
		for i := 0; i < n; i++ {
			x.Set(i, j, col[i])
		}
	}
	return x, n, nil
}

// TelescopeTypes lists the types with a trained model.
func (r *Reconstructor) TelescopeTypes() []string {
	types := make([]string, 0, len(r.models))
	for t := range r.models {
		types = append(types, t)
	}
	return types
}

// artifact is the on-disk representation of a trained model set.
type artifact struct {
	Task     string                   `json:"task"`
	Features []string                 `json:"features"`
	Target   string                   `json:"target"`
	Models   map[string]modelArtifact `json:"models"`
}

type modelArtifact struct {
	Kind      string    `json:"kind"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Write persists the trained model set to path as JSON. Refuses to clobber
// an existing file unless overwrite is set.
func (r *Reconstructor) Write(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("output file %q exists, refusing to overwrite", path)
		}
	}
	art := artifact{
		Task:     r.Task.String(),
		Features: r.Features,
		Target:   r.Target,
		Models:   make(map[string]modelArtifact, len(r.models)),
	}
	for telType, model := range r.models {
		switch m := model.(type) {
		case *LinearRegressor:
			art.Models[telType] = modelArtifact{Kind: "linear", Coef: m.Coef, Intercept: m.Intercept}
		case *LogisticClassifier:
			art.Models[telType] = modelArtifact{Kind: "logistic", Coef: m.Coef, Intercept: m.Intercept}
		default:
			return fmt.Errorf("cannot serialize model of type %T", model)
		}
	}
	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a trained model set written by Write.
func Read(path string) (*Reconstructor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}
	r := &Reconstructor{
		Features: art.Features,
		Target:   art.Target,
		models:   make(map[string]Model, len(art.Models)),
	}
	if art.Task == Classification.String() {
		r.Task = Classification
	}
	for telType, m := range art.Models {
		switch m.Kind {
		case "linear":
			r.models[telType] = &LinearRegressor{Coef: m.Coef, Intercept: m.Intercept}
		case "logistic":
			r.models[telType] = &LogisticClassifier{Coef: m.Coef, Intercept: m.Intercept}
		default:
			return nil, fmt.Errorf("unknown model kind %q for telescope type %q", m.Kind, telType)
		}
	}
	return r, nil
}
