package reco

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mdebony/ctapipe/internal/events"
	"github.com/mdebony/ctapipe/internal/monitoring"
)

// FoldMetrics is one cross-validation record: the scores of one fold for
// one telescope type.
type FoldMetrics struct {
	TelescopeType string
	Fold          int
	Metrics       map[string]float64
}

// CrossValidator partitions a training table into k seeded folds, fits a
// fresh model per fold on the remaining k-1 folds, scores it on the
// held-out fold and collects one metrics record per fold. The
// reconstructor passed to Run is never fit by the validator; the caller
// performs exactly one final full-data fit afterwards, and that is the
// model that gets persisted.
type CrossValidator struct {
	// NFolds is the fold count k; zero selects the default of 5.
	NFolds int
	// Rng is the seeded generator for fold assignment. Passing it
	// explicitly keeps fold assignment reproducible regardless of what
	// else draws random numbers during the run.
	Rng *rand.Rand
}

// Run cross-validates rec's model family on one per-telescope-type table.
func (cv *CrossValidator) Run(telescopeType string, table *events.Table, rec *Reconstructor) ([]FoldMetrics, error) {
	k := cv.NFolds
	if k == 0 {
		k = 5
	}
	if cv.Rng == nil {
		return nil, events.Configf("cross validation requires a seeded random generator")
	}
	n := table.NumRows()
	if n < k {
		return nil, events.Configf("too few events for %d-fold cross validation: %d", k, n)
	}

	x, y, err := rec.trainingMatrix(table)
	if err != nil {
		return nil, err
	}

	folds := foldIndices(n, k, cv.Rng)
	records := make([]FoldMetrics, 0, k)
	for f, test := range folds {
		train := make([]int, 0, n-len(test))
		for other, idx := range folds {
			if other != f {
				train = append(train, idx...)
			}
		}

		model := rec.newModel()
		if err := model.Fit(rows(x, train), values(y, train)); err != nil {
			return nil, fmt.Errorf("fitting fold %d for %s: %w", f, telescopeType, err)
		}
		predicted := model.Predict(rows(x, test))
		truth := values(y, test)

		var metrics map[string]float64
		if rec.Task == Classification {
			metrics = classificationMetrics(truth, predicted)
		} else {
			metrics = regressionMetrics(truth, predicted)
		}
		records = append(records, FoldMetrics{TelescopeType: telescopeType, Fold: f, Metrics: metrics})
		monitoring.Debugf("%s fold %d: %v", telescopeType, f, metrics)
	}
	return records, nil
}

// foldIndices assigns every row to exactly one of k folds using a seeded
// permutation, so the partition is reproducible for a given seed and table
// size and the held-out sets are disjoint and exhaustive.
func foldIndices(n, k int, rng *rand.Rand) [][]int {
	perm := rng.Perm(n)
	folds := make([][]int, k)
	for i, row := range perm {
		folds[i%k] = append(folds[i%k], row)
	}
	return folds
}

// rows extracts the given rows of x into a new matrix.
func rows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, row := range idx {
		for j := 0; j < cols; j++ {
			out.Set(i, j, x.At(row, j))
		}
	}
	return out
}

func values(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

func regressionMetrics(truth, predicted []float64) map[string]float64 {
	n := float64(len(truth))
	rmse := floats.Distance(predicted, truth, 2) / math.Sqrt(n)
	mae := floats.Distance(predicted, truth, 1) / n
	return map[string]float64{
		"r2":   stat.RSquaredFrom(predicted, truth, nil),
		"mae":  mae,
		"rmse": rmse,
	}
}

func classificationMetrics(truth, probabilities []float64) map[string]float64 {
	var tp, fp, tn, fn int
	for i, p := range probabilities {
		predicted := p >= 0.5
		actual := truth[i] == 1
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && actual:
			fn++
		default:
			tn++
		}
	}
	total := float64(tp + fp + tn + fn)
	metrics := map[string]float64{
		"accuracy":  float64(tp+tn) / total,
		"precision": 0,
		"recall":    0,
		"f1":        0,
	}
	if tp+fp > 0 {
		metrics["precision"] = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		metrics["recall"] = float64(tp) / float64(tp+fn)
	}
	if metrics["precision"]+metrics["recall"] > 0 {
		metrics["f1"] = 2 * metrics["precision"] * metrics["recall"] / (metrics["precision"] + metrics["recall"])
	}
	return metrics
}
