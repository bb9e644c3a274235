package reco

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdebony/ctapipe/internal/events"
)

func TestCrossValidatorRun(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rec := NewEnergyRegressor([]string{"intensity", "length"}, events.CriteriaSet{})
	table := regressionTable(t, 60, rng)

	cv := &CrossValidator{NFolds: 5, Rng: rand.New(rand.NewSource(11))}
	records, err := cv.Run("LST_LST_LSTCam", table, rec)
	require.NoError(t, err)
	require.Len(t, records, 5)

	for i, r := range records {
		require.Equal(t, "LST_LST_LSTCam", r.TelescopeType)
		require.Equal(t, i, r.Fold)
		require.Contains(t, r.Metrics, "r2")
		require.Contains(t, r.Metrics, "mae")
		require.Contains(t, r.Metrics, "rmse")
		// The target is an exact linear function, so every fold fits it.
		require.Greater(t, r.Metrics["r2"], 0.999, "fold %d", i)
		require.Less(t, r.Metrics["rmse"], 1e-6, "fold %d", i)
	}

	// Validation must not leave a trained model behind.
	require.Empty(t, rec.TelescopeTypes())
}

func TestCrossValidatorClassificationMetrics(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	rec := NewParticleClassifier([]string{"score"}, events.CriteriaSet{})
	table := classificationTable(t, 60, rng)

	cv := &CrossValidator{NFolds: 3, Rng: rand.New(rand.NewSource(13))}
	records, err := cv.Run("MST_MST_FlashCam", table, rec)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		require.Contains(t, r.Metrics, "accuracy")
		require.Contains(t, r.Metrics, "precision")
		require.Contains(t, r.Metrics, "recall")
		require.Contains(t, r.Metrics, "f1")
		require.Greater(t, r.Metrics["accuracy"], 0.9)
	}
}

func TestCrossValidatorErrors(t *testing.T) {
	rec := NewEnergyRegressor([]string{"intensity", "length"}, events.CriteriaSet{})

	t.Run("too few events", func(t *testing.T) {
		table := regressionTable(t, 3, rand.New(rand.NewSource(1)))
		cv := &CrossValidator{NFolds: 5, Rng: rand.New(rand.NewSource(1))}
		_, err := cv.Run("LST_LST_LSTCam", table, rec)
		var confErr *events.ConfigurationError
		require.ErrorAs(t, err, &confErr)
		require.Contains(t, err.Error(), "too few events")
	})

	t.Run("missing rng", func(t *testing.T) {
		table := regressionTable(t, 20, rand.New(rand.NewSource(1)))
		_, err := (&CrossValidator{NFolds: 5}).Run("LST_LST_LSTCam", table, rec)
		var confErr *events.ConfigurationError
		require.ErrorAs(t, err, &confErr)
	})

	t.Run("single class fails before fitting", func(t *testing.T) {
		classifier := NewParticleClassifier([]string{"score"}, events.CriteriaSet{})
		tbl, err := events.NewTable(
			events.FloatColumn("score", []float64{1, 2, 3, 4, 5, 6}),
			events.FloatColumn("true_shower_primary_id", []float64{1, 1, 1, 1, 1, 1}),
		)
		require.NoError(t, err)
		cv := &CrossValidator{NFolds: 3, Rng: rand.New(rand.NewSource(1))}
		_, err = cv.Run("LST_LST_LSTCam", tbl, classifier)
		require.ErrorContains(t, err, "only one class")
	})
}

func TestFoldIndicesPartition(t *testing.T) {
	const n, k = 23, 5
	folds := foldIndices(n, k, rand.New(rand.NewSource(5)))
	require.Len(t, folds, k)

	var all []int
	for _, fold := range folds {
		require.NotEmpty(t, fold)
		all = append(all, fold...)
	}
	require.Len(t, all, n, "held-out sets are exhaustive")
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v, "held-out sets are disjoint")
	}

	// Same seed, same partition.
	again := foldIndices(n, k, rand.New(rand.NewSource(5)))
	require.Equal(t, folds, again)
}
