// Package reco holds the per-telescope-type trainable models and the
// cross-validation driver used to assess them.
package reco

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model is one trainable regressor or classifier. Fit may be called more
// than once; each call replaces the previous fit entirely.
type Model interface {
	Fit(x *mat.Dense, y []float64) error
	Predict(x *mat.Dense) []float64
}

// LinearRegressor fits ordinary least squares with an intercept term.
type LinearRegressor struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Fit solves the least-squares problem via QR decomposition.
func (m *LinearRegressor) Fit(x *mat.Dense, y []float64) error {
	rows, cols := x.Dims()
	if rows != len(y) {
		return fmt.Errorf("design matrix has %d rows, target has %d", rows, len(y))
	}
	if rows < cols+1 {
		return fmt.Errorf("not enough rows (%d) to fit %d coefficients", rows, cols+1)
	}

	// Augment with a constant column for the intercept.
	design := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}
	target := mat.NewVecDense(rows, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(design)
	var solution mat.VecDense
	if err := qr.SolveVecTo(&solution, false, target); err != nil {
		return fmt.Errorf("solving least squares: %w", err)
	}

	m.Intercept = solution.AtVec(0)
	m.Coef = make([]float64, cols)
	for j := 0; j < cols; j++ {
		m.Coef[j] = solution.AtVec(j + 1)
	}
	return nil
}

// Predict implements Model.
func (m *LinearRegressor) Predict(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := m.Intercept
		for j := 0; j < cols && j < len(m.Coef); j++ {
			v += m.Coef[j] * x.At(i, j)
		}
		out[i] = v
	}
	return out
}

// LogisticClassifier fits a binary classifier by gradient descent on the
// logistic loss. Predictions are probabilities of the positive class.
type LogisticClassifier struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`

	// LearningRate and Iterations control the fit; zero values select the
	// defaults (0.1 and 500).
	LearningRate float64 `json:"-"`
	Iterations   int     `json:"-"`
}

// Fit trains on targets in {0, 1}.
func (m *LogisticClassifier) Fit(x *mat.Dense, y []float64) error {
	rows, cols := x.Dims()
	if rows != len(y) {
		return fmt.Errorf("design matrix has %d rows, target has %d", rows, len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("row %d: classification target must be 0 or 1, got %g", i, v)
		}
	}

	lr := m.LearningRate
	if lr == 0 {
		lr = 0.1
	}
	iters := m.Iterations
	if iters == 0 {
		iters = 500
	}

	m.Coef = make([]float64, cols)
	m.Intercept = 0
	grad := make([]float64, cols)
	for iter := 0; iter < iters; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0
		for i := 0; i < rows; i++ {
			z := m.Intercept
			for j := 0; j < cols; j++ {
				z += m.Coef[j] * x.At(i, j)
			}
			err := sigmoid(z) - y[i]
			gradIntercept += err
			for j := 0; j < cols; j++ {
				grad[j] += err * x.At(i, j)
			}
		}
		scale := lr / float64(rows)
		m.Intercept -= scale * gradIntercept
		for j := 0; j < cols; j++ {
			m.Coef[j] -= scale * grad[j]
		}
	}
	return nil
}

// Predict returns the positive-class probability per row.
func (m *LogisticClassifier) Predict(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		z := m.Intercept
		for j := 0; j < cols && j < len(m.Coef); j++ {
			z += m.Coef[j] * x.At(i, j)
		}
		out[i] = sigmoid(z)
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
