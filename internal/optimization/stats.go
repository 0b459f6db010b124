package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MeanCovariance computes the sample mean vector and the sample
// covariance matrix (n-1 denominator) of a window of observations.
// window[t][j] is the return of asset j at observation t.
func MeanCovariance(window [][]float64) ([]float64, *mat.SymDense, error) {
	rows := len(window)
	if rows < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 observations, got %d", ErrInvalidInput, rows)
	}
	cols := len(window[0])
	if cols == 0 {
		return nil, nil, fmt.Errorf("%w: no assets in window", ErrInvalidInput)
	}

	data := mat.NewDense(rows, cols, nil)
	for t, row := range window {
		if len(row) != cols {
			return nil, nil, fmt.Errorf("%w: ragged window at row %d", ErrInvalidInput, t)
		}
		data.SetRow(t, row)
	}

	mu := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, data)
		mu[j] = stat.Mean(col, nil)
	}

	sigma := mat.NewSymDense(cols, nil)
	stat.CovarianceMatrix(sigma, data, nil)

	return mu, sigma, nil
}
