package regression

import (
	"gonum.org/v1/gonum/mat"
)

/*
Regressor is a tabular regressor, rows of X are samples
*/
type Regressor interface {
	Fit(X mat.Matrix, y []float64) error
	Predict(X mat.Matrix) ([]float64, error)
	Clone() Regressor
}

/*
MultiOutputRegressor predicts several targets at once
*/
type MultiOutputRegressor interface {
	Regressor
	FitMulti(X, Y mat.Matrix) error
	PredictMulti(X mat.Matrix) (*mat.Dense, error)
}

/*
TimeSeriesRegressor is a regressor over whole time series samples
*/
type TimeSeriesRegressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
	Clone() TimeSeriesRegressor
}

func rows(X mat.Matrix) [][]float64 {
	n, _ := X.Dims()
	r := make([][]float64, n)
	for i := range r {
		r[i] = mat.Row(nil, i, X)
	}
	return r
}
