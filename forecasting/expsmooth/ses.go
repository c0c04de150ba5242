package expsmooth

import (
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/optimize"
	"math"
)

/*
SES is a fitted simple exponential smoothing
*/
type SES struct {
	Alpha   float64 // smoothing level
	Initial float64 // initial level
	SSE     float64 // sum of squared one-step errors
}

/*
Levels smooths y, level[t] is the level after observing y[t],
missing values carry the previous level
*/
func (s SES) Levels(y []float64) []float64 {
	r := make([]float64, len(y))
	l := s.Initial
	for t, v := range y {
		if !math.IsNaN(v) {
			l = s.Alpha*v + (1-s.Alpha)*l
		}
		r[t] = l
	}
	return r
}

/*
Fitted returns one-step predictions, the first one is the initial level
*/
func (s SES) Fitted(y []float64) []float64 {
	r := make([]float64, len(y))
	l := s.Initial
	for t, v := range y {
		r[t] = l
		if !math.IsNaN(v) {
			l = s.Alpha*v + (1-s.Alpha)*l
		}
	}
	return r
}

func sse(y []float64, alpha float64) float64 {
	s := SES{Alpha: alpha, Initial: first(y)}
	e := 0.0
	for t, f := range s.Fitted(y) {
		if !math.IsNaN(y[t]) {
			e += (y[t] - f) * (y[t] - f)
		}
	}
	return e
}

func first(y []float64) float64 {
	for _, v := range y {
		if !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

/*
FitSES fits smoothing to y starting from the first observed value,
alpha in (0,1] is used as is, zero alpha is estimated by Nelder-Mead minimising SSE
*/
func FitSES(y []float64, alpha float64) (SES, error) {
	init := first(y)
	if math.IsNaN(init) {
		return SES{}, zorros.Errorf("no observed values to smooth")
	}
	if alpha < 0 || alpha > 1 {
		return SES{}, zorros.Errorf("smoothing level must be in [0, 1], got %v", alpha)
	}
	if alpha == 0 {
		p := optimize.Problem{Func: func(x []float64) float64 { return sse(y, sigmoid(x[0])) }}
		res, err := optimize.Minimize(p, []float64{0}, nil, &optimize.NelderMead{})
		if res == nil {
			return SES{}, zorros.Wrapf(err, "failed to estimate smoothing level: %v", err)
		}
		alpha = sigmoid(res.X[0])
	}
	return SES{Alpha: alpha, Initial: init, SSE: sse(y, alpha)}, nil
}
