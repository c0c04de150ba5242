package trend

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/mat"
	"math"
)

/*
FitTrend fits polynomial of the given order to y over positions 0..n-1,
coefficients go from the highest order to the constant, missing values are skipped
*/
func FitTrend(y []float64, order int) ([]float64, error) {
	if order < 0 {
		return nil, zorros.Errorf("trend order must not be negative, got %d", order)
	}
	xs, ys := []float64{}, []float64{}
	for i, v := range y {
		if !math.IsNaN(v) {
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
	}
	if len(ys) < order+1 {
		return nil, zorros.Errorf("trend of order %d needs at least %d observations, got %d", order, order+1, len(ys))
	}
	a := mat.NewDense(len(xs), order+1, nil)
	for i, x := range xs {
		for j := 0; j <= order; j++ {
			a.Set(i, j, math.Pow(x, float64(order-j)))
		}
	}
	c := mat.NewVecDense(order+1, nil)
	if err := c.SolveVec(a, mat.NewVecDense(len(ys), ys)); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, zorros.Wrapf(err, "failed to fit trend: %v", err)
		}
	}
	return c.RawVector().Data, nil
}

/*
Polyval evaluates polynomial with coefficients from the highest order at x
*/
func Polyval(coef []float64, x float64) float64 {
	r := 0.0
	for _, c := range coef {
		r = r*x + c
	}
	return r
}

/*
PolynomialTrendForecaster forecasts with polynomial trend of the time position
*/
type PolynomialTrendForecaster struct {
	*base.Base
	Degree int

	coef []float64
}

func New(degree int) (*PolynomialTrendForecaster, error) {
	if degree < 0 {
		return nil, zorros.Errorf("degree must not be negative, got %d", degree)
	}
	f := &PolynomialTrendForecaster{Degree: degree}
	f.Base = base.New("PolynomialTrendForecaster", base.OptionalHorizon, f)
	return f, nil
}

func LuckyNew(degree int) *PolynomialTrendForecaster {
	f, err := New(degree)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return f
}

// Coef returns trend coefficients from the highest order
func (f *PolynomialTrendForecaster) Coef() []float64 {
	return f.coef
}

func (f *PolynomialTrendForecaster) Train(b *base.Base) (err error) {
	f.coef, err = FitTrend(b.TrainingData().Values(), f.Degree)
	return
}

func (f *PolynomialTrendForecaster) Forecast(b *base.Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	idx, err := fh.Points(b.Cutoff())
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	start := b.TrainingData().First()
	r := make([]float64, len(idx))
	for i, p := range idx {
		k, err := p.Sub(start)
		if err != nil {
			return series.Series{}, zorros.Trace(err)
		}
		r[i] = Polyval(f.coef, float64(k))
	}
	return series.New(idx, r)
}
