package theta

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/forecasting/expsmooth"
	"go-ml.dev/pkg/forecast/forecasting/trend"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/transform"
	"go-ml.dev/pkg/forecast/validate"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
)

/*
Forecaster is the theta method, simple exponential smoothing with drift
equal to the half of the linear trend slope.
When Deseasonalize is set the series is seasonally adjusted with
multiplicative classical decomposition and forecasts are reseasonalised.
*/
type Forecaster struct {
	*base.Base
	SmoothingLevel float64 // 0 means estimated
	Deseasonalize  bool
	SP             int

	des   *transform.Deseasonalizer
	ses   expsmooth.SES
	trend float64
}

func New(smoothingLevel float64, deseasonalize bool, sp int) (*Forecaster, error) {
	if smoothingLevel < 0 || smoothingLevel > 1 {
		return nil, zorros.Errorf("smoothing level must be in [0, 1], got %v", smoothingLevel)
	}
	f := &Forecaster{SmoothingLevel: smoothingLevel, Deseasonalize: deseasonalize, SP: sp}
	if f.SP == 0 {
		f.SP = 1
	}
	f.Base = base.New("ThetaForecaster", base.OptionalHorizon, f)
	return f, nil
}

func LuckyNew(smoothingLevel float64, deseasonalize bool, sp int) *Forecaster {
	f, err := New(smoothingLevel, deseasonalize, sp)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return f
}

// Alpha is the fitted smoothing level
func (f *Forecaster) Alpha() float64 {
	return f.ses.Alpha
}

// Trend is the fitted drift per step
func (f *Forecaster) Trend() float64 {
	return f.trend
}

func (f *Forecaster) adjusted(y series.Series) (series.Series, error) {
	if f.des == nil {
		return y, nil
	}
	return f.des.Transform(y)
}

func (f *Forecaster) Train(b *base.Base) error {
	sp, err := validate.SP(f.SP)
	if err != nil {
		return err
	}
	if sp > 1 && !f.Deseasonalize {
		zlog.Warning("`sp` is ignored when `deseasonalize` is false")
	}
	y := b.TrainingData()
	f.des = nil
	if f.Deseasonalize {
		d := transform.NewDeseasonalizer(sp, transform.Multiplicative)
		if y, err = transform.FitTransform(d, y); err != nil {
			return err
		}
		f.des = d
	}
	if f.ses, err = expsmooth.FitSES(y.Values(), f.SmoothingLevel); err != nil {
		return err
	}
	f.trend, err = computeTrend(y.Values())
	return err
}

func computeTrend(y []float64) (float64, error) {
	c, err := trend.FitTrend(y, 1)
	if err != nil {
		return 0, err
	}
	return c[0] / 2, nil
}

/*
UpdateParams recomputes trend on the whole seasonally adjusted series,
smoothing level stays as fitted
*/
func (f *Forecaster) UpdateParams(b *base.Base) (err error) {
	y, err := f.adjusted(b.TrainingData())
	if err != nil {
		return
	}
	f.trend, err = computeTrend(y.Values())
	return
}

func (f *Forecaster) drift(steps []int, n int) []float64 {
	r := make([]float64, len(steps))
	a := f.ses.Alpha
	for i, h := range steps {
		if math.Abs(a) < 1e-8 {
			r[i] = f.trend * float64(h)
		} else {
			r[i] = f.trend * (float64(h) + (1-math.Pow(1-a, float64(n)))/a)
		}
	}
	return r
}

func (f *Forecaster) Forecast(b *base.Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	y, err := f.adjusted(b.TrainingData())
	if err != nil {
		return series.Series{}, err
	}
	pred, err := expsmooth.Forecast(y, b.Cutoff(), f.ses, fh)
	if err != nil {
		return series.Series{}, err
	}
	steps, err := fh.Steps(b.Cutoff())
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	v := pred.Values()
	for i, d := range f.drift(steps, b.TrainingData().Len()) {
		v[i] += d
	}
	if pred, err = pred.WithValues(v); err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	if f.des != nil {
		return f.des.InverseTransform(pred)
	}
	return pred, nil
}

/*
PredictionErrors are z * sigma * sqrt(h*alpha^2 + 1) where sigma is the
standard error of one-step predictions
*/
func (f *Forecaster) PredictionErrors(b *base.Base, alphas []float64) ([][]float64, error) {
	n := b.TrainingData().Len()
	if n < 2 {
		return nil, zorros.Errorf("%v: prediction errors need at least 2 observations", b.Name())
	}
	steps, err := b.FH().Steps(b.Cutoff())
	if err != nil {
		return nil, zorros.Trace(err)
	}
	sigma := math.Sqrt(f.ses.SSE / float64(n-1))
	r := make([][]float64, len(alphas))
	for i, alpha := range alphas {
		z := -distuv.UnitNormal.Quantile(alpha / 2)
		r[i] = make([]float64, len(steps))
		for j, h := range steps {
			r[i][j] = z * sigma * math.Sqrt(float64(h)*f.ses.Alpha*f.ses.Alpha+1)
		}
	}
	return r, nil
}
