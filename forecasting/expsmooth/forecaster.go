package expsmooth

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/zorros/zorros"
	"math"
)

/*
Forecaster is a simple exponential smoothing forecaster,
out-of-sample forecasts are flat at the last level, in-sample forecasts are one-step predictions
*/
type Forecaster struct {
	*base.Base
	SmoothingLevel float64 // 0 means estimated

	ses SES
}

func New(smoothingLevel float64) (*Forecaster, error) {
	if smoothingLevel < 0 || smoothingLevel > 1 {
		return nil, zorros.Errorf("smoothing level must be in [0, 1], got %v", smoothingLevel)
	}
	f := &Forecaster{SmoothingLevel: smoothingLevel}
	f.Base = base.New("ExponentialSmoothing", base.OptionalHorizon, f)
	return f, nil
}

// Fitted returns the fitted smoothing
func (f *Forecaster) Fitted() SES {
	return f.ses
}

func (f *Forecaster) Train(b *base.Base) (err error) {
	f.ses, err = FitSES(b.TrainingData().Values(), f.SmoothingLevel)
	return
}

func (f *Forecaster) Forecast(b *base.Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	return Forecast(b.TrainingData(), b.Cutoff(), f.ses, fh)
}

/*
Forecast predicts horizon steps with smoothing of observations up to the cutoff
*/
func Forecast(y series.Series, cutoff tsindex.Point, s SES, fh horizon.Horizon) (series.Series, error) {
	vals := y.Loc(y.First(), cutoff).Values()
	if len(vals) == 0 {
		return series.Series{}, zorros.Errorf("no observations up to cutoff %v", cutoff)
	}
	steps, err := fh.Steps(cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	levels := s.Levels(vals)
	fitted := s.Fitted(vals)
	r := make([]float64, len(steps))
	for i, h := range steps {
		switch j := len(fitted) - 1 + h; {
		case h > 0:
			r[i] = levels[len(levels)-1]
		case j >= 0:
			r[i] = fitted[j]
		default:
			r[i] = math.NaN()
		}
	}
	idx, err := fh.Points(cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	return series.New(idx, r)
}
