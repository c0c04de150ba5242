package compose

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/transform"
	"go-ml.dev/pkg/zorros/zorros"
)

/*
TransformedTarget forecasts the target transformed by the transformers in order,
forecasts are inverse transformed in reverse order
*/
type TransformedTarget struct {
	*base.Base
	Transformers []transform.SeriesTransformer
	Forecaster   base.Forecaster
}

func NewTransformedTarget(forecaster base.Forecaster, transformers ...transform.SeriesTransformer) (*TransformedTarget, error) {
	if forecaster == nil {
		return nil, zorros.Errorf("final forecaster is required")
	}
	t := &TransformedTarget{Transformers: transformers, Forecaster: forecaster}
	t.Base = base.New("TransformedTargetForecaster", base.OptionalHorizon, t)
	return t, nil
}

func (t *TransformedTarget) Train(b *base.Base) (err error) {
	z := b.TrainingData()
	for i, tr := range t.Transformers {
		if z, err = transform.FitTransform(tr, z); err != nil {
			return zorros.Wrapf(err, "failed to fit transformer %d: %v", i, err)
		}
	}
	return t.Forecaster.Fit(z, b.Exogenous(), b.FH())
}

func (t *TransformedTarget) Forecast(b *base.Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	ffh, err := alignHorizon(b, t.Forecaster, fh)
	if err != nil {
		return series.Series{}, err
	}
	p, err := t.Forecaster.Predict(ffh, x)
	if err != nil {
		return series.Series{}, err
	}
	for i := len(t.Transformers) - 1; i >= 0; i-- {
		if p, err = t.Transformers[i].InverseTransform(p); err != nil {
			return series.Series{}, err
		}
	}
	return p, nil
}

// OnUpdate transforms new observations with fitted transformers and updates the final forecaster
func (t *TransformedTarget) OnUpdate(b *base.Base, y series.Series, x series.Frame, updateParams bool) (err error) {
	z := y
	for _, tr := range t.Transformers {
		if z, err = tr.Transform(z); err != nil {
			return
		}
	}
	return t.Forecaster.Update(z, x, updateParams)
}

// DetachCutoff restores the final forecaster cutoff with the outer one
func (t *TransformedTarget) DetachCutoff(b *base.Base, fn func() error) error {
	return detachCutoffs(fn, t.Forecaster)
}
