package transform

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/zorros/zorros"
)

/*
Detrender subtracts in-sample predictions of the forecaster fitted on the training series,
inverse transform adds them back
*/
type Detrender struct {
	Forecaster base.Forecaster
}

func (d *Detrender) Fit(y series.Series) error {
	if d.Forecaster == nil {
		return zorros.Errorf("Detrender requires a forecaster")
	}
	return d.Forecaster.Fit(y, series.Frame{}, horizon.Horizon{})
}

func (d *Detrender) trend(y series.Series) ([]float64, error) {
	if d.Forecaster == nil || !d.Forecaster.IsFitted() {
		return nil, notFitted("Detrender")
	}
	fh, err := horizon.Absolute(y.Index()...)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	p, err := d.Forecaster.Predict(fh, series.Frame{})
	if err != nil {
		return nil, err
	}
	return p.Values(), nil
}

func (d *Detrender) apply(y series.Series, sign float64) (series.Series, error) {
	if y.Empty() {
		return y, nil
	}
	t, err := d.trend(y)
	if err != nil {
		return series.Series{}, err
	}
	v := y.Values()
	for i := range v {
		v[i] += sign * t[i]
	}
	return y.WithValues(v)
}

func (d *Detrender) Transform(y series.Series) (series.Series, error) {
	return d.apply(y, -1)
}

func (d *Detrender) InverseTransform(y series.Series) (series.Series, error) {
	return d.apply(y, 1)
}
