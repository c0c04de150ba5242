package base

import (
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/zorros/zorros"
	"math"
)

/*
LastWindowModel forecasts steps after the cutoff from the last window of observations
*/
type LastWindowModel interface {
	Train(b *Base) error
	// PredictLastWindow gets only out-of-sample steps and returns one value per step
	PredictLastWindow(b *Base, fh horizon.Horizon, x series.Frame) ([]float64, error)
}

/*
Window wraps a last window model, in-sample steps are predicted by
single-step moving-cutoff predictions over the training data
*/
type Window struct {
	model  LastWindowModel
	length int
	// OutOfSampleOnly models can't predict in-sample steps
	OutOfSampleOnly bool
}

func NewWindow(model LastWindowModel) *Window {
	return &Window{model: model}
}

// SetLength sets the fitted window length
func (w *Window) SetLength(n int) {
	w.length = n
}

func (w *Window) Length() int {
	return w.length
}

func (w *Window) Train(b *Base) error {
	return w.model.Train(b)
}

/*
LastWindow returns observations in (cutoff - window length, cutoff]
*/
func (w *Window) LastWindow(b *Base) []float64 {
	if w.length <= 0 || b.y.Empty() {
		return []float64{}
	}
	start := b.cutoff.Shift(int64(-w.length + 1))
	return b.y.Loc(start, b.cutoff).Values()
}

// LastWindowX returns exogenous variables of the last window
func (w *Window) LastWindowX(b *Base) series.Frame {
	if !b.withX || w.length <= 0 {
		return series.Frame{}
	}
	return b.x.Loc(b.cutoff.Shift(int64(-w.length+1)), b.cutoff)
}

/*
Predictable reports whether the window is complete and has only finite values
*/
func (w *Window) Predictable(window []float64) bool {
	return len(window) == w.length && fu.AllFinite(window)
}

func PredictNaN(n int) []float64 {
	return fu.Full(n, math.NaN())
}

func (w *Window) Forecast(b *Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	oos, err := fh.IsAllOutOfSample(b.cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	if oos {
		return w.predictFixedCutoff(b, fh, x)
	}
	ins, err := fh.IsAllInSample(b.cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	inFh, err := fh.ToInSample(b.cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	yIns, err := w.predictInSample(b, inFh, x)
	if err != nil || ins {
		return yIns, err
	}
	outFh, err := fh.ToOutOfSample(b.cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	yOos, err := w.predictFixedCutoff(b, outFh, x)
	if err != nil {
		return series.Series{}, err
	}
	return yIns.Append(yOos)
}

func (w *Window) predictFixedCutoff(b *Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	fh, err := fh.ToRelative(b.cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	vals, err := w.model.PredictLastWindow(b, fh, x)
	if err != nil {
		return series.Series{}, err
	}
	idx, err := fh.Points(b.cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	return series.New(idx, vals)
}

func (w *Window) predictInSample(b *Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	if w.OutOfSampleOnly {
		return series.Series{}, NotImplementedf("%v: in-sample predictions are not implemented", b.name)
	}
	steps, err := fh.Steps(b.cutoff)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	// cutoffs are positions in the training data
	cutoffs := make([]int, len(steps))
	for i, s := range steps {
		cutoffs[i] = s + b.y.Len() - 2
	}
	cv := split.Cutoff{Cutoffs: cutoffs, Horizon: horizon.LuckyRange(1), Length: w.length}
	f, err := b.PredictMovingCutoff(b.y, cv, x, false)
	if err != nil {
		return series.Series{}, err
	}
	return f.Column(0), nil
}

func (w *Window) UpdatePredictSingle(b *Base, y series.Series, fh horizon.Horizon, x series.Frame, updateParams bool) (series.Series, error) {
	if hasX(x) {
		return series.Series{}, NotImplementedf("%v: exogenous variables in moving-cutoff predictions", b.name)
	}
	if err := b.Update(y, x, updateParams); err != nil {
		return series.Series{}, err
	}
	return w.Forecast(b, fh, x)
}

func (w *Window) DefaultSplitter(b *Base) (split.Splitter, error) {
	return b.slidingSplitter(w.length)
}
