package compose

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/regression"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/forecast/validate"
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/mat"
)

const (
	Direct      = "direct"
	Recursive   = "recursive"
	MultiOutput = "multioutput"
)

const (
	Infer               = "infer"
	TabularRegressor    = "tabular-regressor"
	TimeSeriesRegressor = "time-series-regressor"
)

/*
Reducer forecasts by regression of the next values on the last window of observations.
Training windows slide along the training series starting with a full window.

	direct      fits a regressor per horizon step
	multioutput fits one regressor predicting all horizon steps at once
	recursive   fits one-step regressor and feeds its predictions back into the window
*/
type Reducer struct {
	*base.Base
	Strategy     string
	WindowLength int // 10 by default
	StepLength   int // 1 by default

	tabular regression.Regressor
	series  regression.TimeSeriesRegressor

	w        *base.Window
	fitted   []regression.Regressor
	tsfitted []regression.TimeSeriesRegressor
	multi    regression.MultiOutputRegressor
}

func newReducer(strategy, scitype string, windowLength, stepLength int) (*Reducer, error) {
	r := &Reducer{
		Strategy:     strategy,
		WindowLength: fu.Fnzi(windowLength, split.DefaultWindowLength),
		StepLength:   fu.Fnzi(stepLength, split.DefaultStepLength),
	}
	policy := base.RequiredHorizon
	name := ""
	switch strategy {
	case Direct:
		name = "Direct"
	case MultiOutput:
		if scitype == TimeSeriesRegressor {
			return nil, zorros.Errorf("the `multioutput` strategy is not supported by time series regressors")
		}
		name = "Multioutput"
	case Recursive:
		name = "Recursive"
		policy = base.OptionalHorizon
	default:
		return nil, zorros.Errorf("unknown strategy `%v`, expected one of direct, recursive, multioutput", strategy)
	}
	if scitype == TabularRegressor {
		name += "TabularRegressionForecaster"
	} else {
		name += "TimeSeriesRegressionForecaster"
	}
	r.w = base.NewWindow(r)
	r.w.OutOfSampleOnly = strategy != Recursive
	r.Base = base.New(name, policy, r.w)
	return r, nil
}

/*
NewTabular reduces forecasting to tabular regression, window values are features
*/
func NewTabular(regressor regression.Regressor, strategy string, windowLength, stepLength int) (*Reducer, error) {
	if regressor == nil {
		return nil, zorros.Errorf("regressor is required")
	}
	r, err := newReducer(strategy, TabularRegressor, windowLength, stepLength)
	if err != nil {
		return nil, err
	}
	if _, ok := regressor.(regression.MultiOutputRegressor); strategy == MultiOutput && !ok {
		return nil, zorros.Errorf("the `multioutput` strategy requires a multi-output regressor")
	}
	r.tabular = regressor
	return r, nil
}

/*
NewTimeSeries reduces forecasting to time series regression, windows are series samples
*/
func NewTimeSeries(regressor regression.TimeSeriesRegressor, strategy string, windowLength, stepLength int) (*Reducer, error) {
	if regressor == nil {
		return nil, zorros.Errorf("regressor is required")
	}
	r, err := newReducer(strategy, TimeSeriesRegressor, windowLength, stepLength)
	if err != nil {
		return nil, err
	}
	r.series = regressor
	return r, nil
}

/*
MakeReduction creates reduction forecaster for a tabular or time series regressor,
scitype infer picks the kind by the regressor interface
*/
func MakeReduction(estimator interface{}, strategy string, windowLength int, scitype string) (*Reducer, error) {
	switch strategy {
	case "":
		strategy = Recursive
	case Direct, Recursive, MultiOutput:
	default:
		return nil, zorros.Errorf("unknown strategy `%v`, expected one of direct, recursive, multioutput", strategy)
	}
	switch scitype {
	case "", Infer:
		switch estimator.(type) {
		case regression.Regressor:
			scitype = TabularRegressor
		case regression.TimeSeriesRegressor:
			scitype = TimeSeriesRegressor
		default:
			return nil, zorros.Errorf("the scitype of %T can't be inferred, specify it explicitly", estimator)
		}
	case TabularRegressor, TimeSeriesRegressor:
	default:
		return nil, zorros.Errorf("unknown scitype `%v`, expected one of infer, tabular-regressor, time-series-regressor", scitype)
	}
	if scitype == TabularRegressor {
		reg, ok := estimator.(regression.Regressor)
		if !ok {
			return nil, zorros.Errorf("%T is not a tabular regressor", estimator)
		}
		return NewTabular(reg, strategy, windowLength, 1)
	}
	reg, ok := estimator.(regression.TimeSeriesRegressor)
	if !ok {
		return nil, zorros.Errorf("%T is not a time series regressor", estimator)
	}
	return NewTimeSeries(reg, strategy, windowLength, 1)
}

/*
windows transforms y to samples of window values and targets at the horizon steps,
windows with missing values are skipped
*/
func (r *Reducer) windows(y series.Series, fh horizon.Horizon, wl, sl int) ([][]float64, [][]float64, error) {
	cv := split.SlidingWindow{Horizon: fh, Length: wl, Step: sl, StartWithWindow: true}
	ws, err := cv.Split(y.Len())
	if err != nil {
		return nil, nil, zorros.Trace(err)
	}
	v := y.Values()
	X, Y := [][]float64{}, [][]float64{}
	for _, w := range ws {
		xr, yr := make([]float64, len(w.Train)), make([]float64, len(w.Test))
		for i, j := range w.Train {
			xr[i] = v[j]
		}
		for i, j := range w.Test {
			yr[i] = v[j]
		}
		if fu.AllFinite(xr) && fu.AllFinite(yr) {
			X = append(X, xr)
			Y = append(Y, yr)
		}
	}
	if len(X) == 0 {
		return nil, nil, zorros.Errorf("the training series of length %d is too short for window length %d and the horizon", y.Len(), wl)
	}
	return X, Y, nil
}

func dense(rows [][]float64) *mat.Dense {
	return mat.NewDense(len(rows), len(rows[0]), fu.Flatnr(rows))
}

func column(rows [][]float64, j int) []float64 {
	r := make([]float64, len(rows))
	for i, q := range rows {
		r[i] = q[j]
	}
	return r
}

func (r *Reducer) fitOne(X [][]float64, y []float64) (err error) {
	if r.tabular != nil {
		reg := r.tabular.Clone()
		if err = reg.Fit(dense(X), y); err == nil {
			r.fitted = append(r.fitted, reg)
		}
		return
	}
	reg := r.series.Clone()
	if err = reg.Fit(X, y); err == nil {
		r.tsfitted = append(r.tsfitted, reg)
	}
	return
}

func (r *Reducer) predictOne(i int, window []float64) (float64, error) {
	var (
		p   []float64
		err error
	)
	if r.tabular != nil {
		p, err = r.fitted[i].Predict(mat.NewDense(1, len(window), window))
	} else {
		p, err = r.tsfitted[i].Predict([][]float64{window})
	}
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r *Reducer) Train(b *base.Base) error {
	if b.WithX() {
		return base.NotImplementedf("%v: exogenous variables `x` are not supported", b.Name())
	}
	wl, err := validate.WindowLength(r.WindowLength)
	if err != nil {
		return err
	}
	sl, err := validate.StepLength(r.StepLength)
	if err != nil {
		return err
	}
	fh := horizon.LuckyRange(1)
	if r.Strategy != Recursive {
		ins, err := b.FH().ToInSample(b.Cutoff())
		if err != nil {
			return zorros.Trace(err)
		}
		if ins.Len() > 0 {
			return base.NotImplementedf("%v: in-sample predictions are not implemented", b.Name())
		}
		if fh, err = b.FH().ToRelative(b.Cutoff()); err != nil {
			return zorros.Trace(err)
		}
	}
	X, Y, err := r.windows(b.TrainingData(), fh, wl, sl)
	if err != nil {
		return err
	}
	r.fitted, r.tsfitted, r.multi = nil, nil, nil
	switch r.Strategy {
	case MultiOutput:
		m := r.tabular.Clone().(regression.MultiOutputRegressor)
		if err = m.FitMulti(dense(X), dense(Y)); err != nil {
			return err
		}
		r.multi = m
	case Direct:
		for j := 0; j < fh.Len(); j++ {
			if err = r.fitOne(X, column(Y, j)); err != nil {
				return err
			}
		}
	default:
		if err = r.fitOne(X, column(Y, 0)); err != nil {
			return err
		}
	}
	r.w.SetLength(wl)
	return nil
}

func (r *Reducer) PredictLastWindow(b *base.Base, fh horizon.Horizon, x series.Frame) ([]float64, error) {
	if x.Width() > 0 {
		return nil, base.NotImplementedf("%v: exogenous variables `x` are not supported", b.Name())
	}
	lw := r.w.LastWindow(b)
	if !r.w.Predictable(lw) {
		return base.PredictNaN(fh.Len()), nil
	}
	switch r.Strategy {
	case MultiOutput:
		p, err := r.multi.PredictMulti(mat.NewDense(1, len(lw), lw))
		if err != nil {
			return nil, err
		}
		return mat.Row(nil, 0, p), nil
	case Direct:
		p := make([]float64, fh.Len())
		for i := range p {
			v, err := r.predictOne(i, lw)
			if err != nil {
				return nil, err
			}
			p[i] = v
		}
		return p, nil
	}
	mx, err := fh.Max(b.Cutoff())
	if err != nil {
		return nil, zorros.Trace(err)
	}
	p := make([]float64, mx)
	window := fu.Copy(lw)
	for i := range p {
		if p[i], err = r.predictOne(0, window); err != nil {
			return nil, err
		}
		window = append(window[1:], p[i])
	}
	idx, err := fh.ToIndexer(b.Cutoff())
	if err != nil {
		return nil, zorros.Trace(err)
	}
	q := make([]float64, len(idx))
	for i, j := range idx {
		q[i] = p[j]
	}
	return q, nil
}
