package base

import (
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/metrics"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/forecast/validate"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
)

// DefaultAlpha is the default significance level of prediction intervals
const DefaultAlpha = 0.05

/*
Forecaster is a fitted-state machine tracking training data, cutoff and forecasting horizon
*/
type Forecaster interface {
	Name() string
	Fit(y series.Series, x series.Frame, fh horizon.Horizon) error
	Predict(fh horizon.Horizon, x series.Frame) (series.Series, error)
	PredictInterval(fh horizon.Horizon, x series.Frame, alphas ...float64) (series.Series, []series.Frame, error)
	Update(y series.Series, x series.Frame, updateParams bool) error
	UpdatePredict(y series.Series, cv split.Splitter, x series.Frame, updateParams bool) (series.Frame, error)
	UpdatePredictSingle(y series.Series, fh horizon.Horizon, x series.Frame, updateParams bool) (series.Series, error)
	Score(y series.Series, fh horizon.Horizon, x series.Frame) (float64, error)
	Cutoff() tsindex.Point
	WithDetachedCutoff(fn func() error) error
	FH() horizon.Horizon
	IsFitted() bool
	TrainingData() series.Series
}

/*
Model is the algorithm behind a forecaster,
it trains on the forecaster training data and forecasts the horizon from its cutoff
*/
type Model interface {
	Train(b *Base) error
	Forecast(b *Base, fh horizon.Horizon, x series.Frame) (series.Series, error)
}

/*
ParamUpdater is a model able to update its fitted parameters with new data without refitting
*/
type ParamUpdater interface {
	UpdateParams(b *Base) error
}

/*
ErrorEstimator is a model able to estimate prediction errors for the current horizon,
one slice of errors per significance level
*/
type ErrorEstimator interface {
	PredictionErrors(b *Base, alphas []float64) ([][]float64, error)
}

/*
UpdateListener is a model following every update of the forecaster,
it takes over updating the fitted parameters
*/
type UpdateListener interface {
	OnUpdate(b *Base, y series.Series, x series.Frame, updateParams bool) error
}

/*
CutoffDetacher is a model owning inner forecasters,
it runs fn restoring their cutoffs afterwards as the outer cutoff is restored
*/
type CutoffDetacher interface {
	DetachCutoff(b *Base, fn func() error) error
}

// singleUpdatePredictor replaces the default update then predict sequence
type singleUpdatePredictor interface {
	UpdatePredictSingle(b *Base, y series.Series, fh horizon.Horizon, x series.Frame, updateParams bool) (series.Series, error)
}

// defaultSplitter provides the splitter UpdatePredict uses when none is given
type defaultSplitter interface {
	DefaultSplitter(b *Base) (split.Splitter, error)
}

/*
Policy defines when the forecasting horizon may be passed
*/
type Policy int

const (
	// OptionalHorizon forecaster accepts horizon either in fit or in predict
	OptionalHorizon Policy = iota
	// RequiredHorizon forecaster needs horizon in fit and does not allow to change it later
	RequiredHorizon
)

/*
Base implements Forecaster over a Model
*/
type Base struct {
	name   string
	policy Policy
	model  Model

	y      series.Series
	x      series.Frame
	withX  bool
	fh     horizon.Horizon
	cutoff tsindex.Point
	fitted bool
}

func New(name string, policy Policy, model Model) *Base {
	return &Base{name: name, policy: policy, model: model}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Cutoff() tsindex.Point {
	return b.cutoff
}

func (b *Base) FH() horizon.Horizon {
	return b.fh
}

func (b *Base) IsFitted() bool {
	return b.fitted
}

func (b *Base) TrainingData() series.Series {
	return b.y
}

// Exogenous returns exogenous variables seen so far
func (b *Base) Exogenous() series.Frame {
	return b.x
}

func (b *Base) WithX() bool {
	return b.withX
}

func hasX(x series.Frame) bool {
	return x.Width() > 0
}

func (b *Base) checkYX(y series.Series, x series.Frame, allowEmpty bool) error {
	if y.Empty() && !allowEmpty {
		return zorros.Errorf("%v: series `y` must not be empty", b.name)
	}
	if hasX(x) && !x.Index().Equal(y.Index()) {
		return zorros.Errorf("%v: exogenous variables `x` must have the same time index as `y`", b.name)
	}
	return nil
}

/*
WithDetachedCutoff runs fn and restores the cutoff afterwards
*/
func (b *Base) WithDetachedCutoff(fn func() error) error {
	cutoff := b.cutoff
	defer func() { b.cutoff = cutoff }()
	if d, ok := b.model.(CutoffDetacher); ok {
		return d.DetachCutoff(b, fn)
	}
	return fn()
}

func (b *Base) setFH(fh horizon.Horizon) error {
	switch b.policy {
	case RequiredHorizon:
		if fh.IsZero() {
			if !b.fitted {
				return HorizonErrorf("%v depends on the horizon, it must be passed to fit", b.name)
			}
		} else if b.fitted {
			if !fh.Equal(b.fh) {
				return HorizonErrorf("%v was fitted with horizon %v, got %v, refit the forecaster to change it", b.name, b.fh, fh)
			}
		} else {
			b.fh = fh
		}
	default:
		if fh.IsZero() {
			if b.fitted && b.fh.IsZero() {
				return HorizonErrorf("%v: the horizon must be passed either to fit or predict, but was found in neither", b.name)
			}
		} else {
			b.fh = fh
		}
	}
	return nil
}

func (b *Base) checkInSample(n int) error {
	oos, err := b.fh.IsAllOutOfSample(b.cutoff)
	if err != nil {
		return zorros.Trace(err)
	}
	if !oos {
		mn, err := b.fh.Min(b.cutoff)
		if err != nil {
			return zorros.Trace(err)
		}
		if -mn > n-1 {
			return HorizonErrorf("%v: in-sample step %d is incompatible with the length %d of `y`", b.name, mn, n)
		}
	}
	return nil
}

/*
Fit sets training data, cutoff and horizon and trains the model
*/
func (b *Base) Fit(y series.Series, x series.Frame, fh horizon.Horizon) error {
	b.fitted = false
	b.fh = horizon.Horizon{}
	if err := b.checkYX(y, x, false); err != nil {
		return err
	}
	b.y, b.x, b.withX = y, x, hasX(x)
	b.cutoff = y.Last()
	if err := b.setFH(fh); err != nil {
		return err
	}
	if !fh.IsZero() {
		if err := b.checkInSample(y.Len()); err != nil {
			return err
		}
	}
	if err := b.model.Train(b); err != nil {
		return err
	}
	b.fitted = true
	return nil
}

func (b *Base) checkPredict(fh horizon.Horizon, x series.Frame) (err error) {
	if !b.fitted {
		return notFitted(b.name)
	}
	if hasX(x) {
		if !b.withX {
			return zorros.Errorf("%v: exogenous variables `x` are given in predict, but none were given in fit", b.name)
		}
		if b.x, err = x.CombineFirst(b.x); err != nil {
			return zorros.Trace(err)
		}
	}
	if err = b.setFH(fh); err != nil {
		return
	}
	if err = b.checkInSample(b.y.Len()); err != nil {
		return
	}
	if b.withX {
		ins, err := b.fh.IsAllInSample(b.cutoff)
		if err != nil {
			return zorros.Trace(err)
		}
		if !ins {
			mx, _ := b.fh.Max(b.cutoff)
			rng, err := tsindex.Range(b.cutoff.Shift(1), b.cutoff.Shift(int64(mx)))
			if err != nil {
				return zorros.Trace(err)
			}
			if !b.x.Index().ContainsAll(rng) {
				return HorizonErrorf("%v: exogenous variables `x` must cover the full range from %v to %v", b.name, rng.First(), rng.Last())
			}
		}
	}
	return nil
}

/*
Predict forecasts the horizon, empty horizon means the one given earlier
*/
func (b *Base) Predict(fh horizon.Horizon, x series.Frame) (series.Series, error) {
	if err := b.checkPredict(fh, x); err != nil {
		return series.Series{}, err
	}
	return b.model.Forecast(b, b.fh, x)
}

/*
PredictInterval forecasts the horizon with lower and upper bounds for every significance level
*/
func (b *Base) PredictInterval(fh horizon.Horizon, x series.Frame, alphas ...float64) (series.Series, []series.Frame, error) {
	if len(alphas) == 0 {
		alphas = []float64{DefaultAlpha}
	}
	alphas, err := validate.Alpha(alphas...)
	if err != nil {
		return series.Series{}, nil, err
	}
	ee, ok := b.model.(ErrorEstimator)
	if !ok {
		return series.Series{}, nil, NotImplementedf("%v does not estimate prediction intervals", b.name)
	}
	pred, err := b.Predict(fh, x)
	if err != nil {
		return series.Series{}, nil, err
	}
	errs, err := ee.PredictionErrors(b, alphas)
	if err != nil {
		return series.Series{}, nil, err
	}
	v := pred.Values()
	r := make([]series.Frame, len(errs))
	for i, e := range errs {
		if len(e) != len(v) {
			return series.Series{}, nil, zorros.Errorf("%v: got %d errors for %d predictions", b.name, len(e), len(v))
		}
		lo, up := make([]float64, len(v)), make([]float64, len(v))
		for j := range v {
			lo[j], up[j] = v[j]-e[j], v[j]+e[j]
		}
		if r[i], err = series.NewFrame(pred.Index(), []string{"lower", "upper"}, lo, up); err != nil {
			return series.Series{}, nil, err
		}
	}
	return pred, r, nil
}

/*
Update adds new observations, moves the cutoff to the last of them
and optionally updates fitted parameters
*/
func (b *Base) Update(y series.Series, x series.Frame, updateParams bool) (err error) {
	if !b.fitted {
		return notFitted(b.name)
	}
	if err = b.checkYX(y, x, true); err != nil {
		return
	}
	if hasX(x) && !b.withX {
		return zorros.Errorf("%v: exogenous variables `x` are given in update, but none were given in fit", b.name)
	}
	if !y.Empty() {
		ny, err := y.CombineFirst(b.y)
		if err != nil {
			return zorros.Trace(err)
		}
		nx := b.x
		if hasX(x) {
			if nx, err = x.CombineFirst(b.x); err != nil {
				return zorros.Trace(err)
			}
		}
		b.y, b.x, b.cutoff = ny, nx, y.Last()
	}
	if l, ok := b.model.(UpdateListener); ok {
		return l.OnUpdate(b, y, x, updateParams)
	}
	if updateParams {
		if u, ok := b.model.(ParamUpdater); ok {
			return u.UpdateParams(b)
		}
		zlog.Warningf("%v does not have a custom update method, it will be refit each time update is called", b.name)
		return b.refit()
	}
	return nil
}

/*
refit trains the model again on the data observed up to the cutoff
*/
func (b *Base) refit() error {
	y, x := b.y, b.x
	defer func() { b.y, b.x = y, x }()
	b.y = y.Loc(y.First(), b.cutoff)
	if b.withX {
		b.x = x.Loc(x.Index().First(), b.cutoff)
	}
	if b.y.Empty() {
		return zorros.Errorf("%v: no observations up to cutoff %v to refit on", b.name, b.cutoff)
	}
	return b.model.Train(b)
}

/*
UpdatePredictSingle updates the forecaster with new data and forecasts the horizon from the new cutoff
*/
func (b *Base) UpdatePredictSingle(y series.Series, fh horizon.Horizon, x series.Frame, updateParams bool) (series.Series, error) {
	if !b.fitted {
		return series.Series{}, notFitted(b.name)
	}
	if err := b.setFH(fh); err != nil {
		return series.Series{}, err
	}
	return b.updatePredictSingle(y, b.fh, x, updateParams)
}

func (b *Base) updatePredictSingle(y series.Series, fh horizon.Horizon, x series.Frame, updateParams bool) (series.Series, error) {
	if u, ok := b.model.(singleUpdatePredictor); ok {
		return u.UpdatePredictSingle(b, y, fh, x, updateParams)
	}
	if err := b.Update(y, x, updateParams); err != nil {
		return series.Series{}, err
	}
	return b.Predict(fh, x)
}

/*
UpdatePredict makes moving-cutoff predictions over y,
by default the splitter slides along y with the current horizon
*/
func (b *Base) UpdatePredict(y series.Series, cv split.Splitter, x series.Frame, updateParams bool) (series.Frame, error) {
	if !b.fitted {
		return series.Frame{}, notFitted(b.name)
	}
	if cv == nil {
		var err error
		if d, ok := b.model.(defaultSplitter); ok {
			cv, err = d.DefaultSplitter(b)
		} else {
			cv, err = b.slidingSplitter(0)
		}
		if err != nil {
			return series.Frame{}, err
		}
	}
	return b.PredictMovingCutoff(y, cv, x, updateParams)
}

func (b *Base) slidingSplitter(windowLength int) (split.Splitter, error) {
	if b.fh.IsZero() {
		return nil, HorizonErrorf("%v: no horizon has been set yet, pass it to fit or predict", b.name)
	}
	fh, err := b.fh.ToRelative(b.cutoff)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	return split.SlidingWindow{Horizon: fh, Length: windowLength}, nil
}

/*
Score is sMAPE of the horizon forecast against y
*/
func (b *Base) Score(y series.Series, fh horizon.Horizon, x series.Frame) (float64, error) {
	pred, err := b.Predict(fh, x)
	if err != nil {
		return 0, err
	}
	return metrics.SMAPE(y, pred)
}
