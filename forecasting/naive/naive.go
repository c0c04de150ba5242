package naive

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/validate"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"math"
)

const (
	Last  = "last"
	Mean  = "mean"
	Drift = "drift"
)

/*
Forecaster makes forecasts with simple strategies:

	last  repeats the last value, or the last season when SP > 1
	mean  repeats the mean of the window, or of the same season positions when SP > 1
	drift extends the last value by the mean difference of the window
*/
type Forecaster struct {
	*base.Base
	Strategy     string
	SP           int
	WindowLength int // 0 means the whole training series for mean and drift

	w  *base.Window
	sp int
}

func New(strategy string, sp, windowLength int) (*Forecaster, error) {
	switch strategy {
	case Last, Mean, Drift:
	case "":
		strategy = Last
	default:
		return nil, zorros.Errorf("unknown strategy `%v`, expected one of last, mean, drift", strategy)
	}
	f := &Forecaster{Strategy: strategy, SP: fu.Fnzi(sp, 1), WindowLength: windowLength}
	f.w = base.NewWindow(f)
	f.Base = base.New("NaiveForecaster", base.OptionalHorizon, f.w)
	return f, nil
}

func LuckyNew(strategy string, sp, windowLength int) *Forecaster {
	f, err := New(strategy, sp, windowLength)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return f
}

func (f *Forecaster) windowOr(n int) (int, error) {
	if f.WindowLength == 0 {
		return n, nil
	}
	return validate.WindowLength(f.WindowLength)
}

func (f *Forecaster) Train(b *base.Base) (err error) {
	n := b.TrainingData().Len()
	length := 0
	param := "window_length"
	if f.sp, err = validate.SP(f.SP); err != nil {
		return
	}
	switch f.Strategy {
	case Last:
		if f.WindowLength != 0 {
			zlog.Warning("for the `last` strategy the `window_length` value will be ignored")
		}
		length = f.sp
		if f.sp != 1 {
			param = "sp"
		}
	case Mean:
		if f.WindowLength != 0 && f.sp != 1 && f.WindowLength < f.sp {
			return zorros.Errorf("the `window_length` %d is less than the `sp` %d", f.WindowLength, f.sp)
		}
		if length, err = f.windowOr(n); err != nil {
			return
		}
	case Drift:
		if f.sp != 1 {
			zlog.Warning("for the `drift` strategy the `sp` value will be ignored")
		}
		if length, err = f.windowOr(n); err != nil {
			return
		}
		if length < 2 {
			return zorros.Errorf("the `drift` strategy needs a window of at least 2 observations, got %d", length)
		}
	}
	if length > n {
		return zorros.Errorf("the %v %d is larger than the training series of length %d", param, length, n)
	}
	f.w.SetLength(length)
	return nil
}

func (f *Forecaster) PredictLastWindow(b *base.Base, fh horizon.Horizon, x series.Frame) ([]float64, error) {
	lw := f.w.LastWindow(b)
	if len(lw) == 0 || fu.AllNaN(lw) {
		return base.PredictNaN(fh.Len()), nil
	}
	steps, err := fh.Steps(b.Cutoff())
	if err != nil {
		return nil, zorros.Trace(err)
	}
	r := make([]float64, len(steps))
	switch {
	case f.Strategy == Last && f.sp == 1:
		for i := range r {
			r[i] = lw[len(lw)-1]
		}
	case f.Strategy == Last:
		if len(lw) < f.sp {
			return base.PredictNaN(fh.Len()), nil
		}
		for i, h := range steps {
			r[i] = lw[(h-1)%f.sp]
		}
	case f.Strategy == Mean && f.sp == 1:
		m := fu.NanMean(lw)
		for i := range r {
			r[i] = m
		}
	case f.Strategy == Mean:
		season := seasonalMeans(lw, f.sp)
		for i, h := range steps {
			r[i] = season[((h-1)%f.sp+f.sp)%f.sp]
		}
	case f.Strategy == Drift:
		d := fu.NanMean(fu.Diff(lw))
		last := lw[len(lw)-1]
		for i, h := range steps {
			r[i] = last + d*float64(h)
		}
	}
	return r, nil
}

/*
seasonalMeans averages values at the same position of the season,
positions count from the window start and the first forecast step takes position 0
*/
func seasonalMeans(lw []float64, sp int) []float64 {
	r := make([]float64, sp)
	for p := 0; p < sp; p++ {
		s, n := 0.0, 0
		for i := p; i < len(lw); i += sp {
			if !math.IsNaN(lw[i]) {
				s += lw[i]
				n++
			}
		}
		if n > 0 {
			r[p] = s / float64(n)
		} else {
			r[p] = math.NaN()
		}
	}
	return r
}
