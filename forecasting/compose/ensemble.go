package compose

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/sync/errgroup"
	"runtime"
)

/*
Member is a named forecaster of an ensemble
*/
type Member struct {
	Name       string
	Forecaster base.Forecaster
}

/*
Ensemble forecasts the mean of its members forecasts,
members are fitted in parallel with at most NJobs goroutines,
NJobs 0 means one goroutine and -1 means one per CPU
*/
type Ensemble struct {
	*base.Base
	Members []Member
	NJobs   int
}

func NewEnsemble(members []Member, nJobs int) (*Ensemble, error) {
	if len(members) == 0 {
		return nil, zorros.Errorf("ensemble needs at least one forecaster")
	}
	seen := map[string]bool{}
	for _, m := range members {
		if m.Forecaster == nil {
			return nil, zorros.Errorf("forecaster `%v` is nil", m.Name)
		}
		if seen[m.Name] {
			return nil, zorros.Errorf("forecaster names must be unique, `%v` is duplicated", m.Name)
		}
		seen[m.Name] = true
	}
	e := &Ensemble{Members: members, NJobs: nJobs}
	e.Base = base.New("EnsembleForecaster", base.OptionalHorizon, e)
	return e, nil
}

func (e *Ensemble) jobs() int {
	if e.NJobs < 0 {
		return runtime.NumCPU()
	}
	return fu.Fnzi(e.NJobs, 1)
}

func (e *Ensemble) names() []string {
	r := make([]string, len(e.Members))
	for i, m := range e.Members {
		r[i] = m.Name
	}
	return r
}

func (e *Ensemble) Train(b *base.Base) error {
	g := errgroup.Group{}
	g.SetLimit(e.jobs())
	y, x, fh := b.TrainingData(), b.Exogenous(), b.FH()
	for _, m := range e.Members {
		m := m
		g.Go(func() error {
			if err := m.Forecaster.Fit(y, x, fh); err != nil {
				return zorros.Wrapf(err, "failed to fit ensemble member `%v`: %v", m.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (e *Ensemble) Forecast(b *base.Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	preds := make([]series.Series, len(e.Members))
	g := errgroup.Group{}
	g.SetLimit(e.jobs())
	for i, m := range e.Members {
		i, m := i, m
		g.Go(func() error {
			mfh, err := alignHorizon(b, m.Forecaster, fh)
			if err != nil {
				return err
			}
			if preds[i], err = m.Forecaster.Predict(mfh, x); err != nil {
				return zorros.Wrapf(err, "ensemble member `%v` failed to predict: %v", m.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return series.Series{}, err
	}
	f, err := series.Join(e.names(), preds...)
	if err != nil {
		return series.Series{}, zorros.Trace(err)
	}
	r := make([]float64, f.Len())
	for i := range r {
		r[i] = fu.NanMean(f.Row(i))
	}
	return series.New(f.Index(), r)
}

// OnUpdate passes new observations to every member
func (e *Ensemble) OnUpdate(b *base.Base, y series.Series, x series.Frame, updateParams bool) error {
	for _, m := range e.Members {
		if err := m.Forecaster.Update(y, x, updateParams); err != nil {
			return zorros.Wrapf(err, "failed to update ensemble member `%v`: %v", m.Name, err)
		}
	}
	return nil
}

// DetachCutoff restores cutoffs of members with the ensemble cutoff
func (e *Ensemble) DetachCutoff(b *base.Base, fn func() error) error {
	fs := make([]base.Forecaster, len(e.Members))
	for i, m := range e.Members {
		fs[i] = m.Forecaster
	}
	return detachCutoffs(fn, fs...)
}

// detachCutoffs runs fn inside detached cutoffs of all the inner forecasters
func detachCutoffs(fn func() error, inner ...base.Forecaster) error {
	for _, f := range inner {
		f, next := f, fn
		fn = func() error { return f.WithDetachedCutoff(next) }
	}
	return fn()
}

/*
alignHorizon keeps the horizon for the inner forecaster sharing the cutoff,
otherwise the horizon is made absolute
*/
func alignHorizon(b *base.Base, inner base.Forecaster, fh horizon.Horizon) (horizon.Horizon, error) {
	if !fh.IsRelative() || inner.Cutoff().Equal(b.Cutoff()) {
		return fh, nil
	}
	r, err := fh.ToAbsolute(b.Cutoff())
	if err != nil {
		return horizon.Horizon{}, zorros.Trace(err)
	}
	return r, nil
}
