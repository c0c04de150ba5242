/*
Package gridsearch tunes forecaster hyper-parameters by temporal cross-validation
over all combinations of the parameter grid
*/
package gridsearch

import (
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/metrics"
	"go-ml.dev/pkg/forecast/model"
	"go-ml.dev/pkg/forecast/registry"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/sync/errgroup"
	"math"
	"runtime"
	"sort"
)

/*
Grid maps parameter names to the lists of values to try
*/
type Grid map[string][]float64

/*
Space is a definition of the grid search
*/
type Space struct {
	Spec model.Spec // forecaster to tune, grid values override its params
	Grid Grid

	// the forecaster generation function, by default the registry builds Spec with params
	ModelFunc func(model.Params) (base.Forecaster, error)

	CV           split.Splitter // expanding window by default
	Metric       metrics.Metric // sMAPE by default
	ScoreHistory int            // candidates without improvement to stop the search, 0 means all candidates
	NJobs        int            // cross-validation windows evaluated in parallel, -1 means one per CPU
	Verbose      func(string)
}

/*
Result is the search report and the best forecaster fitted on all data
*/
type Result struct {
	*model.Report
	Forecaster base.Forecaster
}

/*
Candidates expands the grid into parameter sets,
names are iterated in sorted order with the last name changing fastest
*/
func (g Grid) Candidates() ([]model.Params, error) {
	keys := make([]string, 0, len(g))
	for k, v := range g {
		if len(v) == 0 {
			return nil, zorros.Errorf("grid parameter `%v` has no values", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := []model.Params{{}}
	for _, k := range keys {
		q := make([]model.Params, 0, len(r)*len(g[k]))
		for _, p := range r {
			for _, v := range g[k] {
				c := model.Params{k: v}
				for n, x := range p {
					c[n] = x
				}
				q = append(q, c)
			}
		}
		r = q
	}
	return r, nil
}

func (s Space) build(p model.Params) (base.Forecaster, error) {
	if s.ModelFunc != nil {
		return s.ModelFunc(p)
	}
	return registry.Build(s.Spec.With(p))
}

func (s Space) jobs() int {
	if s.NJobs < 0 {
		return runtime.NumCPU()
	}
	return fu.Fnzi(s.NJobs, 1)
}

func (s Space) splitter() split.Splitter {
	if s.CV != nil {
		return s.CV
	}
	return split.ExpandingWindow{}
}

/*
Evaluate fits a forecaster with the params on every training window
and returns the mean metric of its predictions on the test windows
*/
func (s Space) Evaluate(p model.Params, y series.Series) (float64, error) {
	cv := s.splitter()
	metric := s.Metric
	if metric == nil {
		metric = metrics.SMAPE
	}
	windows, err := cv.Split(y.Len())
	if err != nil {
		return 0, zorros.Trace(err)
	}
	fh := cv.FH()
	scores := make([]float64, len(windows))
	g := errgroup.Group{}
	g.SetLimit(s.jobs())
	for i, w := range windows {
		i, w := i, w
		g.Go(func() error {
			scores[i] = math.NaN()
			if len(w.Train) == 0 {
				return nil
			}
			f, err := s.build(p)
			if err != nil {
				return err
			}
			if err = f.Fit(y.Iloc(w.Train), series.Frame{}, fh); err != nil {
				return err
			}
			pred, err := f.Predict(horizon.Horizon{}, series.Frame{})
			if err != nil {
				return err
			}
			scores[i], err = metric(y.Iloc(w.Test), pred)
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return 0, err
	}
	r := fu.NanMean(scores)
	if math.IsNaN(r) {
		return 0, zorros.Errorf("no cross-validation window has training data")
	}
	return r, nil
}

/*
Feed binds the search to the series
*/
func (s Space) Feed(y series.Series) model.FatModel {
	return func(workout model.Workout) (*model.Report, error) {
		candidates, err := s.Grid.Candidates()
		if err != nil {
			return nil, err
		}
		fh := s.splitter().FH()
		for w := workout; w != nil; w = w.Next() {
			p := candidates[w.Iteration()]
			score, err := s.Evaluate(p, y)
			if err != nil {
				zlog.Warningf("failed to evaluate %v: %v", p, err)
				score = math.NaN()
			}
			var snap *model.Snapshot
			if s.ModelFunc == nil {
				q, err := model.NewSnapshot(s.Spec.With(p), y, fh)
				if err != nil {
					return nil, err
				}
				snap = &q
			}
			report, done, err := w.Complete(snap, p, score)
			if err != nil {
				return nil, err
			}
			if done {
				return report, nil
			}
		}
		return nil, zorros.Errorf("training is interrupted")
	}
}

/*
Fit searches the best parameters and refits the best forecaster on the whole series,
the best model snapshot is written to modelFile if it's not nil
*/
func (s Space) Fit(y series.Series, modelFile iokit.Output) (*Result, error) {
	candidates, err := s.Grid.Candidates()
	if err != nil {
		return nil, err
	}
	if modelFile != nil && s.ModelFunc != nil {
		return nil, zorros.Errorf("model file requires forecaster spec instead of model function")
	}
	report, err := s.Feed(y).Train(model.Training{
		Iterations:   len(candidates),
		ScoreHistory: s.ScoreHistory,
		ModelFile:    modelFile,
		Verbose:      s.Verbose,
	})
	if err != nil {
		return nil, err
	}
	if math.IsNaN(report.Score) {
		return nil, zorros.Errorf("no candidate could be evaluated")
	}
	f, err := s.build(report.Params)
	if err != nil {
		return nil, err
	}
	if err = f.Fit(y, series.Frame{}, s.splitter().FH()); err != nil {
		return nil, zorros.Wrapf(err, "failed to refit the best forecaster: %v", err)
	}
	return &Result{report, f}, nil
}
