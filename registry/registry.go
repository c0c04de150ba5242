/*
Package registry builds forecasters, regressors and transformers by name
*/
package registry

import (
	"fmt"
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/forecasting/compose"
	"go-ml.dev/pkg/forecast/forecasting/expsmooth"
	"go-ml.dev/pkg/forecast/forecasting/naive"
	"go-ml.dev/pkg/forecast/forecasting/theta"
	"go-ml.dev/pkg/forecast/forecasting/trend"
	"go-ml.dev/pkg/forecast/model"
	"go-ml.dev/pkg/forecast/regression"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/transform"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zorros"
	"sort"
)

type builder func(spec model.Spec) (base.Forecaster, error)

var forecasters map[string]builder

func init() {
	forecasters = map[string]builder{
		"NaiveForecaster": func(s model.Spec) (base.Forecaster, error) {
			return naive.New(s.Strategy, s.Params.Int("sp", 1), s.Params.Int("window_length", 0))
		},
		"ExponentialSmoothing": func(s model.Spec) (base.Forecaster, error) {
			return expsmooth.New(s.Params.Get("smoothing_level", 0))
		},
		"ThetaForecaster": func(s model.Spec) (base.Forecaster, error) {
			return theta.New(s.Params.Get("smoothing_level", 0), s.Params.Bool("deseasonalize", true), s.Params.Int("sp", 1))
		},
		"PolynomialTrendForecaster": func(s model.Spec) (base.Forecaster, error) {
			return trend.New(s.Params.Int("degree", 1))
		},
		"TabularRegressionForecaster":             reduction(compose.TabularRegressor, ""),
		"TimeSeriesRegressionForecaster":          reduction(compose.TimeSeriesRegressor, ""),
		"DirectTabularRegressionForecaster":       reduction(compose.TabularRegressor, compose.Direct),
		"MultioutputTabularRegressionForecaster":  reduction(compose.TabularRegressor, compose.MultiOutput),
		"RecursiveTabularRegressionForecaster":    reduction(compose.TabularRegressor, compose.Recursive),
		"DirectTimeSeriesRegressionForecaster":    reduction(compose.TimeSeriesRegressor, compose.Direct),
		"RecursiveTimeSeriesRegressionForecaster": reduction(compose.TimeSeriesRegressor, compose.Recursive),
		"EnsembleForecaster":                      ensemble,
		"TransformedTargetForecaster":             transformed,
	}
}

/*
Names returns sorted names of all known forecasters
*/
func Names() []string {
	r := make([]string, 0, len(forecasters))
	for k := range forecasters {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

/*
Build creates not fitted forecaster from its name, strategy and params
*/
func Build(spec model.Spec) (base.Forecaster, error) {
	b, ok := forecasters[spec.Name]
	if !ok {
		return nil, zorros.Errorf("unknown forecaster `%v`", spec.Name)
	}
	f, err := b(spec)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to build %v: %v", spec.Name, err)
	}
	return f, nil
}

/*
Restore reads the model snapshot, builds the forecaster and fits it to the snapshot training data
*/
func Restore(input iokit.Input) (base.Forecaster, model.Snapshot, error) {
	snap, err := model.Restore(input)
	if err != nil {
		return nil, snap, err
	}
	f, err := Build(snap.Spec)
	if err != nil {
		return nil, snap, err
	}
	y, err := snap.Series()
	if err != nil {
		return nil, snap, err
	}
	fh, err := snap.FH()
	if err != nil {
		return nil, snap, zorros.Trace(err)
	}
	if err = f.Fit(y, series.Frame{}, fh); err != nil {
		return nil, snap, err
	}
	return f, snap, nil
}

/*
Regressor creates tabular or time series regressor by name,
params are applied to the regressor fields
*/
func Regressor(name string, p model.Params) (r interface{}, err error) {
	switch name {
	case "LinearRegression":
		r = &regression.LinearRegression{}
	case "KNeighborsRegressor":
		r = &regression.KNeighborsRegressor{}
	case "KNeighborsTimeSeriesRegressor":
		r = &regression.KNeighborsTimeSeriesRegressor{}
	default:
		return nil, zorros.Errorf("unknown regressor `%v`", name)
	}
	if err = p.Apply(model.Fields(r)); err != nil {
		return nil, zorros.Wrapf(err, "bad parameters of %v: %v", name, err)
	}
	return
}

func reduction(scitype, strategy string) builder {
	return func(s model.Spec) (base.Forecaster, error) {
		st := strategy
		if st == "" {
			st = s.Strategy
		}
		name := s.Regressor
		if name == "" {
			name = "LinearRegression"
			if scitype == compose.TimeSeriesRegressor {
				name = "KNeighborsTimeSeriesRegressor"
			}
		}
		reg, err := Regressor(name, s.Params.Sub("regressor"))
		if err != nil {
			return nil, err
		}
		r, err := compose.MakeReduction(reg, st, s.Params.Int("window_length", 0), scitype)
		if err != nil {
			return nil, err
		}
		r.StepLength = s.Params.Int("step_length", r.StepLength)
		return r, nil
	}
}

func members(s model.Spec) ([]compose.Member, error) {
	r := make([]compose.Member, len(s.Members))
	for i, m := range s.Members {
		f, err := Build(m)
		if err != nil {
			return nil, err
		}
		r[i] = compose.Member{Name: m.Name, Forecaster: f}
	}
	// the same forecaster may take part several times with different params
	count := map[string]int{}
	for _, m := range r {
		count[m.Name]++
	}
	for i, m := range r {
		if count[m.Name] > 1 {
			r[i].Name = fmt.Sprintf("%v_%d", m.Name, i)
		}
	}
	return r, nil
}

func ensemble(s model.Spec) (base.Forecaster, error) {
	m, err := members(s)
	if err != nil {
		return nil, err
	}
	return compose.NewEnsemble(m, s.Params.Int("n_jobs", 1))
}

func transformed(s model.Spec) (base.Forecaster, error) {
	if len(s.Members) != 1 {
		return nil, zorros.Errorf("exactly one final forecaster is required, got %d", len(s.Members))
	}
	f, err := Build(s.Members[0])
	if err != nil {
		return nil, err
	}
	ts := make([]transform.SeriesTransformer, len(s.Transformers))
	for i, t := range s.Transformers {
		if ts[i], err = Transformer(t); err != nil {
			return nil, err
		}
	}
	return compose.NewTransformedTarget(f, ts...)
}

/*
Transformer creates series transformer from its name and params
*/
func Transformer(s model.Spec) (transform.SeriesTransformer, error) {
	switch s.Name {
	case "Deseasonalizer":
		return transform.NewDeseasonalizer(s.Params.Int("sp", 1), s.Strategy), nil
	case "ConditionalDeseasonalizer":
		return transform.NewConditionalDeseasonalizer(s.Params.Int("sp", 1), s.Strategy), nil
	case "Detrender":
		f, err := trend.New(s.Params.Int("degree", 1))
		if err != nil {
			return nil, err
		}
		return &transform.Detrender{Forecaster: f}, nil
	}
	return nil, zorros.Errorf("unknown transformer `%v`", s.Name)
}
