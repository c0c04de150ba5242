package registry

import (
	"go-ml.dev/pkg/forecast/forecasting/compose"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/model"
	"go-ml.dev/pkg/forecast/regression"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/iokit"
	"gotest.tools/v3/assert"
	"math"
	"path/filepath"
	"sort"
	"testing"
)

func Test_Names(t *testing.T) {
	names := Names()
	assert.Assert(t, sort.StringsAreSorted(names))
	for _, n := range names {
		_, ok := forecasters[n]
		assert.Assert(t, ok, n)
	}
	assert.Equal(t, len(names), 13)
}

func Test_Build(t *testing.T) {
	f, err := Build(model.Spec{Name: "NaiveForecaster", Strategy: "mean"})
	assert.NilError(t, err)
	assert.Equal(t, f.Name(), "NaiveForecaster")
	assert.NilError(t, f.Fit(series.FromValues(1, 2, 3, 4), series.Frame{}, horizon.LuckyRange(1)))
	p, err := f.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Values(), []float64{2.5})

	f, err = Build(model.Spec{Name: "TabularRegressionForecaster", Strategy: "direct", Params: model.Params{"window_length": 3}})
	assert.NilError(t, err)
	assert.Equal(t, f.Name(), "DirectTabularRegressionForecaster")
	assert.Equal(t, f.(*compose.Reducer).WindowLength, 3)

	f, err = Build(model.Spec{Name: "RecursiveTimeSeriesRegressionForecaster"})
	assert.NilError(t, err)
	assert.Equal(t, f.Name(), "RecursiveTimeSeriesRegressionForecaster")

	_, err = Build(model.Spec{Name: "ProphetForecaster"})
	assert.ErrorContains(t, err, "unknown forecaster")
	_, err = Build(model.Spec{Name: "NaiveForecaster", Strategy: "seasonal"})
	assert.ErrorContains(t, err, "failed to build NaiveForecaster")
	_, err = Build(model.Spec{Name: "TransformedTargetForecaster"})
	assert.ErrorContains(t, err, "exactly one final forecaster")
}

func Test_Regressor(t *testing.T) {
	r, err := Regressor("KNeighborsTimeSeriesRegressor", model.Params{"k": 2, "window": 0.1})
	assert.NilError(t, err)
	kr := r.(*regression.KNeighborsTimeSeriesRegressor)
	assert.Equal(t, kr.K, 2)
	assert.Equal(t, kr.Window, 0.1)
	_, err = Regressor("LinearRegression", model.Params{"k": 2})
	assert.ErrorContains(t, err, "does not have field `k`")
	_, err = Regressor("SVR", nil)
	assert.ErrorContains(t, err, "unknown regressor")
}

func Test_Composites(t *testing.T) {
	f, err := Build(model.Spec{Name: "EnsembleForecaster", Members: []model.Spec{
		{Name: "NaiveForecaster", Strategy: "last"},
		{Name: "NaiveForecaster", Strategy: "mean"},
	}})
	assert.NilError(t, err)
	e := f.(*compose.Ensemble)
	assert.Equal(t, e.Members[0].Name, "NaiveForecaster_0")
	assert.Equal(t, e.Members[1].Name, "NaiveForecaster_1")
	assert.NilError(t, f.Fit(series.FromValues(1, 2, 3, 4), series.Frame{}, horizon.LuckyRange(1)))
	p, err := f.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Values(), []float64{3.25})

	f, err = Build(model.Spec{
		Name:         "TransformedTargetForecaster",
		Transformers: []model.Spec{{Name: "Deseasonalizer", Params: model.Params{"sp": 2}}},
		Members:      []model.Spec{{Name: "NaiveForecaster"}},
	})
	assert.NilError(t, err)
	assert.NilError(t, f.Fit(series.FromValues(1, 0, 3, 2, 5, 4, 7, 6), series.Frame{}, horizon.LuckyRange(2)))
	p, err = f.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	for i, v := range []float64{8, 6} {
		assert.Assert(t, math.Abs(p.At(i)-v) < 1e-9, p.Values())
	}

	_, err = Transformer(model.Spec{Name: "BoxCox"})
	assert.ErrorContains(t, err, "unknown transformer")
}

func Test_Restore(t *testing.T) {
	file := iokit.File(filepath.Join(t.TempDir(), "naive.xz"))
	snap, err := model.NewSnapshot(model.Spec{Name: "NaiveForecaster", Strategy: "last"}, series.FromValues(1, 2, 3), horizon.LuckyRange(2))
	assert.NilError(t, err)
	assert.NilError(t, model.Memorize(file, snap))

	f, q, err := Restore(file)
	assert.NilError(t, err)
	assert.Equal(t, q.Spec.Name, "NaiveForecaster")
	assert.Assert(t, f.IsFitted())
	p, err := f.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"3", "4"})
	assert.DeepEqual(t, p.Values(), []float64{3, 3})
}
