package trend

import (
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"gotest.tools/v3/assert"
	"math"
	"testing"
)

func near(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-8 {
			return false
		}
	}
	return true
}

func Test_FitTrend(t *testing.T) {
	c, err := FitTrend([]float64{1, 3, 5, 7, 9}, 1)
	assert.NilError(t, err)
	assert.Assert(t, near(c, []float64{2, 1}), c)
	c, err = FitTrend([]float64{0, 1, math.NaN(), 9, 16}, 2)
	assert.NilError(t, err)
	assert.Assert(t, near(c, []float64{1, 0, 0}), c)
	c, err = FitTrend([]float64{1, 2, 3, 6}, 0)
	assert.NilError(t, err)
	assert.Assert(t, near(c, []float64{3}), c)
	_, err = FitTrend([]float64{1}, 1)
	assert.ErrorContains(t, err, "at least 2")
	assert.Equal(t, Polyval([]float64{1, 0, -1}, 3), 8.0)
}

func Test_Forecaster(t *testing.T) {
	f := LuckyNew(1)
	assert.NilError(t, f.Fit(series.FromValues(1, 3, 5, 7, 9), series.Frame{}, horizon.Horizon{}))
	p, err := f.Predict(horizon.LuckyRelative(-4, 0, 1, 2), series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"0", "4", "5", "6"})
	assert.Assert(t, near(p.Values(), []float64{1, 9, 11, 13}), p.Values())
	_, err = New(-1)
	assert.Assert(t, err != nil)
}
