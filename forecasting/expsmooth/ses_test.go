package expsmooth

import (
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"gotest.tools/v3/assert"
	"math"
	"testing"
)

func Test_FixedLevel(t *testing.T) {
	s, err := FitSES([]float64{1, 2, 3}, 0.5)
	assert.NilError(t, err)
	assert.DeepEqual(t, s.Levels([]float64{1, 2, 3}), []float64{1, 1.5, 2.25})
	assert.DeepEqual(t, s.Fitted([]float64{1, 2, 3}), []float64{1, 1, 1.5})
	assert.Equal(t, s.SSE, 3.25)
	_, err = FitSES([]float64{1}, 1.5)
	assert.ErrorContains(t, err, "smoothing level")
	_, err = FitSES([]float64{math.NaN()}, 0)
	assert.ErrorContains(t, err, "no observed values")
}

func Test_EstimatedLevel(t *testing.T) {
	y := []float64{0, 0, 0, 10, 10, 10, 10, 10}
	s, err := FitSES(y, 0)
	assert.NilError(t, err)
	assert.Assert(t, s.Alpha > 0.9, s.Alpha)
	y = []float64{5, 7, 4, 6, 5, 8, 3, 6, 5, 7}
	s, err = FitSES(y, 0)
	assert.NilError(t, err)
	assert.Assert(t, s.Alpha > 0 && s.Alpha < 1)
	assert.Assert(t, s.SSE <= sse(y, 0.5)+1e-9)
	assert.Assert(t, s.SSE <= sse(y, 0.9)+1e-9)
}

func Test_Forecaster(t *testing.T) {
	f, err := New(0.5)
	assert.NilError(t, err)
	assert.NilError(t, f.Fit(series.FromValues(1, 2, 3), series.Frame{}, horizon.Horizon{}))
	p, err := f.Predict(horizon.LuckyRelative(-1, 0, 1, 2), series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"1", "2", "3", "4"})
	assert.DeepEqual(t, p.Values(), []float64{1, 1.5, 2.25, 2.25})
	assert.Equal(t, f.Fitted().Alpha, 0.5)

	assert.NilError(t, f.Update(series.LuckyNew(p.Index()[2:3], []float64{4}), series.Frame{}, false))
	p, err = f.Predict(horizon.LuckyRange(1), series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Values(), []float64{3.125})

	_, err = New(-1)
	assert.Assert(t, err != nil)
}
