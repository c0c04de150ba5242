package base

import (
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/forecast/tsindex"
	"golang.org/x/xerrors"
	"gotest.tools/v3/assert"
	"testing"
)

// meanModel forecasts the training mean, it counts trainings
type meanModel struct {
	mean   float64
	trains int
}

func (m *meanModel) Train(b *Base) error {
	m.trains++
	m.mean = fu.Mean(b.TrainingData().Values())
	return nil
}

func (m *meanModel) Forecast(b *Base, fh horizon.Horizon, x series.Frame) (series.Series, error) {
	idx, err := fh.Points(b.Cutoff())
	if err != nil {
		return series.Series{}, err
	}
	return series.New(idx, fu.Full(len(idx), m.mean))
}

func (m *meanModel) PredictionErrors(b *Base, alphas []float64) ([][]float64, error) {
	r := make([][]float64, len(alphas))
	for i, a := range alphas {
		r[i] = fu.Full(b.FH().Len(), a*10)
	}
	return r, nil
}

// lastModel repeats the last observed value
type lastModel struct {
	w *Window
}

func (m *lastModel) Train(b *Base) error {
	m.w.SetLength(1)
	return nil
}

func (m *lastModel) PredictLastWindow(b *Base, fh horizon.Horizon, x series.Frame) ([]float64, error) {
	lw := m.w.LastWindow(b)
	if !m.w.Predictable(lw) {
		return PredictNaN(fh.Len()), nil
	}
	return fu.Full(fh.Len(), lw[0]), nil
}

func newLast() *Base {
	m := &lastModel{}
	m.w = NewWindow(m)
	return New("last", OptionalHorizon, m.w)
}

func arange(from, n int) series.Series {
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(from + i)
	}
	return series.LuckyNew(tsindex.IntRange(int64(from), n), v)
}

func Test_NotFitted(t *testing.T) {
	b := New("mean", OptionalHorizon, &meanModel{})
	_, err := b.Predict(horizon.LuckyRange(1), series.Frame{})
	assert.Assert(t, xerrors.Is(err, ErrNotFitted))
	assert.Assert(t, xerrors.Is(b.Update(arange(0, 2), series.Frame{}, false), ErrNotFitted))
	assert.ErrorContains(t, b.Fit(series.Series{}, series.Frame{}, horizon.Horizon{}), "must not be empty")
}

func Test_OptionalHorizon(t *testing.T) {
	b := New("mean", OptionalHorizon, &meanModel{})
	assert.NilError(t, b.Fit(arange(0, 5), series.Frame{}, horizon.Horizon{}))
	assert.Assert(t, b.IsFitted())
	assert.Equal(t, b.Cutoff().Int(), int64(4))
	_, err := b.Predict(horizon.Horizon{}, series.Frame{})
	assert.Assert(t, xerrors.Is(err, ErrHorizon))
	p, err := b.Predict(horizon.LuckyRelative(1, 3), series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"5", "7"})
	assert.DeepEqual(t, p.Values(), []float64{2, 2})
	p, err = b.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	assert.Equal(t, p.Len(), 2)
}

func Test_RequiredHorizon(t *testing.T) {
	b := New("mean", RequiredHorizon, &meanModel{})
	err := b.Fit(arange(0, 5), series.Frame{}, horizon.Horizon{})
	assert.Assert(t, xerrors.Is(err, ErrHorizon))
	assert.NilError(t, b.Fit(arange(0, 5), series.Frame{}, horizon.LuckyRange(2)))
	_, err = b.Predict(horizon.LuckyRange(3), series.Frame{})
	assert.Assert(t, xerrors.Is(err, ErrHorizon))
	_, err = b.Predict(horizon.LuckyRange(2), series.Frame{})
	assert.NilError(t, err)
	_, err = b.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	// refit allows another horizon
	assert.NilError(t, b.Fit(arange(0, 5), series.Frame{}, horizon.LuckyRange(3)))
	assert.Equal(t, b.FH().Len(), 3)
}

func Test_InSampleBounds(t *testing.T) {
	b := New("mean", OptionalHorizon, &meanModel{})
	err := b.Fit(arange(0, 5), series.Frame{}, horizon.LuckyRelative(-5, 1))
	assert.Assert(t, xerrors.Is(err, ErrHorizon))
	assert.NilError(t, b.Fit(arange(0, 5), series.Frame{}, horizon.LuckyRelative(-4, 1)))
	p, err := b.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"0", "5"})
	_, err = b.Predict(horizon.LuckyRelative(-7), series.Frame{})
	assert.Assert(t, xerrors.Is(err, ErrHorizon))
}

func Test_UpdateMovesCutoff(t *testing.T) {
	m := &meanModel{}
	b := New("mean", OptionalHorizon, m)
	assert.NilError(t, b.Fit(arange(0, 5), series.Frame{}, horizon.LuckyRange(1)))
	assert.NilError(t, b.Update(series.Series{}, series.Frame{}, false))
	assert.Equal(t, b.Cutoff().Int(), int64(4))
	assert.NilError(t, b.Update(arange(5, 3), series.Frame{}, false))
	assert.Equal(t, b.Cutoff().Int(), int64(7))
	assert.Equal(t, b.TrainingData().Len(), 8)
	assert.Equal(t, m.trains, 1)
	assert.Equal(t, m.mean, 2.0)

	// refit on data up to the cutoff
	assert.NilError(t, b.Update(arange(3, 2), series.Frame{}, true))
	assert.Equal(t, m.trains, 2)
	assert.Equal(t, b.Cutoff().Int(), int64(4))
	assert.Equal(t, m.mean, 2.0)
	assert.Equal(t, b.TrainingData().Len(), 8)
}

func Test_DetachedCutoff(t *testing.T) {
	b := New("mean", OptionalHorizon, &meanModel{})
	assert.NilError(t, b.Fit(arange(0, 5), series.Frame{}, horizon.LuckyRange(1)))
	err := b.WithDetachedCutoff(func() error {
		return b.Update(arange(5, 5), series.Frame{}, false)
	})
	assert.NilError(t, err)
	assert.Equal(t, b.Cutoff().Int(), int64(4))
}

func Test_PredictInterval(t *testing.T) {
	b := New("mean", OptionalHorizon, &meanModel{})
	assert.NilError(t, b.Fit(arange(0, 5), series.Frame{}, horizon.Horizon{}))
	p, ints, err := b.PredictInterval(horizon.LuckyRange(2), series.Frame{}, 0.1, 0.2)
	assert.NilError(t, err)
	assert.Equal(t, p.Len(), 2)
	assert.Equal(t, len(ints), 2)
	lo, _ := ints[1].Col("lower")
	up, _ := ints[1].Col("upper")
	assert.DeepEqual(t, lo.Values(), []float64{0, 0})
	assert.DeepEqual(t, up.Values(), []float64{4, 4})
	_, _, err = b.PredictInterval(horizon.Horizon{}, series.Frame{}, 1.5)
	assert.ErrorContains(t, err, "open interval")

	l := newLast()
	assert.NilError(t, l.Fit(arange(0, 5), series.Frame{}, horizon.Horizon{}))
	_, _, err = l.PredictInterval(horizon.LuckyRange(2), series.Frame{})
	assert.Assert(t, xerrors.Is(err, ErrNotImplemented))
}

func Test_WindowInAndOutOfSample(t *testing.T) {
	b := newLast()
	assert.NilError(t, b.Fit(arange(0, 10), series.Frame{}, horizon.Horizon{}))
	p, err := b.Predict(horizon.LuckyRelative(-2, -1, 0, 1, 2), series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"7", "8", "9", "10", "11"})
	assert.DeepEqual(t, p.Values(), []float64{6, 7, 8, 9, 9})
	assert.Equal(t, b.Cutoff().Int(), int64(9))

	p, err = b.Predict(horizon.LuckyRelative(-9), series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"0"})
	assert.Assert(t, fu.AllNaN(p.Values()))
}

func Test_UpdatePredictSingleStep(t *testing.T) {
	b := newLast()
	assert.NilError(t, b.Fit(arange(0, 10), series.Frame{}, horizon.LuckyRange(1)))
	f, err := b.UpdatePredict(arange(10, 5), nil, series.Frame{}, false)
	assert.NilError(t, err)
	assert.DeepEqual(t, f.Names(), []string{PredictedColumn})
	assert.DeepEqual(t, f.Index().Strings(), []string{"10", "11", "12", "13", "14"})
	assert.DeepEqual(t, f.Column(0).Values(), []float64{9, 10, 11, 12, 13})
	assert.Equal(t, b.Cutoff().Int(), int64(9))
}

func Test_UpdatePredictMultiStep(t *testing.T) {
	b := newLast()
	assert.NilError(t, b.Fit(arange(0, 10), series.Frame{}, horizon.LuckyRange(2)))
	f, err := b.UpdatePredict(arange(10, 4), nil, series.Frame{}, false)
	assert.NilError(t, err)
	assert.DeepEqual(t, f.Names(), []string{"9", "10", "11"})
	assert.DeepEqual(t, f.Index().Strings(), []string{"10", "11", "12", "13"})
	c, _ := f.Col("10")
	v, _ := c.Get(tsindex.IntPoint(12))
	assert.Equal(t, v, 10.0)
}

func Test_UpdatePredictWithSplitter(t *testing.T) {
	m := &meanModel{}
	b := New("mean", OptionalHorizon, m)
	assert.NilError(t, b.Fit(arange(0, 4), series.Frame{}, horizon.LuckyRange(1)))
	cv := split.ExpandingWindow{Horizon: horizon.LuckyRange(1), Initial: 2}
	f, err := b.UpdatePredict(arange(4, 4), cv, series.Frame{}, true)
	assert.NilError(t, err)
	// windows [4,5] and [4,5,6] refit on everything seen up to their ends
	assert.DeepEqual(t, f.Index().Strings(), []string{"6", "7"})
	assert.DeepEqual(t, f.Column(0).Values(), []float64{2.5, 3})
	assert.Equal(t, m.trains, 3)
}

func Test_ExogenousCoverage(t *testing.T) {
	y := arange(0, 4)
	x, err := series.NewFrame(y.Index(), []string{"z"}, []float64{1, 2, 3, 4})
	assert.NilError(t, err)
	b := New("mean", OptionalHorizon, &meanModel{})
	assert.NilError(t, b.Fit(y, x, horizon.Horizon{}))
	assert.Assert(t, b.WithX())

	_, err = b.Predict(horizon.LuckyRange(1), series.Frame{})
	assert.Assert(t, xerrors.Is(err, ErrHorizon))
	future, err := series.NewFrame(tsindex.IntRange(4, 2), []string{"z"}, []float64{5, 6})
	assert.NilError(t, err)
	_, err = b.Predict(horizon.LuckyRange(3), future)
	assert.Assert(t, xerrors.Is(err, ErrHorizon))
	_, err = b.Predict(horizon.LuckyRange(2), future)
	assert.NilError(t, err)
	assert.Equal(t, b.Exogenous().Len(), 6)

	n := New("mean", OptionalHorizon, &meanModel{})
	assert.NilError(t, n.Fit(y, series.Frame{}, horizon.Horizon{}))
	_, err = n.Predict(horizon.LuckyRange(1), future)
	assert.ErrorContains(t, err, "none were given in fit")

	bad, _ := series.NewFrame(tsindex.IntRange(1, 4), []string{"z"}, []float64{1, 2, 3, 4})
	assert.ErrorContains(t, n.Fit(y, bad, horizon.Horizon{}), "same time index")
}

func Test_FailedUpdateKeepsState(t *testing.T) {
	b := newLast()
	assert.NilError(t, b.Fit(series.FromValues(1, 2, 3), series.Frame{}, horizon.LuckyRange(1)))
	y := series.LuckyNew(tsindex.IntRange(3, 2), []float64{100, 200})
	x, err := series.NewFrame(y.Index(), []string{"a"}, []float64{1, 2})
	assert.NilError(t, err)
	assert.ErrorContains(t, b.Update(y, x, false), "none were given in fit")
	assert.Equal(t, b.Cutoff().String(), "2")
	assert.Equal(t, b.TrainingData().Len(), 3)
	p, err := b.Predict(horizon.Horizon{}, series.Frame{})
	assert.NilError(t, err)
	assert.DeepEqual(t, p.Index().Strings(), []string{"3"})
	assert.DeepEqual(t, p.Values(), []float64{3})
}
