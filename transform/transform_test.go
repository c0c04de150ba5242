package transform

import (
	"go-ml.dev/pkg/forecast/forecasting/trend"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"golang.org/x/xerrors"
	"gotest.tools/v3/assert"
	"math"
	"testing"
)

// near compares with a relative tolerance, expected constants are rounded
func near(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9+1e-6*math.Abs(b[i]) {
			return false
		}
	}
	return true
}

func Test_AdditiveDeseasonalizer(t *testing.T) {
	// linear trend plus season [1, -1]
	y := series.FromValues(1, 0, 3, 2, 5, 4, 7, 6)
	d := NewDeseasonalizer(2, Additive)
	_, err := d.Transform(y)
	assert.Assert(t, xerrors.Is(err, ErrNotFitted))
	z, err := FitTransform(d, y)
	assert.NilError(t, err)
	assert.Assert(t, near(d.Seasonal(), []float64{1, -1}), d.Seasonal())
	assert.Assert(t, near(z.Values(), []float64{0, 1, 2, 3, 4, 5, 6, 7}), z.Values())

	// alignment to the training start
	q := series.LuckyNew(tsindex.IntRange(9, 2), []float64{8, 11})
	z, err = d.Transform(q)
	assert.NilError(t, err)
	assert.Assert(t, near(z.Values(), []float64{9, 10}), z.Values())
	w, err := d.InverseTransform(z)
	assert.NilError(t, err)
	assert.Assert(t, near(w.Values(), q.Values()))
}

func Test_MultiplicativeDeseasonalizer(t *testing.T) {
	y := series.FromValues(2, 1, 2, 1, 2, 1, 2, 1)
	d := NewDeseasonalizer(2, Multiplicative)
	assert.NilError(t, d.Fit(y))
	s := d.Seasonal()
	assert.Assert(t, near([]float64{s[0] / s[1]}, []float64{2}), s)
	assert.Assert(t, math.Abs((s[0]+s[1])/2-1) < 1e-12)
	z, err := d.Transform(y)
	assert.NilError(t, err)
	v := z.Values()
	for _, x := range v {
		assert.Assert(t, math.Abs(x-v[0]) < 1e-9, v)
	}

	assert.ErrorContains(t, d.Fit(series.FromValues(1, -1, 2, 3)), "zero and negative")
	assert.ErrorContains(t, d.Fit(series.FromValues(1, 2, 3)), "two complete seasons")
	assert.ErrorContains(t, NewDeseasonalizer(2, "cubic").Fit(y), "unknown seasonal model")
}

func Test_SeasonalityTest(t *testing.T) {
	y := []float64{}
	for i := 0; i < 24; i++ {
		y = append(y, []float64{10, 20, 30, 40}[i%4])
	}
	assert.Assert(t, SeasonalityTest(y, 4))
	assert.Assert(t, !SeasonalityTest(y[:8], 4))
	assert.Assert(t, !SeasonalityTest(y, 3))

	d := NewConditionalDeseasonalizer(4, Multiplicative)
	assert.NilError(t, d.Fit(series.FromValues(y[:8]...)))
	assert.Assert(t, !d.IsSeasonal())
	assert.DeepEqual(t, d.Seasonal(), []float64{1, 1, 1, 1})
	assert.NilError(t, d.Fit(series.FromValues(y...)))
	assert.Assert(t, d.IsSeasonal())
}

func Test_Detrender(t *testing.T) {
	y := series.FromValues(2, 2, 4, 8)
	d := &Detrender{Forecaster: trend.LuckyNew(1)}
	_, err := d.Transform(y)
	assert.Assert(t, xerrors.Is(err, ErrNotFitted))
	z, err := FitTransform(d, y)
	assert.NilError(t, err)
	// trend is 1 + 2*t
	assert.Assert(t, near(z.Values(), []float64{1, -1, -1, 1}), z.Values())
	w, err := d.InverseTransform(z)
	assert.NilError(t, err)
	assert.Assert(t, near(w.Values(), y.Values()))
}

func Test_Truncation(t *testing.T) {
	X := [][][]float64{{{1, 2, 3, 4}}, {{5, 6, 7}}}
	tr := &Truncation{}
	_, err := tr.Transform(X)
	assert.Assert(t, xerrors.Is(err, ErrNotFitted))
	assert.NilError(t, tr.Fit(X))
	r, err := tr.Transform(X)
	assert.NilError(t, err)
	assert.DeepEqual(t, r, [][][]float64{{{1, 2, 3}}, {{5, 6, 7}}})
	tr = &Truncation{Lower: 2}
	assert.NilError(t, tr.Fit(X))
	r, err = tr.Transform(X)
	assert.NilError(t, err)
	assert.DeepEqual(t, r, [][][]float64{{{1, 2}}, {{5, 6}}})
	tr = &Truncation{Lower: 1, Upper: 3}
	assert.NilError(t, tr.Fit(X))
	r, err = tr.Transform(X)
	assert.NilError(t, err)
	assert.DeepEqual(t, r, [][][]float64{{{2, 3}}, {{6, 7}}})
	tr = &Truncation{Lower: 1, Upper: 5}
	assert.NilError(t, tr.Fit(X))
	_, err = tr.Transform(X)
	assert.ErrorContains(t, err, "can't truncate")
}

func Test_Resize(t *testing.T) {
	rs := &Resize{Length: 5}
	X := [][][]float64{{{0, 4, 8}}}
	assert.NilError(t, rs.Fit(X))
	r, err := rs.Transform(X)
	assert.NilError(t, err)
	assert.DeepEqual(t, r, [][][]float64{{{0, 2, 4, 6, 8}}})
	assert.DeepEqual(t, Interp([]float64{0, 10}, 3), []float64{0, 5, 10})
	assert.ErrorContains(t, (&Resize{}).Fit(X), "positive integer")
}

func Test_Slope(t *testing.T) {
	X := [][][]float64{{{4, 6, 10, 12, 8, 6, 5, 5}, {4, 6, 10, 12, 8, 6, 5, 5}}}
	s := &Slope{NumIntervals: 2}
	_, err := s.Transform(X)
	assert.Assert(t, xerrors.Is(err, ErrNotFitted))
	assert.NilError(t, s.Fit(X))
	r, err := s.Transform(X)
	assert.NilError(t, err)
	expected := []float64{(5 + math.Sqrt(41)) / 4, (1 + math.Sqrt(101)) / -10}
	assert.Assert(t, near(r[0][0], expected), r[0][0])
	assert.Assert(t, near(r[0][1], expected), r[0][1])

	X = [][][]float64{{{-5, 2.5, 1, 3, 10, -1.5, 6, 12, -3, 0.2}}}
	assert.NilError(t, s.Fit(X))
	r, err = s.Transform(X)
	assert.NilError(t, err)
	expected = []float64{(104.8 + math.Sqrt(14704.04)) / 61, (143.752 + math.Sqrt(20790.0775)) / -11.2}
	assert.Assert(t, near(r[0][0], expected), r[0][0])

	X = [][][]float64{}
	ones := make([]float64, 13)
	for i := range ones {
		ones[i] = 1
	}
	for i := 0; i < 10; i++ {
		X = append(X, [][]float64{ones})
	}
	for _, n := range []int{2, 5, 8} {
		s = &Slope{NumIntervals: n}
		assert.NilError(t, s.Fit(X))
		r, err = s.Transform(X)
		assert.NilError(t, err)
		assert.Equal(t, len(r), 10)
		assert.Equal(t, len(r[0]), 1)
		assert.DeepEqual(t, r[0][0], make([]float64, n))
	}
	assert.ErrorContains(t, (&Slope{NumIntervals: -1}).Fit(X), "positive integer")
}

func Test_Subsequence(t *testing.T) {
	X := [][][]float64{{{1, 2, 3, 4, 5, 6}}}
	s := &Subsequence{Length: 1}
	_, err := s.Transform(X)
	assert.Assert(t, xerrors.Is(err, ErrNotFitted))
	assert.NilError(t, s.Fit(X))
	r, err := s.Transform(X)
	assert.NilError(t, err)
	assert.DeepEqual(t, r[0], [][]float64{{1}, {2}, {3}, {4}, {5}, {6}})

	s = &Subsequence{Length: 5}
	assert.NilError(t, s.Fit(X))
	r, err = s.Transform(X)
	assert.NilError(t, err)
	assert.DeepEqual(t, r[0], [][]float64{
		{1, 1, 1, 2, 3}, {1, 1, 2, 3, 4}, {1, 2, 3, 4, 5},
		{2, 3, 4, 5, 6}, {3, 4, 5, 6, 6}, {4, 5, 6, 6, 6}})

	s = &Subsequence{Length: 10}
	assert.NilError(t, s.Fit(X))
	r, err = s.Transform(X)
	assert.NilError(t, err)
	assert.DeepEqual(t, r[0][0], []float64{1, 1, 1, 1, 1, 1, 2, 3, 4, 5})
	assert.DeepEqual(t, r[0][5], []float64{1, 2, 3, 4, 5, 6, 6, 6, 6, 6})

	assert.ErrorContains(t, (&Subsequence{}).Fit([][][]float64{{{1, 2}, {3, 4}}}), "univariate")
	assert.ErrorContains(t, (&Subsequence{Length: -1}).Fit(X), "positive integer")
}
