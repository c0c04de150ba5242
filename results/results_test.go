package results

import (
	"go-ml.dev/pkg/forecast/metrics"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"gotest.tools/v3/assert"
	"math"
	"path/filepath"
	"testing"
)

func Test_SaveLoad(t *testing.T) {
	s, err := Open(":memory:")
	assert.NilError(t, err)
	defer s.Close()

	y := series.FromValues(1, 2, 3, 4, 5, 6)
	pred := series.LuckyNew(tsindex.IntRange(4, 2), []float64{4, math.NaN()})
	assert.NilError(t, s.Save("airline", "naive", 0, y, pred, tsindex.IntPoint(3)))
	pred = series.LuckyNew(tsindex.IntRange(2, 2), []float64{2, 4})
	assert.NilError(t, s.Save("airline", "theta", 0, y, pred, tsindex.IntPoint(1)))
	assert.NilError(t, s.Save("airline", "theta", 1, y, series.LuckyNew(tsindex.IntRange(5, 1), []float64{6}), tsindex.IntPoint(4)))

	recs, err := s.Load("airline", "naive")
	assert.NilError(t, err)
	assert.Equal(t, len(recs), 2)
	assert.Equal(t, recs[0].Point, "4")
	assert.Equal(t, recs[0].YTrue, 5.)
	assert.Equal(t, recs[0].YPred, 4.)
	assert.Equal(t, recs[0].Cutoff, "3")
	assert.Assert(t, math.IsNaN(recs[1].YPred))

	// saving the fold again replaces it
	assert.NilError(t, s.Save("airline", "naive", 0, y, series.LuckyNew(tsindex.IntRange(4, 1), []float64{5}), tsindex.IntPoint(3)))
	recs, err = s.Load("airline", "naive")
	assert.NilError(t, err)
	assert.Equal(t, len(recs), 1)

	strategies, err := s.Strategies("airline")
	assert.NilError(t, err)
	assert.DeepEqual(t, strategies, []string{"naive", "theta"})
	datasets, err := s.Datasets()
	assert.NilError(t, err)
	assert.DeepEqual(t, datasets, []string{"airline"})

	rs, err := s.Results()
	assert.NilError(t, err)
	assert.Equal(t, len(rs), 2)
	assert.DeepEqual(t, rs[1].YTrue, []float64{3, 4, 6})
	assert.DeepEqual(t, rs[1].YPred, []float64{2, 4, 6})
	mae, err := rs[1].Score(metrics.MAE)
	assert.NilError(t, err)
	assert.Assert(t, math.Abs(mae-1./3) < 1e-12)

	assert.NilError(t, s.Clear("airline", "theta"))
	strategies, err = s.Strategies("airline")
	assert.NilError(t, err)
	assert.DeepEqual(t, strategies, []string{"naive"})

	err = s.Save("airline", "naive", 0, y, series.LuckyNew(tsindex.IntRange(10, 1), []float64{1}), tsindex.IntPoint(9))
	assert.ErrorContains(t, err, "absent")
}

func Test_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(path)
	assert.NilError(t, err)
	assert.NilError(t, s.Save("d", "s", 0, series.FromValues(1, 2), series.LuckyNew(tsindex.IntRange(1, 1), []float64{1}), tsindex.IntPoint(0)))
	assert.NilError(t, s.Close())

	s, err = Open(path)
	assert.NilError(t, err)
	defer s.Close()
	recs, err := s.Load("d", "s")
	assert.NilError(t, err)
	assert.Equal(t, len(recs), 1)
	assert.Equal(t, recs[0].YTrue, 2.)
}
