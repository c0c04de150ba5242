package model

import (
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/iokit"
	"gotest.tools/v3/assert"
	"path/filepath"
	"testing"
	"time"
)

type dummy struct {
	WindowLength  int
	Alpha         float64
	Deseasonalize bool
	Metric        string
	hidden        int
}

func Test_Params(t *testing.T) {
	p := Params{"sp": 4, "regressor.k": 3, "regressor.alpha": 0.5, "deseasonalize": 0}
	assert.Equal(t, p.Get("sp", 1), 4.)
	assert.Equal(t, p.Get("window_length", 10), 10.)
	assert.Equal(t, p.Int("sp", 1), 4)
	assert.Equal(t, p.Bool("deseasonalize", true), false)
	assert.Equal(t, p.Bool("absent", true), true)
	assert.DeepEqual(t, p.Keys(), []string{"deseasonalize", "regressor.alpha", "regressor.k", "sp"})
	assert.DeepEqual(t, p.Sub("regressor"), Params{"k": 3, "alpha": 0.5})
}

func Test_Apply(t *testing.T) {
	d := &dummy{Metric: "dtw"}
	err := Params{"window_length": 3, "Alpha": 0.25, "deseasonalize": 1}.Apply(Fields(d))
	assert.NilError(t, err)
	assert.Equal(t, d.WindowLength, 3)
	assert.Equal(t, d.Alpha, 0.25)
	assert.Equal(t, d.Deseasonalize, true)
	assert.Equal(t, d.Metric, "dtw")

	err = Params{"metric": 1}.Apply(Fields(d))
	assert.ErrorContains(t, err, "does not have field `metric`")
	err = Params{"hidden": 1}.Apply(Fields(d))
	assert.ErrorContains(t, err, "does not have field")
}

func Test_SpecWith(t *testing.T) {
	s := Spec{Name: "NaiveForecaster", Params: Params{"sp": 2}}
	q := s.With(Params{"window_length": 3})
	assert.DeepEqual(t, q.Params, Params{"sp": 2, "window_length": 3})
	assert.DeepEqual(t, s.Params, Params{"sp": 2})
}

func Test_Snapshot(t *testing.T) {
	spec := Spec{Name: "ThetaForecaster", Params: Params{"sp": 12}}
	freq := tsindex.Freq{Unit: tsindex.Month, N: 1}
	y := series.LuckyNew(tsindex.PeriodRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 3, freq), []float64{1, 2, 3})
	snap, err := NewSnapshot(spec, y, horizon.LuckyRelative(1, 3))
	assert.NilError(t, err)

	file := iokit.File(filepath.Join(t.TempDir(), "model.xz"))
	assert.NilError(t, Memorize(file, snap))
	q, err := Restore(file)
	assert.NilError(t, err)
	assert.DeepEqual(t, q.Spec, spec)
	z, err := q.Series()
	assert.NilError(t, err)
	assert.DeepEqual(t, z.Index().Strings(), []string{"2020-01", "2020-02", "2020-03"})
	assert.DeepEqual(t, z.Values(), []float64{1, 2, 3})
	fh, err := q.FH()
	assert.NilError(t, err)
	assert.Assert(t, fh.Equal(horizon.LuckyRelative(1, 3)))

	snap, err = NewSnapshot(spec, series.FromValues(5, 6), horizon.Horizon{})
	assert.NilError(t, err)
	z, err = snap.Series()
	assert.NilError(t, err)
	assert.DeepEqual(t, z.Index().Strings(), []string{"0", "1"})
	fh, err = snap.FH()
	assert.NilError(t, err)
	assert.Assert(t, fh.IsZero())

	_, err = NewSnapshot(spec, series.FromValues(), horizon.Horizon{})
	assert.ErrorContains(t, err, "empty")
	_, err = Restore(iokit.File(filepath.Join(t.TempDir(), "absent.xz")))
	assert.ErrorContains(t, err, "failed to open")
}

func search(scores []float64) FatModel {
	return func(workout Workout) (*Report, error) {
		for w := workout; w != nil; w = w.Next() {
			i := w.Iteration()
			snap := &Snapshot{Spec: Spec{Name: "NaiveForecaster", Params: Params{"i": float64(i)}}, Kind: "int", Ints: []int64{0}, Values: []float64{1}}
			report, done, err := w.Complete(snap, Params{"i": float64(i)}, scores[i])
			if err != nil || done {
				return report, err
			}
		}
		return nil, nil
	}
}

func Test_Training(t *testing.T) {
	file := iokit.File(filepath.Join(t.TempDir(), "best.xz"))
	lines := []string{}
	r, err := search([]float64{3, 1, 2}).Train(Training{Iterations: 3, ModelFile: file, Verbose: func(s string) { lines = append(lines, s) }})
	assert.NilError(t, err)
	assert.Equal(t, len(r.History), 3)
	assert.Equal(t, r.TheBest, 1)
	assert.Equal(t, r.Score, 1.)
	assert.DeepEqual(t, r.Params, Params{"i": 1})
	assert.Equal(t, len(lines), 3)
	assert.Equal(t, lines[1], "[  1] {i: 1} score: 1.00000")

	snap, err := Restore(file)
	assert.NilError(t, err)
	assert.DeepEqual(t, snap.Spec.Params, Params{"i": 1})
}

func Test_TrainingScoreHistory(t *testing.T) {
	r := search([]float64{1, 2, 3, 4, 5}).LuckyTrain(Training{Iterations: 5, ScoreHistory: 2})
	assert.Equal(t, len(r.History), 3)
	assert.Equal(t, r.TheBest, 0)

	r = search([]float64{5, 4, 3, 2, 1}).LuckyTrain(Training{Iterations: 5, ScoreHistory: 2})
	assert.Equal(t, len(r.History), 5)
	assert.Equal(t, r.TheBest, 4)
}
