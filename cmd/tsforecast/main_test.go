package main

import (
	"bytes"
	"fmt"
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/internal/config"
	"go-ml.dev/pkg/forecast/model"
	"go-ml.dev/pkg/forecast/model/gridsearch"
	"go-ml.dev/pkg/forecast/results"
	"golang.org/x/xerrors"
	"gotest.tools/v3/assert"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func rampConfig(t *testing.T, n int) *config.Config {
	dir := t.TempDir()
	b := strings.Builder{}
	b.WriteString("t,y\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i+1)
	}
	path := filepath.Join(dir, "ramp.csv")
	assert.NilError(t, os.WriteFile(path, []byte(b.String()), 0644))
	c := config.DefaultConfig()
	c.Data.Path = path
	c.Results = filepath.Join(dir, "results.db")
	c.ModelFile = filepath.Join(dir, "model.xz")
	return c
}

func Test_DatasetName(t *testing.T) {
	c := config.DefaultConfig()
	c.Data.Path = "/data/airline.csv.gz"
	assert.Equal(t, datasetName(c), "airline")
	c.Data.Name = "passengers"
	assert.Equal(t, datasetName(c), "passengers")
	assert.Equal(t, strategyName(model.Spec{Name: "NaiveForecaster", Strategy: "mean"}), "NaiveForecaster/mean")
}

func Test_Predict(t *testing.T) {
	c := rampConfig(t, 20)
	c.Horizon = []int{1, 2}
	w := bytes.Buffer{}
	assert.NilError(t, predict(c, &w, false, 0))
	assert.Equal(t, w.String(), "time,Predicted\n20,20\n21,20\n")

	err := predict(c, &bytes.Buffer{}, false, 0.1)
	assert.Assert(t, xerrors.Is(err, base.ErrNotImplemented))

	c.Forecaster = model.Spec{Name: "ThetaForecaster", Params: model.Params{"deseasonalize": 0}}
	w.Reset()
	assert.NilError(t, predict(c, &w, false, 0.1))
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	assert.Equal(t, lines[0], "time,Predicted,lower,upper")
	assert.Equal(t, len(lines), 3)

	c.Data.Path = ""
	assert.ErrorContains(t, predict(c, &w, false, 0), "data path is required")
}

func Test_Evaluate(t *testing.T) {
	c := rampConfig(t, 20)
	c.Evaluate.TestSize = 5
	c.Evaluate.Metric = "mae"
	w := bytes.Buffer{}
	// every one-step prediction lags the ramp by one
	assert.NilError(t, evaluate(c, &w))
	assert.Equal(t, w.String(), "ramp NaiveForecaster mae: 1.00000\n")

	store, err := results.Open(c.Results)
	assert.NilError(t, err)
	recs, err := store.Load("ramp", "NaiveForecaster")
	assert.NilError(t, err)
	assert.NilError(t, store.Close())
	assert.Equal(t, len(recs), 5)
	assert.Equal(t, recs[0].Point, "15")
	assert.Equal(t, recs[0].Cutoff, "14")

	// two-step predictions replace the previous run
	c.Horizon = []int{1, 2}
	w.Reset()
	assert.NilError(t, evaluate(c, &w))
	assert.Equal(t, w.String(), "ramp NaiveForecaster mae: 1.50000\n")

	store, err = results.Open(c.Results)
	assert.NilError(t, err)
	recs, err = store.Load("ramp", "NaiveForecaster")
	assert.NilError(t, err)
	assert.NilError(t, store.Close())
	assert.Equal(t, len(recs), 8)
	assert.Equal(t, recs[7].Point, "19")
	assert.Equal(t, recs[7].Cutoff, "17")

	w.Reset()
	assert.NilError(t, report(c, &w, "mae"))
	assert.Equal(t, w.String(), "ramp\tNaiveForecaster\t1.50000\n")
	assert.ErrorContains(t, report(c, &w, "r2"), "r2")
}

func Test_Tune(t *testing.T) {
	c := rampConfig(t, 30)
	c.Forecaster = model.Spec{Name: "NaiveForecaster", Strategy: "mean"}
	c.Tune.Grid = gridsearch.Grid{"window_length": {5, 1}}
	c.Tune.Metric = "mae"
	w := bytes.Buffer{}
	assert.NilError(t, tune(c, &w))
	assert.Equal(t, w.String(), fmt.Sprintf("window_length: 1\nmae: 1.00000\nmodel: %v\n", c.ModelFile))

	c.Data.Path = ""
	w.Reset()
	assert.NilError(t, predict(c, &w, true, 0))
	assert.Equal(t, w.String(), "time,Predicted\n30,30\n")
}
