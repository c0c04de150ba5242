package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"go-ml.dev/pkg/forecast/forecasting/base"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/internal/config"
	"go-ml.dev/pkg/forecast/internal/dataset"
	"go-ml.dev/pkg/forecast/metrics"
	"go-ml.dev/pkg/forecast/model"
	"go-ml.dev/pkg/forecast/model/gridsearch"
	"go-ml.dev/pkg/forecast/registry"
	"go-ml.dev/pkg/forecast/results"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"io"
	"math"
	"path/filepath"
	"strings"
)

const indexColumn = "time"

func readData(c *config.Config) (series.Series, error) {
	if c.Data.Path == "" {
		return series.Series{}, zorros.Errorf("data path is required")
	}
	y, err := dataset.Read(dataset.Source(c.Data.Path), dataset.Format{Index: c.Data.Index, Freq: c.Data.Freq, Header: c.Data.Header})
	if err != nil {
		return series.Series{}, zorros.Wrapf(err, "failed to read %v: %v", c.Data.Path, err)
	}
	return y, nil
}

func datasetName(c *config.Config) string {
	if c.Data.Name != "" {
		return c.Data.Name
	}
	n := filepath.Base(c.Data.Path)
	for ext := filepath.Ext(n); ext != ""; ext = filepath.Ext(n) {
		n = strings.TrimSuffix(n, ext)
	}
	return n
}

func strategyName(s model.Spec) string {
	if s.Strategy != "" {
		return s.Name + "/" + s.Strategy
	}
	return s.Name
}

func predictCmd() *cobra.Command {
	var alpha float64
	var restore bool
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fit the forecaster and write predictions as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return predict(cfg, cmd.OutOrStdout(), restore, alpha)
		},
	}
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "significance level of prediction intervals, 0 skips intervals")
	cmd.Flags().BoolVar(&restore, "restore", false, "use the forecaster restored from the model file instead of fitting the configured one")
	return cmd
}

func predict(c *config.Config, w io.Writer, restore bool, alpha float64) (err error) {
	fh, err := c.FH()
	if err != nil {
		return
	}
	var f base.Forecaster
	if restore {
		var snap model.Snapshot
		if f, snap, err = registry.Restore(iokit.File(model.Path(c.ModelFile))); err != nil {
			return
		}
		if h := f.FH(); !h.IsZero() {
			fh = h
		}
		zlog.Infof("restored %v fitted on %d points", strategyName(snap.Spec), len(snap.Values))
	} else {
		var y series.Series
		if y, err = readData(c); err != nil {
			return
		}
		if f, err = registry.Build(c.Forecaster); err != nil {
			return
		}
		if err = f.Fit(y, series.Frame{}, fh); err != nil {
			return
		}
	}
	var fr series.Frame
	if alpha > 0 {
		pred, ivs, err := f.PredictInterval(fh, series.Frame{}, alpha)
		if err != nil {
			return err
		}
		lo, _ := ivs[0].Col("lower")
		up, _ := ivs[0].Col("upper")
		fr, err = series.NewFrame(pred.Index(), []string{base.PredictedColumn, "lower", "upper"}, pred.Values(), lo.Values(), up.Values())
		if err != nil {
			return err
		}
	} else {
		pred, err := f.Predict(fh, series.Frame{})
		if err != nil {
			return err
		}
		if fr, err = series.NewFrame(pred.Index(), []string{base.PredictedColumn}, pred.Values()); err != nil {
			return err
		}
	}
	return dataset.Write(w, indexColumn, fr)
}

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Backtest the forecaster with moving cutoffs over the test part and save predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluate(cfg, cmd.OutOrStdout())
		},
	}
}

/*
evaluate fits the forecaster on the training part of the series,
then predicts the test part moving the cutoff and keeps predictions in the results database
*/
func evaluate(c *config.Config, w io.Writer) (err error) {
	y, err := readData(c)
	if err != nil {
		return
	}
	fh, err := c.FH()
	if err != nil {
		return
	}
	metric, err := metrics.ByName(c.Evaluate.Metric)
	if err != nil {
		return
	}
	train, test, err := split.TemporalTrainTestSplit(y, c.Evaluate.TestSize)
	if err != nil {
		return
	}
	f, err := registry.Build(c.Forecaster)
	if err != nil {
		return
	}
	if err = f.Fit(train, series.Frame{}, fh); err != nil {
		return
	}
	cv := split.SlidingWindow{Horizon: fh, Length: c.Evaluate.WindowLength, Step: c.Evaluate.StepLength}
	fr, err := f.UpdatePredict(test, cv, series.Frame{}, c.Evaluate.UpdateParams)
	if err != nil {
		return
	}

	store, err := results.Open(c.Results)
	if err != nil {
		return
	}
	defer store.Close()
	name, strategy := datasetName(c), strategyName(c.Forecaster)
	if err = saveMovingCutoff(store, name, strategy, y, fr, fh); err != nil {
		return
	}

	rs, err := store.Results()
	if err != nil {
		return
	}
	for _, r := range rs {
		if r.Dataset == name && r.Strategy == strategy {
			score, err := r.Score(metric)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%v %v %v: %.5f\n", name, strategy, metricName(c.Evaluate.Metric), score)
			return err
		}
	}
	return zorros.Errorf("no results of %v on %v", strategy, name)
}

func metricName(s string) string {
	if s == "" {
		return "smape"
	}
	return strings.ToLower(s)
}

/*
saveMovingCutoff stores every cutoff as a fold,
the single column of one-step predictions is split by the horizon step back to cutoffs
*/
func saveMovingCutoff(store *results.Store, name, strategy string, y series.Series, fr series.Frame, fh horizon.Horizon) error {
	if err := store.Clear(name, strategy); err != nil {
		return err
	}
	if len(fr.Names()) == 1 && fr.Names()[0] == base.PredictedColumn {
		steps, err := fh.Steps(tsindex.Point{})
		if err != nil {
			return err
		}
		col := fr.Column(0)
		for i, p := range col.Index() {
			if err = store.Save(name, strategy, i, y, col.Slice(i, i+1), p.Shift(-int64(steps[0]))); err != nil {
				return err
			}
		}
		return nil
	}
	kind := y.Last().Kind()
	freq := y.Last().Freq()
	for i, n := range fr.Names() {
		cutoff, err := tsindex.ParsePoint(kind, freq, n)
		if err != nil {
			return zorros.Wrapf(err, "bad cutoff column `%v`: %v", n, err)
		}
		if err = store.Save(name, strategy, i, y, dropNaN(fr.Column(i)), cutoff); err != nil {
			return err
		}
	}
	return nil
}

// dropNaN removes points outside of the cutoff horizon introduced by joining columns
func dropNaN(s series.Series) series.Series {
	pos := []int{}
	for i, v := range s.Values() {
		if !math.IsNaN(v) {
			pos = append(pos, i)
		}
	}
	return s.Iloc(pos)
}

func tuneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tune",
		Short: "Grid search forecaster parameters and write the best model file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tune(cfg, cmd.OutOrStdout())
		},
	}
}

func tune(c *config.Config, w io.Writer) (err error) {
	y, err := readData(c)
	if err != nil {
		return
	}
	cv, err := c.Splitter()
	if err != nil {
		return
	}
	metric, err := metrics.ByName(c.Tune.Metric)
	if err != nil {
		return
	}
	space := gridsearch.Space{
		Spec:         c.Forecaster,
		Grid:         c.Tune.Grid,
		CV:           cv,
		Metric:       metric,
		ScoreHistory: c.Tune.ScoreHistory,
		NJobs:        c.Tune.NJobs,
		Verbose:      func(s string) { zlog.Info(s) },
	}
	path := model.Path(c.ModelFile)
	r, err := space.Fit(y, iokit.File(path))
	if err != nil {
		return
	}
	for _, k := range r.Params.Keys() {
		if _, err = fmt.Fprintf(w, "%v: %v\n", k, r.Params[k]); err != nil {
			return
		}
	}
	_, err = fmt.Fprintf(w, "%v: %.5f\nmodel: %v\n", metricName(c.Tune.Metric), r.Score, path)
	return
}

func resultsCmd() *cobra.Command {
	var metric string
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Score every strategy kept in the results database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cfg, cmd.OutOrStdout(), metric)
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "", "metric to score with, the evaluation metric by default")
	return cmd
}

func report(c *config.Config, w io.Writer, metric string) error {
	if metric == "" {
		metric = c.Evaluate.Metric
	}
	m, err := metrics.ByName(metric)
	if err != nil {
		return err
	}
	store, err := results.Open(c.Results)
	if err != nil {
		return err
	}
	defer store.Close()
	rs, err := store.Results()
	if err != nil {
		return err
	}
	for _, r := range rs {
		score, err := r.Score(m)
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintf(w, "%v\t%v\t%.5f\n", r.Dataset, r.Strategy, score); err != nil {
			return err
		}
	}
	return nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered forecasters",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, n := range registry.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
