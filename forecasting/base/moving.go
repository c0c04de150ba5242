package base

import (
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/zorros/zorros"
)

// PredictedColumn names the column of concatenated single-step predictions
const PredictedColumn = "Predicted"

/*
PredictMovingCutoff starts one step before y and, for every training window of the splitter,
updates the forecaster with that window and forecasts the splitter horizon.
The cutoff is restored afterwards.
*/
func (b *Base) PredictMovingCutoff(y series.Series, cv split.Splitter, x series.Frame, updateParams bool) (series.Frame, error) {
	if y.Empty() {
		return series.Frame{}, zorros.Errorf("%v: series `y` must not be empty", b.name)
	}
	fh := cv.FH()
	windows, err := cv.Split(y.Len())
	if err != nil {
		return series.Frame{}, zorros.Trace(err)
	}
	preds := make([]series.Series, 0, len(windows))
	cutoffs := make([]tsindex.Point, 0, len(windows))
	err = b.WithDetachedCutoff(func() error {
		b.cutoff = y.First().Shift(-1)
		for _, w := range windows {
			p, err := b.updatePredictSingle(y.Iloc(w.Train), fh, x, updateParams)
			if err != nil {
				return err
			}
			preds = append(preds, p)
			cutoffs = append(cutoffs, b.cutoff)
		}
		return nil
	})
	if err != nil {
		return series.Frame{}, err
	}
	return formatMovingCutoff(preds, cutoffs)
}

/*
formatMovingCutoff concatenates single-step predictions into one column,
multi-step predictions get a column per cutoff
*/
func formatMovingCutoff(preds []series.Series, cutoffs []tsindex.Point) (series.Frame, error) {
	if len(preds) == 0 {
		return series.Frame{}, zorros.Errorf("splitter gave no windows to predict")
	}
	if preds[0].Len() == 1 {
		s, err := series.Concat(preds...)
		if err != nil {
			return series.Frame{}, zorros.Trace(err)
		}
		return series.NewFrame(s.Index(), []string{PredictedColumn}, s.Values())
	}
	names := make([]string, len(cutoffs))
	for i, c := range cutoffs {
		names[i] = c.String()
	}
	return series.Join(names, preds...)
}
