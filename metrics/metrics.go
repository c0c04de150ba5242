package metrics

import (
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/stat"
	"math"
	"strings"
)

/*
Metric scores predictions against true values, lower is better
*/
type Metric func(yTrue, yPred series.Series) (float64, error)

/*
Align returns true and predicted values at the predicted time points
*/
func Align(yTrue, yPred series.Series) (a, b []float64, err error) {
	if yPred.Empty() {
		return nil, nil, zorros.Errorf("predictions are empty")
	}
	a = make([]float64, yPred.Len())
	b = yPred.Values()
	for i, p := range yPred.Index() {
		v, ok := yTrue.Get(p)
		if !ok {
			return nil, nil, zorros.Errorf("time point %v is absent in true values", p)
		}
		a[i] = v
	}
	return
}

func reduce(yTrue, yPred series.Series, f func(a, b float64) float64) (float64, error) {
	a, b, err := Align(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	e := make([]float64, len(a))
	for i := range a {
		e[i] = f(a[i], b[i])
	}
	return stat.Mean(e, nil), nil
}

/*
SMAPE is symmetric mean absolute percentage error, mean of 2|y-p|/(|y|+|p|)
*/
func SMAPE(yTrue, yPred series.Series) (float64, error) {
	return reduce(yTrue, yPred, func(a, b float64) float64 {
		return 2 * math.Abs(a-b) / (math.Abs(a) + math.Abs(b))
	})
}

func MAPE(yTrue, yPred series.Series) (float64, error) {
	return reduce(yTrue, yPred, func(a, b float64) float64 {
		return math.Abs((a - b) / a)
	})
}

func MAE(yTrue, yPred series.Series) (float64, error) {
	return reduce(yTrue, yPred, func(a, b float64) float64 {
		return math.Abs(a - b)
	})
}

func MSE(yTrue, yPred series.Series) (float64, error) {
	return reduce(yTrue, yPred, func(a, b float64) float64 {
		return (a - b) * (a - b)
	})
}

func RMSE(yTrue, yPred series.Series) (float64, error) {
	v, err := MSE(yTrue, yPred)
	return math.Sqrt(v), err
}

var byName = map[string]Metric{
	"smape": SMAPE,
	"mape":  MAPE,
	"mae":   MAE,
	"mse":   MSE,
	"rmse":  RMSE,
}

/*
ByName returns metric by its name, empty name is sMAPE
*/
func ByName(name string) (Metric, error) {
	if name == "" {
		return SMAPE, nil
	}
	if m, ok := byName[strings.ToLower(name)]; ok {
		return m, nil
	}
	return nil, zorros.Errorf("unknown metric `%v`", name)
}
