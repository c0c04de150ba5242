package transform

import (
	"go-ml.dev/pkg/forecast/series"
	"golang.org/x/xerrors"
)

// ErrNotFitted is returned when a transformer is used before fit
var ErrNotFitted = xerrors.New("transformer is not fitted")

func notFitted(name string) error {
	return xerrors.Errorf("%v must be fitted first: %w", name, ErrNotFitted)
}

/*
SeriesTransformer transforms a single time series and is able to undo the transformation
*/
type SeriesTransformer interface {
	Fit(y series.Series) error
	Transform(y series.Series) (series.Series, error)
	InverseTransform(y series.Series) (series.Series, error)
}

// FitTransform fits the transformer and transforms the same series
func FitTransform(t SeriesTransformer, y series.Series) (series.Series, error) {
	if err := t.Fit(y); err != nil {
		return series.Series{}, err
	}
	return t.Transform(y)
}

/*
PanelTransformer transforms a panel of instances, every instance is a set of
equally indexed dimensions
*/
type PanelTransformer interface {
	Fit(X [][][]float64) error
	Transform(X [][][]float64) ([][][]float64, error)
}
