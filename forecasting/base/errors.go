package base

import (
	"fmt"
	"golang.org/x/xerrors"
)

// ErrNotFitted is returned when a forecaster is used before fit
var ErrNotFitted = xerrors.New("forecaster is not fitted")

// ErrNotImplemented is returned for operations a forecaster does not support
var ErrNotImplemented = xerrors.New("not implemented")

// ErrHorizon is returned when the forecasting horizon is missing or does not fit the data
var ErrHorizon = xerrors.New("invalid forecasting horizon")

func notFitted(name string) error {
	return xerrors.Errorf("%v must be fitted first: %w", name, ErrNotFitted)
}

func NotImplementedf(format string, a ...interface{}) error {
	return xerrors.Errorf("%v: %w", fmt.Sprintf(format, a...), ErrNotImplemented)
}

func HorizonErrorf(format string, a ...interface{}) error {
	return xerrors.Errorf("%v: %w", fmt.Sprintf(format, a...), ErrHorizon)
}
