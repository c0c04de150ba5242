package model

import (
	"encoding/gob"
	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zorros"
	"time"
)

/*
Snapshot is everything needed to rebuild a fitted forecaster:
the forecaster spec, the training series and the relative horizon
*/
type Snapshot struct {
	Spec    Spec
	Kind    string
	Freq    string
	Ints    []int64
	Times   []time.Time
	Values  []float64
	Horizon []int
}

func NewSnapshot(spec Spec, y series.Series, fh horizon.Horizon) (Snapshot, error) {
	if y.Empty() {
		return Snapshot{}, zorros.Errorf("can't snapshot empty training series")
	}
	idx := y.Index()
	s := Snapshot{Spec: spec, Kind: idx.Kind().String(), Freq: idx.First().Freq().String(), Values: y.Values()}
	for _, p := range idx {
		if p.Kind() == tsindex.Int {
			s.Ints = append(s.Ints, p.Int())
		} else {
			s.Times = append(s.Times, p.Time())
		}
	}
	if !fh.IsZero() {
		steps, err := fh.Steps(y.Last())
		if err != nil {
			return Snapshot{}, zorros.Trace(err)
		}
		s.Horizon = steps
	}
	return s, nil
}

/*
Series returns the training series
*/
func (s Snapshot) Series() (series.Series, error) {
	kind, err := tsindex.ParseKind(s.Kind)
	if err != nil {
		return series.Series{}, err
	}
	idx := make(tsindex.Index, len(s.Values))
	if kind == tsindex.Int {
		if len(s.Ints) != len(s.Values) {
			return series.Series{}, zorros.Errorf("snapshot has %d points for %d values", len(s.Ints), len(s.Values))
		}
		for i, v := range s.Ints {
			idx[i] = tsindex.IntPoint(v)
		}
	} else {
		freq, err := tsindex.ParseFreq(s.Freq)
		if err != nil {
			return series.Series{}, err
		}
		if len(s.Times) != len(s.Values) {
			return series.Series{}, zorros.Errorf("snapshot has %d points for %d values", len(s.Times), len(s.Values))
		}
		for i, t := range s.Times {
			if kind == tsindex.Period {
				idx[i] = tsindex.PeriodPoint(t, freq)
			} else {
				idx[i] = tsindex.TimePoint(t, freq)
			}
		}
	}
	return series.New(idx, s.Values)
}

/*
FH returns the horizon relative to the last training point, zero horizon if there was none
*/
func (s Snapshot) FH() (horizon.Horizon, error) {
	if len(s.Horizon) == 0 {
		return horizon.Horizon{}, nil
	}
	return horizon.Relative(s.Horizon...)
}

/*
Memorize writes lzma2 compressed snapshot to the output
*/
func Memorize(output iokit.Output, snap Snapshot) (err error) {
	wh, err := iokit.Lzma2(output).Create()
	if err != nil {
		return zorros.Wrapf(err, "failed to create model file: %v", err)
	}
	defer wh.End()
	if err = gob.NewEncoder(wh).Encode(snap); err != nil {
		return zorros.Wrapf(err, "failed to encode model snapshot: %v", err)
	}
	return wh.Commit()
}

/*
Restore reads snapshot written by Memorize
*/
func Restore(input iokit.Input) (snap Snapshot, err error) {
	rd, err := input.Open()
	if err != nil {
		return snap, zorros.Wrapf(err, "failed to open model file: %v", err)
	}
	defer rd.Close()
	xr, err := xz.NewReader(rd)
	if err != nil {
		return snap, zorros.Wrapf(err, "model file is not lzma2 compressed: %v", err)
	}
	if err = gob.NewDecoder(xr).Decode(&snap); err != nil {
		return snap, zorros.Wrapf(err, "failed to decode model snapshot: %v", err)
	}
	return
}
