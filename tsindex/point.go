package tsindex

import (
	"fmt"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"strconv"
	"strings"
	"time"
)

/*
Kind is a kind of time index
*/
type Kind int

const (
	Invalid Kind = iota
	Int
	Period
	Datetime
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Period:
		return "period"
	case Datetime:
		return "datetime"
	}
	return "invalid"
}

/*
ParseKind parses "int", "range", "period" or "datetime"
*/
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "int", "range", "integer":
		return Int, nil
	case "period":
		return Period, nil
	case "datetime", "date", "time":
		return Datetime, nil
	}
	return Invalid, zorros.Errorf("unknown index kind `%v`", s)
}

// ErrIncompatible is returned when points of different kinds or frequencies are mixed
var ErrIncompatible = xerrors.New("incompatible time points")

/*
Point is a single time point of an integer, period or datetime index
*/
type Point struct {
	kind Kind
	i    int64
	t    time.Time
	freq Freq
}

func IntPoint(i int64) Point {
	return Point{kind: Int, i: i}
}

func TimePoint(t time.Time, freq Freq) Point {
	return Point{kind: Datetime, t: t, freq: freq}
}

func PeriodPoint(t time.Time, freq Freq) Point {
	return Point{kind: Period, t: freq.PeriodStart(t), freq: freq}
}

func (p Point) Kind() Kind      { return p.kind }
func (p Point) IsZero() bool    { return p.kind == Invalid }
func (p Point) Int() int64      { return p.i }
func (p Point) Time() time.Time { return p.t }
func (p Point) Freq() Freq      { return p.freq }

/*
Compatible reports whether p and q belong to the same kind of index
*/
func (p Point) Compatible(q Point) bool {
	if p.kind != q.kind || p.kind == Invalid {
		return false
	}
	if p.kind == Int {
		return true
	}
	return p.freq == q.freq
}

func (p Point) incompatible(q Point) error {
	return xerrors.Errorf("%v(%v) vs %v(%v): %w", p.kind, p.freq, q.kind, q.freq, ErrIncompatible)
}

// Shift moves the point by the given number of steps
func (p Point) Shift(by int64) Point {
	switch p.kind {
	case Int:
		return Point{kind: Int, i: p.i + by}
	case Period, Datetime:
		return Point{kind: p.kind, t: p.freq.Add(p.t, by), freq: p.freq}
	}
	return p
}

// Sub returns the number of steps from q to p
func (p Point) Sub(q Point) (int64, error) {
	if !p.Compatible(q) {
		return 0, p.incompatible(q)
	}
	if p.kind == Int {
		return p.i - q.i, nil
	}
	return p.freq.Steps(q.t, p.t)
}

// Compare returns -1, 0, 1, points must be compatible
func (p Point) Compare(q Point) int {
	if p.kind == Int {
		switch {
		case p.i < q.i:
			return -1
		case p.i > q.i:
			return 1
		}
		return 0
	}
	switch {
	case p.t.Before(q.t):
		return -1
	case p.t.After(q.t):
		return 1
	}
	return 0
}

func (p Point) Equal(q Point) bool {
	return p.Compatible(q) && p.Compare(q) == 0
}

func (p Point) Before(q Point) bool {
	return p.Compare(q) < 0
}

func (p Point) After(q Point) bool {
	return p.Compare(q) > 0
}

func (p Point) String() string {
	switch p.kind {
	case Int:
		return strconv.FormatInt(p.i, 10)
	case Period:
		switch p.freq.Unit {
		case Year:
			return p.t.Format("2006")
		case Quarter:
			return fmt.Sprintf("%dQ%d", p.t.Year(), (int(p.t.Month())-1)/3+1)
		case Month:
			return p.t.Format("2006-01")
		case Day, Week:
			return p.t.Format("2006-01-02")
		}
		return p.t.Format("2006-01-02 15:04:05")
	case Datetime:
		if p.t.Hour() == 0 && p.t.Minute() == 0 && p.t.Second() == 0 && p.t.Nanosecond() == 0 {
			return p.t.Format("2006-01-02")
		}
		return p.t.Format("2006-01-02 15:04:05")
	}
	return "<invalid>"
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if k := strings.IndexAny(s, "Qq"); k == 4 {
		y, e1 := strconv.Atoi(s[:4])
		q, e2 := strconv.Atoi(s[5:])
		if e1 == nil && e2 == nil && q >= 1 && q <= 4 {
			return time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, zorros.Errorf("can't parse time point `%v`", s)
}

/*
ParsePoint parses a string into a point of the given kind and frequency
*/
func ParsePoint(kind Kind, freq Freq, s string) (Point, error) {
	switch kind {
	case Int:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Point{}, zorros.Wrapf(err, "can't parse integer point `%v`", s)
		}
		return IntPoint(i), nil
	case Period, Datetime:
		if freq.IsZero() {
			return Point{}, zorros.Errorf("frequency is required for %v points", kind)
		}
		t, err := parseTime(s)
		if err != nil {
			return Point{}, err
		}
		if kind == Period {
			return PeriodPoint(t, freq), nil
		}
		return TimePoint(t, freq), nil
	}
	return Point{}, zorros.Errorf("invalid index kind")
}
