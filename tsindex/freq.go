package tsindex

import (
	"go-ml.dev/pkg/zorros/zorros"
	"strconv"
	"strings"
	"time"
)

/*
Unit is a base unit of time index frequency
*/
type Unit int

const (
	NoUnit Unit = iota
	Second
	Minute
	Hour
	Day
	Week
	Month
	Quarter
	Year
)

var unitNames = map[Unit]string{
	Second:  "S",
	Minute:  "T",
	Hour:    "H",
	Day:     "D",
	Week:    "W",
	Month:   "M",
	Quarter: "Q",
	Year:    "A",
}

var unitAliases = map[string]Unit{
	"S":   Second,
	"T":   Minute,
	"MIN": Minute,
	"H":   Hour,
	"D":   Day,
	"W":   Week,
	"M":   Month,
	"MS":  Month,
	"Q":   Quarter,
	"QS":  Quarter,
	"A":   Year,
	"Y":   Year,
	"AS":  Year,
	"YS":  Year,
}

/*
Freq is a frequency of a time index, N units per step
*/
type Freq struct {
	Unit Unit
	N    int
}

func (f Freq) IsZero() bool {
	return f.Unit == NoUnit
}

func (f Freq) step() int {
	if f.N <= 0 {
		return 1
	}
	return f.N
}

func (f Freq) String() string {
	if f.IsZero() {
		return ""
	}
	if f.step() == 1 {
		return unitNames[f.Unit]
	}
	return strconv.Itoa(f.step()) + unitNames[f.Unit]
}

/*
ParseFreq parses frequency aliases like "D", "2H", "M", "Q", "A", "15min"
*/
func ParseFreq(s string) (Freq, error) {
	q := strings.ToUpper(strings.TrimSpace(s))
	j := 0
	for j < len(q) && q[j] >= '0' && q[j] <= '9' {
		j++
	}
	n := 1
	if j > 0 {
		v, err := strconv.Atoi(q[:j])
		if err != nil || v <= 0 {
			return Freq{}, zorros.Errorf("invalid frequency `%v`", s)
		}
		n = v
	}
	u, ok := unitAliases[q[j:]]
	if !ok {
		return Freq{}, zorros.Errorf("unknown frequency `%v`", s)
	}
	return Freq{u, n}, nil
}

func (f Freq) duration() (time.Duration, bool) {
	switch f.Unit {
	case Second:
		return time.Second, true
	case Minute:
		return time.Minute, true
	case Hour:
		return time.Hour, true
	}
	return 0, false
}

func (f Freq) days() (int, bool) {
	switch f.Unit {
	case Day:
		return 1, true
	case Week:
		return 7, true
	}
	return 0, false
}

func (f Freq) months() (int, bool) {
	switch f.Unit {
	case Month:
		return 1, true
	case Quarter:
		return 3, true
	case Year:
		return 12, true
	}
	return 0, false
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	if d == daysIn(y, m, t.Location()) || d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

/*
Aligned reports whether shifts of datetime t by the frequency compose,
month based frequencies need the first or the last day of a month
*/
func (f Freq) Aligned(t time.Time) bool {
	if _, ok := f.months(); !ok {
		return true
	}
	d := t.Day()
	return d == 1 || d == daysIn(t.Year(), t.Month(), t.Location())
}

// Add shifts t by k steps of the frequency
func (f Freq) Add(t time.Time, k int64) time.Time {
	n := k * int64(f.step())
	if d, ok := f.duration(); ok {
		return t.Add(time.Duration(n) * d)
	}
	if d, ok := f.days(); ok {
		return t.AddDate(0, 0, int(n)*d)
	}
	if m, ok := f.months(); ok {
		return addMonths(t, int(n)*m)
	}
	return t
}

func civilDays(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Steps counts how many steps of the frequency lead from a to b
func (f Freq) Steps(a, b time.Time) (int64, error) {
	var units int64
	var per int64
	if d, ok := f.duration(); ok {
		diff := b.Sub(a)
		if diff%d != 0 {
			return 0, zorros.Errorf("time points %v and %v are not aligned to frequency %v", a, b, f)
		}
		units, per = int64(diff/d), int64(f.step())
	} else if d, ok := f.days(); ok {
		units, per = civilDays(b)-civilDays(a), int64(d*f.step())
	} else if m, ok := f.months(); ok {
		units = int64(b.Year()-a.Year())*12 + int64(b.Month()-a.Month())
		per = int64(m * f.step())
	} else {
		return 0, zorros.Errorf("frequency is not set")
	}
	if units%per != 0 {
		return 0, zorros.Errorf("time points %v and %v are not aligned to frequency %v", a, b, f)
	}
	return units / per, nil
}

// PeriodStart truncates t to the start of its period
func (f Freq) PeriodStart(t time.Time) time.Time {
	loc := t.Location()
	y, m, d := t.Date()
	switch f.Unit {
	case Second:
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	case Minute:
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	case Hour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Week:
		wd := (int(t.Weekday()) + 6) % 7 // monday based
		return time.Date(y, m, d-wd, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Quarter:
		return time.Date(y, ((m-1)/3)*3+1, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, 1, 1, 0, 0, 0, 0, loc)
	}
	return t
}
