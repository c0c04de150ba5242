package series

import (
	"fmt"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/zorros/zorros"
	"math"
	"strings"
)

/*
Series is a univariate time series, float values over a time index
*/
type Series struct {
	idx  tsindex.Index
	vals []float64
}

func New(idx tsindex.Index, vals []float64) (Series, error) {
	if len(idx) != len(vals) {
		return Series{}, zorros.Errorf("index length %d does not match values length %d", len(idx), len(vals))
	}
	if err := idx.Validate(); err != nil {
		return Series{}, zorros.Trace(err)
	}
	return Series{idx, vals}, nil
}

// LuckyNew creates series or panics
func LuckyNew(idx tsindex.Index, vals []float64) Series {
	s, err := New(idx, vals)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return s
}

/*
FromValues creates series with integer index starting at 0
*/
func FromValues(vals ...float64) Series {
	return Series{tsindex.IntRange(0, len(vals)), vals}
}

func (s Series) Len() int {
	return len(s.vals)
}

func (s Series) Empty() bool {
	return len(s.vals) == 0
}

func (s Series) Index() tsindex.Index {
	return s.idx
}

// Values returns a copy of series values
func (s Series) Values() []float64 {
	r := make([]float64, len(s.vals))
	copy(r, s.vals)
	return r
}

func (s Series) At(i int) float64 {
	return s.vals[i]
}

func (s Series) First() tsindex.Point {
	return s.idx.First()
}

func (s Series) Last() tsindex.Point {
	return s.idx.Last()
}

func (s Series) Get(p tsindex.Point) (float64, bool) {
	if j, ok := s.idx.Loc(p); ok {
		return s.vals[j], true
	}
	return math.NaN(), false
}

/*
Iloc selects values by positions
*/
func (s Series) Iloc(pos []int) Series {
	idx := make(tsindex.Index, len(pos))
	vals := make([]float64, len(pos))
	for i, j := range pos {
		idx[i] = s.idx[j]
		vals[i] = s.vals[j]
	}
	return Series{idx, vals}
}

/*
Slice selects values by position range [from,to), bounds are clipped
*/
func (s Series) Slice(from, to int) Series {
	if from < 0 {
		from = 0
	}
	if to > len(s.vals) {
		to = len(s.vals)
	}
	if to <= from {
		return Series{tsindex.Index{}, []float64{}}
	}
	return Series{s.idx[from:to], s.vals[from:to]}
}

/*
Loc selects values by labels from start to end including both ends
*/
func (s Series) Loc(start, end tsindex.Point) Series {
	if s.Empty() || !s.idx[0].Compatible(start) || !s.idx[0].Compatible(end) {
		return Series{tsindex.Index{}, []float64{}}
	}
	from := s.idx.Search(start)
	to := s.idx.Search(end.Shift(1))
	return s.Slice(from, to)
}

// WithValues returns series with the same index and new values
func (s Series) WithValues(vals []float64) (Series, error) {
	if len(vals) != len(s.idx) {
		return Series{}, zorros.Errorf("index length %d does not match values length %d", len(s.idx), len(vals))
	}
	return Series{s.idx, vals}, nil
}

// Map applies f to every value
func (s Series) Map(f func(float64) float64) Series {
	vals := make([]float64, len(s.vals))
	for i, x := range s.vals {
		vals[i] = f(x)
	}
	return Series{s.idx, vals}
}

/*
CombineFirst merges two series, the receiver values win unless they are NaN
*/
func (s Series) CombineFirst(o Series) (Series, error) {
	idx, err := s.idx.Union(o.idx)
	if err != nil {
		return Series{}, zorros.Trace(err)
	}
	vals := make([]float64, len(idx))
	i, j := 0, 0
	for k, p := range idx {
		v := math.NaN()
		if j < len(o.idx) && o.idx[j].Compare(p) == 0 {
			v = o.vals[j]
			j++
		}
		if i < len(s.idx) && s.idx[i].Compare(p) == 0 {
			if !math.IsNaN(s.vals[i]) {
				v = s.vals[i]
			}
			i++
		}
		vals[k] = v
	}
	return Series{idx, vals}, nil
}

/*
Append concatenates series which must follow the receiver in time
*/
func (s Series) Append(o Series) (Series, error) {
	if s.Empty() {
		return o, nil
	}
	if o.Empty() {
		return s, nil
	}
	if !s.Last().Compatible(o.First()) {
		return Series{}, zorros.Errorf("can't append %v series to %v series", o.idx.Kind(), s.idx.Kind())
	}
	if !s.Last().Before(o.First()) {
		return Series{}, zorros.Errorf("appended series starts at %v which is not after %v", o.First(), s.Last())
	}
	idx := make(tsindex.Index, 0, len(s.idx)+len(o.idx))
	idx = append(append(idx, s.idx...), o.idx...)
	vals := make([]float64, 0, len(idx))
	vals = append(append(vals, s.vals...), o.vals...)
	return Series{idx, vals}, nil
}

// Concat appends all series in order
func Concat(ss ...Series) (r Series, err error) {
	for _, s := range ss {
		if r, err = r.Append(s); err != nil {
			return
		}
	}
	return
}

func (s Series) String() string {
	b := &strings.Builder{}
	for i, p := range s.idx {
		fmt.Fprintf(b, "%v\t%v\n", p, s.vals[i])
	}
	return b.String()
}
