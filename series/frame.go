package series

import (
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/zorros/zorros"
	"math"
)

/*
Frame is a set of named columns sharing one time index
*/
type Frame struct {
	idx   tsindex.Index
	names []string
	cols  [][]float64
}

func NewFrame(idx tsindex.Index, names []string, cols ...[]float64) (Frame, error) {
	if len(names) != len(cols) {
		return Frame{}, zorros.Errorf("%d names for %d columns", len(names), len(cols))
	}
	if err := idx.Validate(); err != nil {
		return Frame{}, zorros.Trace(err)
	}
	seen := map[string]bool{}
	for i, c := range cols {
		if len(c) != len(idx) {
			return Frame{}, zorros.Errorf("column `%v` has length %d but index has %d", names[i], len(c), len(idx))
		}
		if seen[names[i]] {
			return Frame{}, zorros.Errorf("duplicate column `%v`", names[i])
		}
		seen[names[i]] = true
	}
	return Frame{idx, names, cols}, nil
}

/*
Join makes frame from named series outer-joined on their time indices, missing values are NaN
*/
func Join(names []string, ss ...Series) (Frame, error) {
	if len(names) != len(ss) {
		return Frame{}, zorros.Errorf("%d names for %d series", len(names), len(ss))
	}
	idx := tsindex.Index{}
	for _, s := range ss {
		var err error
		if idx, err = idx.Union(s.idx); err != nil {
			return Frame{}, zorros.Trace(err)
		}
	}
	cols := make([][]float64, len(ss))
	for i, s := range ss {
		c := make([]float64, len(idx))
		k := 0
		for j, p := range idx {
			if k < len(s.idx) && s.idx[k].Compare(p) == 0 {
				c[j] = s.vals[k]
				k++
			} else {
				c[j] = math.NaN()
			}
		}
		cols[i] = c
	}
	return NewFrame(idx, names, cols...)
}

func (f Frame) Len() int {
	return len(f.idx)
}

func (f Frame) Width() int {
	return len(f.cols)
}

func (f Frame) Empty() bool {
	return len(f.idx) == 0
}

func (f Frame) Index() tsindex.Index {
	return f.idx
}

func (f Frame) Names() []string {
	return append([]string{}, f.names...)
}

func (f Frame) Col(name string) (Series, bool) {
	for i, n := range f.names {
		if n == name {
			return Series{f.idx, f.cols[i]}, true
		}
	}
	return Series{}, false
}

// Column returns i-th column as series
func (f Frame) Column(i int) Series {
	return Series{f.idx, f.cols[i]}
}

// Row returns values of all columns at position i
func (f Frame) Row(i int) []float64 {
	r := make([]float64, len(f.cols))
	for j, c := range f.cols {
		r[j] = c[i]
	}
	return r
}

/*
Loc selects rows by labels from start to end including both ends
*/
func (f Frame) Loc(start, end tsindex.Point) Frame {
	r := Frame{idx: tsindex.Index{}, names: f.names, cols: make([][]float64, len(f.cols))}
	for j := range r.cols {
		r.cols[j] = []float64{}
	}
	if f.Empty() || !f.idx[0].Compatible(start) || !f.idx[0].Compatible(end) {
		return r
	}
	from := f.idx.Search(start)
	to := f.idx.Search(end.Shift(1))
	if to <= from {
		return r
	}
	r.idx = f.idx[from:to]
	for j, c := range f.cols {
		r.cols[j] = c[from:to]
	}
	return r
}

/*
CombineFirst merges two frames on union of indices and columns, the receiver values win unless they are NaN
*/
func (f Frame) CombineFirst(o Frame) (Frame, error) {
	names := append([]string{}, f.names...)
	for _, n := range o.names {
		if _, ok := f.Col(n); !ok {
			names = append(names, n)
		}
	}
	idx, err := f.idx.Union(o.idx)
	if err != nil {
		return Frame{}, zorros.Trace(err)
	}
	cols := make([][]float64, len(names))
	for i, n := range names {
		a, okA := f.Col(n)
		b, okB := o.Col(n)
		if !okA {
			a = Series{tsindex.Index{}, []float64{}}
		}
		if !okB {
			b = Series{tsindex.Index{}, []float64{}}
		}
		c, err := a.CombineFirst(b)
		if err != nil {
			return Frame{}, zorros.Trace(err)
		}
		if c.Len() != len(idx) {
			// column covers only a part of the union index
			c = reindex(c, idx)
		}
		cols[i] = c.vals
	}
	return Frame{idx, names, cols}, nil
}

func reindex(s Series, idx tsindex.Index) Series {
	vals := make([]float64, len(idx))
	for i, p := range idx {
		vals[i], _ = s.Get(p)
	}
	return Series{idx, vals}
}
