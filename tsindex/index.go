package tsindex

import (
	"go-ml.dev/pkg/zorros/zorros"
	"sort"
	"time"
)

/*
Index is a sorted sequence of strictly increasing compatible time points
*/
type Index []Point

func IntRange(start int64, n int) Index {
	r := make(Index, n)
	for i := range r {
		r[i] = IntPoint(start + int64(i))
	}
	return r
}

func DateRange(start time.Time, n int, freq Freq) Index {
	r := make(Index, n)
	p := TimePoint(start, freq)
	for i := range r {
		r[i] = p.Shift(int64(i))
	}
	return r
}

func PeriodRange(start time.Time, n int, freq Freq) Index {
	r := make(Index, n)
	p := PeriodPoint(start, freq)
	for i := range r {
		r[i] = p.Shift(int64(i))
	}
	return r
}

/*
Range creates index from start to end including both ends
*/
func Range(start, end Point) (Index, error) {
	n, err := end.Sub(start)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return Index{}, nil
	}
	r := make(Index, n+1)
	for i := range r {
		r[i] = start.Shift(int64(i))
	}
	return r, nil
}

func (x Index) Len() int {
	return len(x)
}

func (x Index) Kind() Kind {
	if len(x) == 0 {
		return Invalid
	}
	return x[0].kind
}

func (x Index) First() Point {
	if len(x) == 0 {
		return Point{}
	}
	return x[0]
}

func (x Index) Last() Point {
	if len(x) == 0 {
		return Point{}
	}
	return x[len(x)-1]
}

/*
Validate checks the index is homogeneous and strictly increasing
*/
func (x Index) Validate() error {
	for i := range x {
		if x[i].IsZero() {
			return zorros.Errorf("index has invalid point at %d", i)
		}
		if x[i].kind == Datetime && !x[i].freq.Aligned(x[i].t) {
			return zorros.Errorf("datetime point %v is not aligned to frequency %v, expected the first or the last day of a month", x[i], x[i].freq)
		}
		if i == 0 {
			continue
		}
		if !x[i].Compatible(x[0]) {
			return x[i].incompatible(x[0])
		}
		if !x[i-1].Before(x[i]) {
			return zorros.Errorf("index is not strictly increasing at %d: %v >= %v", i, x[i-1], x[i])
		}
	}
	return nil
}

/*
Loc returns position of the point in the index
*/
func (x Index) Loc(p Point) (int, bool) {
	if len(x) == 0 || !x[0].Compatible(p) {
		return 0, false
	}
	j := sort.Search(len(x), func(i int) bool { return x[i].Compare(p) >= 0 })
	if j < len(x) && x[j].Compare(p) == 0 {
		return j, true
	}
	return j, false
}

// Search returns the first position with point not before p
func (x Index) Search(p Point) int {
	return sort.Search(len(x), func(i int) bool { return x[i].Compare(p) >= 0 })
}

func (x Index) Contains(p Point) bool {
	_, ok := x.Loc(p)
	return ok
}

func (x Index) ContainsAll(y Index) bool {
	for _, p := range y {
		if !x.Contains(p) {
			return false
		}
	}
	return true
}

func (x Index) Equal(y Index) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !x[i].Equal(y[i]) {
			return false
		}
	}
	return true
}

/*
Union merges two sorted indices into sorted unique one
*/
func (x Index) Union(y Index) (Index, error) {
	if len(x) == 0 {
		return append(Index{}, y...), nil
	}
	if len(y) == 0 {
		return append(Index{}, x...), nil
	}
	if !x[0].Compatible(y[0]) {
		return nil, x[0].incompatible(y[0])
	}
	r := make(Index, 0, len(x)+len(y))
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		switch c := x[i].Compare(y[j]); {
		case c < 0:
			r = append(r, x[i])
			i++
		case c > 0:
			r = append(r, y[j])
			j++
		default:
			r = append(r, x[i])
			i++
			j++
		}
	}
	r = append(r, x[i:]...)
	return append(r, y[j:]...), nil
}

func (x Index) Strings() []string {
	r := make([]string, len(x))
	for i, p := range x {
		r[i] = p.String()
	}
	return r
}
