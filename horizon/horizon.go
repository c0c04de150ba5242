package horizon

import (
	"fmt"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/zorros/zorros"
	"sort"
	"strings"
)

/*
Horizon is a set of time points to forecast, either relative steps
from the cutoff or absolute time points
*/
type Horizon struct {
	relative bool
	steps    []int
	points   tsindex.Index
}

/*
Relative creates horizon of steps relative to cutoff,
steps are sorted, duplicates are not allowed
*/
func Relative(steps ...int) (Horizon, error) {
	if len(steps) == 0 {
		return Horizon{}, zorros.Errorf("horizon must not be empty")
	}
	s := append([]int{}, steps...)
	sort.Ints(s)
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			return Horizon{}, zorros.Errorf("horizon has duplicate step %d", s[i])
		}
	}
	return Horizon{relative: true, steps: s}, nil
}

func LuckyRelative(steps ...int) Horizon {
	h, err := Relative(steps...)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return h
}

/*
Range creates horizon of steps 1..n
*/
func Range(n int) (Horizon, error) {
	if n < 1 {
		return Horizon{}, zorros.Errorf("horizon range must be positive, got %d", n)
	}
	s := make([]int, n)
	for i := range s {
		s[i] = i + 1
	}
	return Horizon{relative: true, steps: s}, nil
}

func LuckyRange(n int) Horizon {
	h, err := Range(n)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return h
}

/*
Absolute creates horizon of time points, points must be of one kind
*/
func Absolute(points ...tsindex.Point) (Horizon, error) {
	if len(points) == 0 {
		return Horizon{}, zorros.Errorf("horizon must not be empty")
	}
	p := append(tsindex.Index{}, points...)
	for _, q := range p {
		if !q.Compatible(p[0]) {
			return Horizon{}, zorros.Errorf("horizon mixes %v and %v time points", p[0].Kind(), q.Kind())
		}
	}
	sort.Slice(p, func(i, j int) bool { return p[i].Before(p[j]) })
	for i := 1; i < len(p); i++ {
		if p[i].Equal(p[i-1]) {
			return Horizon{}, zorros.Errorf("horizon has duplicate point %v", p[i])
		}
	}
	return Horizon{points: p}, nil
}

func (h Horizon) IsZero() bool {
	return len(h.steps) == 0 && len(h.points) == 0 && !h.relative
}

func (h Horizon) IsRelative() bool {
	return h.relative
}

func (h Horizon) Len() int {
	if h.relative {
		return len(h.steps)
	}
	return len(h.points)
}

/*
Steps returns steps relative to the cutoff
*/
func (h Horizon) Steps(cutoff tsindex.Point) ([]int, error) {
	if h.relative {
		return append([]int{}, h.steps...), nil
	}
	if cutoff.IsZero() {
		return nil, zorros.Errorf("cutoff is required to make absolute horizon relative")
	}
	r := make([]int, len(h.points))
	for i, p := range h.points {
		n, err := p.Sub(cutoff)
		if err != nil {
			return nil, zorros.Trace(err)
		}
		r[i] = int(n)
	}
	return r, nil
}

/*
Points returns absolute time points of the horizon
*/
func (h Horizon) Points(cutoff tsindex.Point) (tsindex.Index, error) {
	if !h.relative {
		return append(tsindex.Index{}, h.points...), nil
	}
	if cutoff.IsZero() {
		return nil, zorros.Errorf("cutoff is required to make relative horizon absolute")
	}
	r := make(tsindex.Index, len(h.steps))
	for i, s := range h.steps {
		r[i] = cutoff.Shift(int64(s))
	}
	return r, nil
}

func (h Horizon) ToRelative(cutoff tsindex.Point) (Horizon, error) {
	s, err := h.Steps(cutoff)
	if err != nil {
		return Horizon{}, err
	}
	return Horizon{relative: true, steps: s}, nil
}

func (h Horizon) ToAbsolute(cutoff tsindex.Point) (Horizon, error) {
	p, err := h.Points(cutoff)
	if err != nil {
		return Horizon{}, err
	}
	return Horizon{points: p}, nil
}

func (h Horizon) filter(cutoff tsindex.Point, inSample bool) (Horizon, error) {
	s, err := h.Steps(cutoff)
	if err != nil {
		return Horizon{}, err
	}
	r := Horizon{relative: true, steps: []int{}}
	for _, x := range s {
		if (x <= 0) == inSample {
			r.steps = append(r.steps, x)
		}
	}
	return r, nil
}

/*
ToInSample returns relative horizon of steps not after the cutoff
*/
func (h Horizon) ToInSample(cutoff tsindex.Point) (Horizon, error) {
	return h.filter(cutoff, true)
}

/*
ToOutOfSample returns relative horizon of steps after the cutoff
*/
func (h Horizon) ToOutOfSample(cutoff tsindex.Point) (Horizon, error) {
	return h.filter(cutoff, false)
}

func (h Horizon) IsAllInSample(cutoff tsindex.Point) (bool, error) {
	s, err := h.Steps(cutoff)
	if err != nil {
		return false, err
	}
	for _, x := range s {
		if x > 0 {
			return false, nil
		}
	}
	return true, nil
}

func (h Horizon) IsAllOutOfSample(cutoff tsindex.Point) (bool, error) {
	s, err := h.Steps(cutoff)
	if err != nil {
		return false, err
	}
	for _, x := range s {
		if x <= 0 {
			return false, nil
		}
	}
	return true, nil
}

/*
ToIndexer returns zero-based positions of steps after the cutoff, step 1 is 0
*/
func (h Horizon) ToIndexer(cutoff tsindex.Point) ([]int, error) {
	s, err := h.Steps(cutoff)
	if err != nil {
		return nil, err
	}
	for i := range s {
		s[i]--
	}
	return s, nil
}

func (h Horizon) Max(cutoff tsindex.Point) (int, error) {
	s, err := h.Steps(cutoff)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, zorros.Errorf("horizon is empty")
	}
	return s[len(s)-1], nil
}

func (h Horizon) Min(cutoff tsindex.Point) (int, error) {
	s, err := h.Steps(cutoff)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, zorros.Errorf("horizon is empty")
	}
	return s[0], nil
}

func (h Horizon) Equal(o Horizon) bool {
	if h.relative != o.relative || h.Len() != o.Len() {
		return false
	}
	if h.relative {
		for i, s := range h.steps {
			if o.steps[i] != s {
				return false
			}
		}
		return true
	}
	return h.points.Equal(o.points)
}

func (h Horizon) String() string {
	if h.relative {
		return fmt.Sprintf("relative%v", h.steps)
	}
	return fmt.Sprintf("absolute[%v]", strings.Join(h.points.Strings(), " "))
}
