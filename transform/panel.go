package transform

import (
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/zorros/zorros"
	"math"
)

const (
	DefaultNumIntervals      = 8
	DefaultSubsequenceLength = 5
)

func checkPanel(X [][][]float64) error {
	if len(X) == 0 {
		return zorros.Errorf("panel must have at least one instance")
	}
	for i, inst := range X {
		if len(inst) == 0 {
			return zorros.Errorf("instance %d has no dimensions", i)
		}
		if len(inst) != len(X[0]) {
			return zorros.Errorf("instance %d has %d dimensions, expected %d", i, len(inst), len(X[0]))
		}
	}
	return nil
}

func positiveParam(name string, v, dflt int) (int, error) {
	if v == 0 {
		return dflt, nil
	}
	if v < 0 {
		return 0, zorros.Errorf("`%v` must be a positive integer, got %d", name, v)
	}
	return v, nil
}

/*
Truncation cuts every series of the panel to [Lower, Upper),
Upper 0 truncates to the first Lower points,
both zero truncate to the length of the shortest series
*/
type Truncation struct {
	Lower, Upper int
	fitted       bool
}

func (t *Truncation) Fit(X [][][]float64) error {
	if err := checkPanel(X); err != nil {
		return err
	}
	if t.Lower < 0 || (t.Upper != 0 && t.Upper <= t.Lower) {
		return zorros.Errorf("invalid truncation bounds [%d, %d)", t.Lower, t.Upper)
	}
	t.fitted = true
	return nil
}

func (t *Truncation) Transform(X [][][]float64) ([][][]float64, error) {
	if !t.fitted {
		return nil, notFitted("Truncation")
	}
	if err := checkPanel(X); err != nil {
		return nil, err
	}
	from, to := t.Lower, t.Upper
	switch {
	case t.Lower == 0 && t.Upper == 0:
		to = math.MaxInt32
		for _, inst := range X {
			for _, s := range inst {
				to = fu.Mini(to, len(s))
			}
		}
	case t.Upper == 0:
		from, to = 0, t.Lower
	}
	r := make([][][]float64, len(X))
	for i, inst := range X {
		r[i] = make([][]float64, len(inst))
		for j, s := range inst {
			if to > len(s) {
				return nil, zorros.Errorf("series %d of instance %d has length %d, can't truncate it to [%d, %d)", j, i, len(s), from, to)
			}
			r[i][j] = fu.Copy(s[from:to])
		}
	}
	return r, nil
}

/*
Resize resamples every series to Length points with linear interpolation,
both old and new points are spread evenly over [0, 1]
*/
type Resize struct {
	Length int
	fitted bool
}

func (t *Resize) Fit(X [][][]float64) error {
	if t.Length <= 0 {
		return zorros.Errorf("resizing length must be a positive integer, got %d", t.Length)
	}
	if err := checkPanel(X); err != nil {
		return err
	}
	t.fitted = true
	return nil
}

func (t *Resize) Transform(X [][][]float64) ([][][]float64, error) {
	if !t.fitted {
		return nil, notFitted("Resize")
	}
	if err := checkPanel(X); err != nil {
		return nil, err
	}
	r := make([][][]float64, len(X))
	for i, inst := range X {
		r[i] = make([][]float64, len(inst))
		for j, s := range inst {
			if len(s) == 0 {
				return nil, zorros.Errorf("series %d of instance %d is empty", j, i)
			}
			r[i][j] = Interp(s, t.Length)
		}
	}
	return r, nil
}

/*
Interp samples n evenly spaced points of the piecewise linear function going through s
*/
func Interp(s []float64, n int) []float64 {
	r := make([]float64, n)
	if len(s) == 1 {
		for i := range r {
			r[i] = s[0]
		}
		return r
	}
	for i := range r {
		x := 0.0
		if n > 1 {
			x = float64(i) * float64(len(s)-1) / float64(n-1)
		}
		k := int(math.Floor(x))
		if k >= len(s)-1 {
			r[i] = s[len(s)-1]
			continue
		}
		f := x - float64(k)
		r[i] = s[k] + f*(s[k+1]-s[k])
	}
	return r
}

/*
Slope replaces every series with total least squares gradients of NumIntervals
consecutive intervals, the first len%NumIntervals intervals are one point longer
*/
type Slope struct {
	NumIntervals int // 8 by default
	n            int
}

func (t *Slope) Fit(X [][][]float64) (err error) {
	if t.n, err = positiveParam("num_intervals", t.NumIntervals, DefaultNumIntervals); err != nil {
		return
	}
	return checkPanel(X)
}

func (t *Slope) Transform(X [][][]float64) ([][][]float64, error) {
	if t.n == 0 {
		return nil, notFitted("Slope")
	}
	if err := checkPanel(X); err != nil {
		return nil, err
	}
	r := make([][][]float64, len(X))
	for i, inst := range X {
		r[i] = make([][]float64, len(inst))
		for j, s := range inst {
			if t.n > len(s) {
				return nil, zorros.Errorf("number of intervals %d is larger than the series length %d", t.n, len(s))
			}
			r[i][j] = make([]float64, t.n)
			for k, q := range arraySplit(s, t.n) {
				r[i][j][k] = Gradient(q)
			}
		}
	}
	return r, nil
}

func arraySplit(s []float64, n int) [][]float64 {
	r := make([][]float64, n)
	size, extra := len(s)/n, len(s)%n
	from := 0
	for i := range r {
		to := from + size
		if i < extra {
			to++
		}
		r[i] = s[from:to]
		from = to
	}
	return r
}

/*
Gradient is the total least squares slope of y over x = 1..len(y)
*/
func Gradient(y []float64) float64 {
	n := float64(len(y))
	xm, ym := (n+1)/2, fu.Mean(y)
	sxx, syy, sxy := 0.0, 0.0, 0.0
	for i, v := range y {
		dx, dy := float64(i+1)-xm, v-ym
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxy == 0 {
		return 0
	}
	return (syy - sxx + math.Sqrt((syy-sxx)*(syy-sxx)+4*sxy*sxy)) / (2 * sxy)
}

/*
Subsequence replaces a univariate series with centred windows of Length points around
every time point, the series is padded with its edge values
*/
type Subsequence struct {
	Length int // 5 by default
	n      int
}

func (t *Subsequence) Fit(X [][][]float64) (err error) {
	if t.n, err = positiveParam("subsequence_length", t.Length, DefaultSubsequenceLength); err != nil {
		return
	}
	if err = checkPanel(X); err != nil {
		return
	}
	if len(X[0]) != 1 {
		return zorros.Errorf("Subsequence transforms only univariate series, got %d dimensions", len(X[0]))
	}
	return nil
}

func (t *Subsequence) Transform(X [][][]float64) ([][][]float64, error) {
	if t.n == 0 {
		return nil, notFitted("Subsequence")
	}
	if err := checkPanel(X); err != nil {
		return nil, err
	}
	if len(X[0]) != 1 {
		return nil, zorros.Errorf("Subsequence transforms only univariate series, got %d dimensions", len(X[0]))
	}
	left, right := t.n/2, t.n-t.n/2-1
	r := make([][][]float64, len(X))
	for i, inst := range X {
		s := inst[0]
		if len(s) == 0 {
			return nil, zorros.Errorf("series of instance %d is empty", i)
		}
		padded := append(append(fu.Full(left, s[0]), s...), fu.Full(right, s[len(s)-1])...)
		r[i] = make([][]float64, len(s))
		for j := range s {
			r[i][j] = fu.Copy(padded[j : j+t.n])
		}
	}
	return r, nil
}
