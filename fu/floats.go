package fu

import (
	"gonum.org/v1/gonum/floats"
	"math"
)

func Mean(a []float64) float64 {
	return floats.Sum(a) / float64(len(a))
}

/*
NanMean is the mean of not-NaN values, NaN if there are no such values
*/
func NanMean(a []float64) float64 {
	var c float64
	n := 0
	for _, x := range a {
		if !math.IsNaN(x) {
			c += x
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return c / float64(n)
}

func Mse(a, b []float64) float64 {
	var c float64
	for i, x := range a {
		q := x - b[i]
		c += q * q
	}
	return c / float64(len(a))
}

func Diff(a []float64) []float64 {
	if len(a) < 2 {
		return []float64{}
	}
	r := make([]float64, len(a)-1)
	for i := 1; i < len(a); i++ {
		r[i-1] = a[i] - a[i-1]
	}
	return r
}

/*
Tile repeats a reps times
*/
func Tile(a []float64, reps int) []float64 {
	r := make([]float64, 0, len(a)*reps)
	for i := 0; i < reps; i++ {
		r = append(r, a...)
	}
	return r
}

/*
AllFinite reports whether a has neither NaN nor Inf values
*/
func AllFinite(a []float64) bool {
	for _, x := range a {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func AllNaN(a []float64) bool {
	for _, x := range a {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}

func Full(n int, v float64) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = v
	}
	return r
}

func Flatnr(a [][]float64) []float64 {
	n := 0
	for _, x := range a {
		n += len(x)
	}
	r := make([]float64, n)
	i := 0
	for _, x := range a {
		copy(r[i:i+len(x)], x)
		i += len(x)
	}
	return r
}

func Copy(a []float64) []float64 {
	r := make([]float64, len(a))
	copy(r, a)
	return r
}
