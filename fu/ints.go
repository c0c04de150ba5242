package fu

import "math"

/*
Fnzi returns the first non-zero value
*/
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

func Mini(a int, b ...int) int {
	r := a
	for _, x := range b {
		if x < r {
			r = x
		}
	}
	return r
}

func Maxi(a int, b ...int) int {
	r := a
	for _, x := range b {
		if x > r {
			r = x
		}
	}
	return r
}

/*
Indmind returns the index of the first minimal value, NaN values are never minimal
*/
func Indmind(a []float64) int {
	j := 0
	for i, x := range a {
		if x < a[j] || (math.IsNaN(a[j]) && !math.IsNaN(x)) {
			j = i
		}
	}
	return j
}

func Arange(start, end int) []int {
	if end <= start {
		return []int{}
	}
	r := make([]int, end-start)
	for i := range r {
		r[i] = start + i
	}
	return r
}
