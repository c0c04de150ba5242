package regression

import (
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
	"sort"
)

const DefaultNeighbors = 5

const (
	Uniform  = "uniform"
	Distance = "distance"
)

type neighbor struct {
	d float64
	v float64
}

/*
vote averages the k nearest neighbours, with distance weights exact matches take all the weight
*/
func vote(nbrs []neighbor, k int, weights string) (float64, error) {
	sort.SliceStable(nbrs, func(i, j int) bool { return nbrs[i].d < nbrs[j].d })
	nbrs = nbrs[:fu.Mini(k, len(nbrs))]
	switch weights {
	case "", Uniform:
		s := 0.0
		for _, x := range nbrs {
			s += x.v
		}
		return s / float64(len(nbrs)), nil
	case Distance:
		if nbrs[0].d == 0 {
			s, n := 0.0, 0
			for _, x := range nbrs {
				if x.d == 0 {
					s += x.v
					n++
				}
			}
			return s / float64(n), nil
		}
		s, w := 0.0, 0.0
		for _, x := range nbrs {
			s += x.v / x.d
			w += 1 / x.d
		}
		return s / w, nil
	}
	return 0, zorros.Errorf("unknown weights `%v`", weights)
}

/*
KNeighborsRegressor predicts the mean target of the nearest samples by Euclidean distance
*/
type KNeighborsRegressor struct {
	K       int
	Weights string

	x [][]float64
	y []float64
}

func (kr *KNeighborsRegressor) Clone() Regressor {
	return &KNeighborsRegressor{K: kr.K, Weights: kr.Weights}
}

func (kr *KNeighborsRegressor) Fit(X mat.Matrix, y []float64) error {
	n, _ := X.Dims()
	if n != len(y) {
		return zorros.Errorf("X has %d samples but y has %d", n, len(y))
	}
	if n == 0 {
		return zorros.Errorf("no samples to fit")
	}
	kr.x, kr.y = rows(X), append([]float64{}, y...)
	return nil
}

func (kr *KNeighborsRegressor) Predict(X mat.Matrix) ([]float64, error) {
	if kr.x == nil {
		return nil, zorros.Errorf("neighbors regressor is not fitted")
	}
	xs := rows(X)
	r := make([]float64, len(xs))
	for i, a := range xs {
		if len(a) != len(kr.x[0]) {
			return nil, zorros.Errorf("X has %d features but regressor was fitted with %d", len(a), len(kr.x[0]))
		}
		nbrs := make([]neighbor, len(kr.x))
		for j, b := range kr.x {
			nbrs[j] = neighbor{floats.Distance(a, b, 2), kr.y[j]}
		}
		var err error
		if r[i], err = vote(nbrs, fu.Fnzi(kr.K, DefaultNeighbors), kr.Weights); err != nil {
			return nil, err
		}
	}
	return r, nil
}

const (
	Euclidean = "euclidean"
	DTW       = "dtw"
)

/*
KNeighborsTimeSeriesRegressor is a neighbours regressor over whole series
using Euclidean or dynamic time warping distance
*/
type KNeighborsTimeSeriesRegressor struct {
	K       int
	Weights string
	Metric  string
	// Sakoe-Chiba band as a fraction of the series length, 0 means no band
	Window float64

	x [][]float64
	y []float64
}

func (kr *KNeighborsTimeSeriesRegressor) Clone() TimeSeriesRegressor {
	return &KNeighborsTimeSeriesRegressor{K: kr.K, Weights: kr.Weights, Metric: kr.Metric, Window: kr.Window}
}

func (kr *KNeighborsTimeSeriesRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return zorros.Errorf("X has %d samples but y has %d", len(X), len(y))
	}
	if len(X) == 0 {
		return zorros.Errorf("no samples to fit")
	}
	if _, err := kr.distance(); err != nil {
		return err
	}
	kr.x = make([][]float64, len(X))
	for i, a := range X {
		kr.x[i] = append([]float64{}, a...)
	}
	kr.y = append([]float64{}, y...)
	return nil
}

func (kr *KNeighborsTimeSeriesRegressor) distance() (func(a, b []float64) float64, error) {
	switch kr.Metric {
	case "", Euclidean:
		return func(a, b []float64) float64 {
			if len(a) != len(b) {
				return math.Inf(1)
			}
			return floats.Distance(a, b, 2)
		}, nil
	case DTW:
		if kr.Window < 0 || kr.Window > 1 {
			return nil, zorros.Errorf("dtw window must be in [0, 1], got %v", kr.Window)
		}
		return func(a, b []float64) float64 { return Dtw(a, b, kr.Window) }, nil
	}
	return nil, zorros.Errorf("unknown metric `%v`", kr.Metric)
}

func (kr *KNeighborsTimeSeriesRegressor) Predict(X [][]float64) ([]float64, error) {
	if kr.x == nil {
		return nil, zorros.Errorf("neighbors regressor is not fitted")
	}
	dist, err := kr.distance()
	if err != nil {
		return nil, err
	}
	r := make([]float64, len(X))
	for i, a := range X {
		nbrs := make([]neighbor, len(kr.x))
		for j, b := range kr.x {
			nbrs[j] = neighbor{dist(a, b), kr.y[j]}
		}
		if r[i], err = vote(nbrs, fu.Fnzi(kr.K, DefaultNeighbors), kr.Weights); err != nil {
			return nil, err
		}
	}
	return r, nil
}

/*
Dtw is the dynamic time warping distance, the cumulative squared difference
along the cheapest warping path, window limits the path to a Sakoe-Chiba band
*/
func Dtw(a, b []float64, window float64) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}
	w := fu.Maxi(n, m)
	if window > 0 {
		w = fu.Maxi(int(math.Ceil(window*float64(fu.Maxi(n, m)))), fu.Maxi(n, m)-fu.Mini(n, m))
	}
	inf := math.Inf(1)
	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := range prev {
		prev[j] = inf
	}
	prev[0] = 0
	for i := 1; i <= n; i++ {
		for j := range cur {
			cur[j] = inf
		}
		lo, hi := fu.Maxi(1, i-w), fu.Mini(m, i+w)
		for j := lo; j <= hi; j++ {
			d := a[i-1] - b[j-1]
			cur[j] = d*d + math.Min(prev[j-1], math.Min(prev[j], cur[j-1]))
		}
		prev, cur = cur, prev
	}
	return prev[m]
}
