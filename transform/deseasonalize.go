package transform

import (
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/forecast/validate"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
)

const (
	Additive       = "additive"
	Multiplicative = "multiplicative"
)

/*
Deseasonalizer removes the seasonal component of the classical decomposition,
the component is estimated on the training series and aligned to its start
*/
type Deseasonalizer struct {
	SP    int
	Model string // additive by default

	seasonal []float64
	start    tsindex.Point
}

func NewDeseasonalizer(sp int, model string) *Deseasonalizer {
	return &Deseasonalizer{SP: sp, Model: model}
}

func (d *Deseasonalizer) multiplicative() bool {
	return d.Model == Multiplicative
}

func (d *Deseasonalizer) check(y series.Series) (int, error) {
	switch d.Model {
	case "", Additive, Multiplicative:
	default:
		return 0, zorros.Errorf("unknown seasonal model `%v`, expected additive or multiplicative", d.Model)
	}
	sp, err := validate.SP(d.SP)
	if err != nil {
		return 0, err
	}
	if y.Empty() {
		return 0, zorros.Errorf("series `y` must not be empty")
	}
	return sp, nil
}

// neutral returns the seasonal component which does not change anything
func (d *Deseasonalizer) neutral(sp int) []float64 {
	if d.multiplicative() {
		return fu.Full(sp, 1)
	}
	return fu.Full(sp, 0)
}

func (d *Deseasonalizer) Fit(y series.Series) error {
	sp, err := d.check(y)
	if err != nil {
		return err
	}
	d.seasonal = nil
	if sp == 1 {
		d.seasonal = d.neutral(sp)
	} else if d.seasonal, err = Decompose(y.Values(), sp, d.multiplicative()); err != nil {
		return err
	}
	d.start = y.First()
	return nil
}

// Seasonal returns the fitted seasonal component starting at the training start
func (d *Deseasonalizer) Seasonal() []float64 {
	return d.seasonal
}

/*
align returns the seasonal component for every point of y
*/
func (d *Deseasonalizer) align(y series.Series) ([]float64, error) {
	if d.seasonal == nil {
		return nil, notFitted("Deseasonalizer")
	}
	sp := len(d.seasonal)
	r := make([]float64, y.Len())
	for i, p := range y.Index() {
		k, err := p.Sub(d.start)
		if err != nil {
			return nil, zorros.Trace(err)
		}
		r[i] = d.seasonal[((k%int64(sp))+int64(sp))%int64(sp)]
	}
	return r, nil
}

func (d *Deseasonalizer) apply(y series.Series, inverse bool) (series.Series, error) {
	s, err := d.align(y)
	if err != nil {
		return series.Series{}, err
	}
	v := y.Values()
	for i := range v {
		switch {
		case d.multiplicative() && inverse:
			v[i] *= s[i]
		case d.multiplicative():
			v[i] /= s[i]
		case inverse:
			v[i] += s[i]
		default:
			v[i] -= s[i]
		}
	}
	return y.WithValues(v)
}

func (d *Deseasonalizer) Transform(y series.Series) (series.Series, error) {
	return d.apply(y, false)
}

func (d *Deseasonalizer) InverseTransform(y series.Series) (series.Series, error) {
	return d.apply(y, true)
}

/*
Decompose estimates the seasonal component of the classical decomposition,
the trend is a centred moving average (2xSP for even SP), seasonal indices
are averages of the detrended series at the same season position normalised to
mean 1 for multiplicative and to mean 0 for additive model
*/
func Decompose(y []float64, sp int, multiplicative bool) ([]float64, error) {
	if len(y) < 2*sp {
		return nil, zorros.Errorf("classical decomposition needs at least two complete seasons of %d observations, got %d", sp, len(y))
	}
	if !fu.AllFinite(y) {
		return nil, zorros.Errorf("classical decomposition does not support missing values")
	}
	if multiplicative {
		for _, v := range y {
			if v <= 0 {
				return nil, zorros.Errorf("multiplicative seasonality is not appropriate for zero and negative values")
			}
		}
	}
	trend := centredMovingAverage(y, sp)
	detrended := make([]float64, len(y))
	for i, v := range y {
		if multiplicative {
			detrended[i] = v / trend[i]
		} else {
			detrended[i] = v - trend[i]
		}
	}
	r := make([]float64, sp)
	for p := range r {
		q := []float64{}
		for i := p; i < len(y); i += sp {
			q = append(q, detrended[i])
		}
		r[p] = fu.NanMean(q)
	}
	m := fu.Mean(r)
	for i := range r {
		if multiplicative {
			r[i] /= m
		} else {
			r[i] -= m
		}
	}
	return r, nil
}

func centredMovingAverage(y []float64, sp int) []float64 {
	h := sp / 2
	w := fu.Full(sp, 1/float64(sp))
	if sp%2 == 0 {
		w = fu.Full(sp+1, 1/float64(sp))
		w[0], w[sp] = w[0]/2, w[sp]/2
	}
	r := fu.Full(len(y), math.NaN())
	for t := h; t+h < len(y); t++ {
		s := 0.0
		for j, c := range w {
			s += c * y[t-h+j]
		}
		r[t] = s
	}
	return r
}

/*
ConditionalDeseasonalizer deseasonalizes only series passing the seasonality test:
the autocorrelation at lag SP exceeds the 90% limit, at least 3 seasons are required
*/
type ConditionalDeseasonalizer struct {
	Deseasonalizer
	isSeasonal bool
}

func NewConditionalDeseasonalizer(sp int, model string) *ConditionalDeseasonalizer {
	return &ConditionalDeseasonalizer{Deseasonalizer: Deseasonalizer{SP: sp, Model: model}}
}

// IsSeasonal reports the result of the seasonality test on the training series
func (d *ConditionalDeseasonalizer) IsSeasonal() bool {
	return d.isSeasonal
}

func (d *ConditionalDeseasonalizer) Fit(y series.Series) error {
	sp, err := d.check(y)
	if err != nil {
		return err
	}
	if d.isSeasonal = sp > 1 && SeasonalityTest(y.Values(), sp); d.isSeasonal {
		return d.Deseasonalizer.Fit(y)
	}
	d.seasonal, d.start = d.neutral(sp), y.First()
	return nil
}

/*
SeasonalityTest compares autocorrelation at lag sp with the one-sided 90% limit
*/
func SeasonalityTest(y []float64, sp int) bool {
	n := len(y)
	if n < 3*sp {
		zlog.Warningf("seasonality test needs at least 3 seasons of %d observations, got %d, the series is assumed not seasonal", sp, n)
		return false
	}
	coefs := Acf(y, sp)
	s := 0.0
	for _, c := range coefs[1:sp] {
		s += c * c
	}
	limit := distuv.UnitNormal.Quantile(0.95) * math.Sqrt((1+2*s)/float64(n))
	return math.Abs(coefs[sp]) > limit
}

/*
Acf is the sample autocorrelation of lags 0..nlags, missing values are ignored
*/
func Acf(y []float64, nlags int) []float64 {
	m := fu.NanMean(y)
	cov := func(k int) float64 {
		c := 0.0
		for t := 0; t+k < len(y); t++ {
			if !math.IsNaN(y[t]) && !math.IsNaN(y[t+k]) {
				c += (y[t] - m) * (y[t+k] - m)
			}
		}
		return c / float64(len(y))
	}
	r := make([]float64, nlags+1)
	c0 := cov(0)
	for k := range r {
		r[k] = cov(k) / c0
	}
	return r
}
