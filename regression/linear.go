package regression

import (
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// the penalty used when no ridge penalty is given, relative to the mean feature variance
const autoRidge = 1e-9

/*
LinearRegression is a least squares regressor with intercept and optional ridge penalty,
it fits several targets at once
*/
type LinearRegression struct {
	Alpha float64

	coef      *mat.Dense
	intercept []float64
}

func (lr *LinearRegression) Clone() Regressor {
	return &LinearRegression{Alpha: lr.Alpha}
}

func (lr *LinearRegression) Fit(X mat.Matrix, y []float64) error {
	return lr.FitMulti(X, mat.NewDense(len(y), 1, append([]float64{}, y...)))
}

func (lr *LinearRegression) FitMulti(X, Y mat.Matrix) error {
	n, p := X.Dims()
	m, k := Y.Dims()
	if n != m {
		return zorros.Errorf("X has %d samples but y has %d", n, m)
	}
	if n == 0 {
		return zorros.Errorf("no samples to fit")
	}
	if lr.Alpha < 0 {
		return zorros.Errorf("ridge penalty must not be negative, got %v", lr.Alpha)
	}

	mx := make([]float64, p)
	xc := mat.NewDense(n, p, nil)
	for j := 0; j < p; j++ {
		c := mat.Col(nil, j, X)
		mx[j] = stat.Mean(c, nil)
		for i := range c {
			c[i] -= mx[j]
		}
		xc.SetCol(j, c)
	}
	my := make([]float64, k)
	yc := mat.NewDense(n, k, nil)
	for j := 0; j < k; j++ {
		c := mat.Col(nil, j, Y)
		my[j] = stat.Mean(c, nil)
		for i := range c {
			c[i] -= my[j]
		}
		yc.SetCol(j, c)
	}

	a := mat.NewDense(p, p, nil)
	a.Mul(xc.T(), xc)
	lambda := lr.Alpha
	if lambda == 0 {
		tr := 0.0
		if p > 0 {
			tr = mat.Trace(a) / float64(p)
		}
		if tr < 1 {
			tr = 1
		}
		lambda = autoRidge * tr
	}
	for j := 0; j < p; j++ {
		a.Set(j, j, a.At(j, j)+lambda)
	}
	b := mat.NewDense(p, k, nil)
	b.Mul(xc.T(), yc)

	coef := mat.NewDense(p, k, nil)
	if err := coef.Solve(a, b); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return zorros.Wrapf(err, "failed to solve normal equations: %v", err)
		}
	}

	icpt := make([]float64, k)
	for j := 0; j < k; j++ {
		icpt[j] = my[j]
		for i := 0; i < p; i++ {
			icpt[j] -= mx[i] * coef.At(i, j)
		}
	}
	lr.coef, lr.intercept = coef, icpt
	return nil
}

func (lr *LinearRegression) PredictMulti(X mat.Matrix) (*mat.Dense, error) {
	if lr.coef == nil {
		return nil, zorros.Errorf("linear regression is not fitted")
	}
	n, p := X.Dims()
	q, k := lr.coef.Dims()
	if p != q {
		return nil, zorros.Errorf("X has %d features but regression was fitted with %d", p, q)
	}
	r := mat.NewDense(n, k, nil)
	r.Mul(X, lr.coef)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			r.Set(i, j, r.At(i, j)+lr.intercept[j])
		}
	}
	return r, nil
}

func (lr *LinearRegression) Predict(X mat.Matrix) ([]float64, error) {
	r, err := lr.PredictMulti(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, r), nil
}

// Coef returns fitted coefficients of the j-th target
func (lr *LinearRegression) Coef(j int) []float64 {
	if lr.coef == nil {
		return nil
	}
	return mat.Col(nil, j, lr.coef)
}

func (lr *LinearRegression) Intercept(j int) float64 {
	return lr.intercept[j]
}
