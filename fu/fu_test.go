package fu

import (
	"gotest.tools/v3/assert"
	"math"
	"testing"
)

func Test_Indmind(t *testing.T) {
	nan := math.NaN()
	for _, c := range []struct {
		a []float64
		i int
	}{
		{[]float64{3, 1, 2, 1}, 1},
		{[]float64{nan, 2, 1}, 2},
		{[]float64{2, nan, 1}, 2},
		{[]float64{nan, nan}, 0},
		{[]float64{5}, 0},
	} {
		assert.Equal(t, Indmind(c.a), c.i, c.a)
	}
}

func Test_Floats(t *testing.T) {
	assert.Equal(t, Mean([]float64{1, 2, 6}), 3.)
	assert.Equal(t, NanMean([]float64{math.NaN(), 1, 3}), 2.)
	assert.Assert(t, math.IsNaN(NanMean([]float64{math.NaN()})))
	assert.DeepEqual(t, Diff([]float64{1}), []float64{})
	assert.DeepEqual(t, Diff([]float64{1, 4, 9}), []float64{3, 5})
	assert.DeepEqual(t, Tile([]float64{1, 2}, 2), []float64{1, 2, 1, 2})
	assert.DeepEqual(t, Flatnr([][]float64{{1}, {}, {2, 3}}), []float64{1, 2, 3})
	assert.Assert(t, AllFinite([]float64{1, 2}))
	assert.Assert(t, !AllFinite([]float64{1, math.Inf(-1)}))
	assert.Assert(t, AllNaN([]float64{math.NaN()}))
	assert.Equal(t, Mse([]float64{1, 2}, []float64{2, 4}), 2.5)
}

func Test_Ints(t *testing.T) {
	assert.Equal(t, Fnzi(0, 0, 3, 4), 3)
	assert.Equal(t, Fnzi(0), 0)
	assert.Equal(t, Mini(3, 1, 2), 1)
	assert.Equal(t, Maxi(-1, 0), 0)
	assert.DeepEqual(t, Arange(1, 4), []int{1, 2, 3})
	assert.DeepEqual(t, Arange(3, 1), []int{})
}
