package validate

import (
	"go-ml.dev/pkg/zorros/zorros"
	"sort"
)

func positive(name string, v int) (int, error) {
	if v < 1 {
		return 0, zorros.Errorf("`%v` must be a positive integer, got %d", name, v)
	}
	return v, nil
}

func WindowLength(v int) (int, error) {
	return positive("window_length", v)
}

func StepLength(v int) (int, error) {
	return positive("step_length", v)
}

func SP(v int) (int, error) {
	return positive("sp", v)
}

/*
Alpha checks significance levels, each must be in the open interval (0,1)
*/
func Alpha(alphas ...float64) ([]float64, error) {
	if len(alphas) == 0 {
		return nil, zorros.Errorf("at least one `alpha` is required")
	}
	for _, a := range alphas {
		if !(a > 0 && a < 1) {
			return nil, zorros.Errorf("`alpha` must be in the open interval (0, 1), got %v", a)
		}
	}
	return append([]float64{}, alphas...), nil
}

/*
Cutoffs checks cutoff positions, they are sorted and must not be less than -1
*/
func Cutoffs(cutoffs []int) ([]int, error) {
	if len(cutoffs) == 0 {
		return nil, zorros.Errorf("`cutoffs` must not be empty")
	}
	c := append([]int{}, cutoffs...)
	sort.Ints(c)
	if c[0] < -1 {
		return nil, zorros.Errorf("`cutoffs` must not be less than -1, got %d", c[0])
	}
	return c, nil
}
