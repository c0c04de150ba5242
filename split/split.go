package split

import (
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/forecast/validate"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"math"
)

const DefaultWindowLength = 10
const DefaultStepLength = 1
const DefaultTestSize = 0.25

// ErrOutOfBounds is returned when splitter cutoffs or horizon run past the data
var ErrOutOfBounds = xerrors.New("split is out of data bounds")

/*
Window is a pair of positional train and test windows
*/
type Window struct {
	Train []int
	Test  []int
}

/*
Splitter generates temporal train/test windows over a series of length n
*/
type Splitter interface {
	FH() horizon.Horizon
	WindowLength() int
	Split(n int) ([]Window, error)
}

func steps(h horizon.Horizon) ([]int, error) {
	if h.IsZero() {
		return []int{1}, nil
	}
	if !h.IsRelative() {
		return nil, zorros.Errorf("splitter requires relative horizon, got %v", h)
	}
	return h.Steps(tsindex.Point{})
}

func fhOrDefault(h horizon.Horizon) horizon.Horizon {
	if h.IsZero() {
		return horizon.LuckyRange(1)
	}
	return h
}

func train(from, to int) []int {
	return fu.Arange(fu.Maxi(from, 0), to)
}

func test(p int, fh []int, shift int) []int {
	r := make([]int, len(fh))
	for i, s := range fh {
		r[i] = p + s + shift
	}
	return r
}

/*
SlidingWindow moves a fixed length training window along the series
*/
type SlidingWindow struct {
	Horizon         horizon.Horizon
	Length          int
	Step            int
	StartWithWindow bool
}

func (sw SlidingWindow) FH() horizon.Horizon {
	return fhOrDefault(sw.Horizon)
}

func (sw SlidingWindow) WindowLength() int {
	return fu.Fnzi(sw.Length, DefaultWindowLength)
}

func (sw SlidingWindow) Split(n int) ([]Window, error) {
	fh, err := steps(sw.Horizon)
	if err != nil {
		return nil, err
	}
	wl, err := validate.WindowLength(sw.WindowLength())
	if err != nil {
		return nil, err
	}
	sl, err := validate.StepLength(fu.Fnzi(sw.Step, DefaultStepLength))
	if err != nil {
		return nil, err
	}
	start := 0
	if sw.StartWithWindow {
		start = wl
	}
	end := n + 1
	if fh[len(fh)-1] > 0 {
		end = n - fh[len(fh)-1] + 1
	}
	r := []Window{}
	for p := start; p < end; p += sl {
		r = append(r, Window{train(p-wl, p), test(p, fh, -1)})
	}
	return r, nil
}

/*
ExpandingWindow grows the training window from the series start
*/
type ExpandingWindow struct {
	Horizon horizon.Horizon
	Initial int
	Step    int
}

func (ew ExpandingWindow) FH() horizon.Horizon {
	return fhOrDefault(ew.Horizon)
}

func (ew ExpandingWindow) WindowLength() int {
	return fu.Fnzi(ew.Initial, DefaultWindowLength)
}

func (ew ExpandingWindow) Split(n int) ([]Window, error) {
	fh, err := steps(ew.Horizon)
	if err != nil {
		return nil, err
	}
	start, err := validate.WindowLength(ew.WindowLength())
	if err != nil {
		return nil, err
	}
	sl, err := validate.StepLength(fu.Fnzi(ew.Step, DefaultStepLength))
	if err != nil {
		return nil, err
	}
	end := n + 1
	if fh[len(fh)-1] > 0 {
		end = n - fh[len(fh)-1] + 1
	}
	r := []Window{}
	for p := start; p < end; p += sl {
		r = append(r, Window{train(0, p), test(p, fh, -1)})
	}
	return r, nil
}

/*
Cutoff splits the series at given positional cutoffs,
the training window ends at the cutoff including it
*/
type Cutoff struct {
	Cutoffs []int
	Horizon horizon.Horizon
	Length  int
}

func (cs Cutoff) FH() horizon.Horizon {
	return fhOrDefault(cs.Horizon)
}

func (cs Cutoff) WindowLength() int {
	return fu.Fnzi(cs.Length, DefaultWindowLength)
}

func (cs Cutoff) Split(n int) ([]Window, error) {
	fh, err := steps(cs.Horizon)
	if err != nil {
		return nil, err
	}
	cutoffs, err := validate.Cutoffs(cs.Cutoffs)
	if err != nil {
		return nil, err
	}
	wl, err := validate.WindowLength(cs.WindowLength())
	if err != nil {
		return nil, err
	}
	if last := cutoffs[len(cutoffs)-1] + fh[len(fh)-1]; last >= n {
		return nil, xerrors.Errorf("cutoff %d with step %d needs position %d of %d: %w",
			cutoffs[len(cutoffs)-1], fh[len(fh)-1], last, n, ErrOutOfBounds)
	}
	if first := cutoffs[0] + fh[0]; first < 0 {
		return nil, xerrors.Errorf("cutoff %d with step %d needs position %d: %w",
			cutoffs[0], fh[0], first, ErrOutOfBounds)
	}
	r := make([]Window, len(cutoffs))
	for i, c := range cutoffs {
		r[i] = Window{train(c-wl+1, c+1), test(c, fh, 0)}
	}
	return r, nil
}

/*
TemporalTrainTestSplit splits series into ordered train and test parts,
testSize is either a number of points (>= 1) or a fraction of the series (< 1)
*/
func TemporalTrainTestSplit(y series.Series, testSize float64) (series.Series, series.Series, error) {
	n := y.Len()
	if testSize == 0 {
		testSize = DefaultTestSize
	}
	var nTest int
	switch {
	case testSize < 0:
		return series.Series{}, series.Series{}, zorros.Errorf("test size must be positive, got %v", testSize)
	case testSize >= 1:
		if testSize != math.Trunc(testSize) {
			return series.Series{}, series.Series{}, zorros.Errorf("test size count must be integer, got %v", testSize)
		}
		nTest = int(testSize)
	default:
		nTest = int(math.Ceil(testSize * float64(n)))
	}
	if nTest >= n || nTest < 1 {
		return series.Series{}, series.Series{}, zorros.Errorf("test size %v leaves no training data in series of length %d", testSize, n)
	}
	return y.Slice(0, n-nTest), y.Slice(n-nTest, n), nil
}
