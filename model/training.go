package model

import (
	"fmt"
	"go-ml.dev/pkg/forecast/fu"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"io"
)

/*
Record is a single training iteration result
*/
type Record struct {
	Iteration int
	Params    Params
	Score     float64
}

/*
Report is a training report, lower score is better
*/
type Report struct {
	History []Record // all iterations history
	TheBest int      // the best iteration
	Params  Params   // the best iteration parameters
	Score   float64  // the best score
}

/*
Workout is a training iteration abstraction
*/
type Workout interface {
	Iteration() int
	// Complete registers iteration score and the snapshot of the iteration model,
	// returns the report when training is done
	Complete(snap *Snapshot, params Params, score float64) (*Report, bool, error)
	Next() Workout
	Verbose(string)
}

/*
UnifiedTraining is an interface allowing to write any logging/staging backend for training
*/
type UnifiedTraining interface {
	// Workout returns the first iteration workout
	Workout() Workout
}

/*
FatModel is a training function bounded to a data
*/
type FatModel func(workout Workout) (*Report, error)

/*
Train a fattened (Fat) model
*/
func (f FatModel) Train(training UnifiedTraining) (*Report, error) {
	w := training.Workout()
	if c, ok := w.(io.Closer); ok {
		defer c.Close()
	}
	return f(w)
}

/*
LuckyTrain trains fattened (Fat) model and trows any occurred errors as a panic
*/
func (f FatModel) LuckyTrain(training UnifiedTraining) *Report {
	m, err := f.Train(training)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return m
}

/*
Training is the default implementation of unified training interface
*/
type Training struct {
	Iterations   int          // maximum iterations
	ScoreHistory int          // iterations without improvement to stop training, 0 means never stop early
	ModelFile    iokit.Output // file to store the best model snapshot
	Verbose      func(string) // print function
}

type training struct {
	Training
	stash map[int]*Snapshot
	done  bool
}

type workout struct {
	iteration int
	training  *training
	history   []Record
	scorlog   []float64
}

func (t Training) Workout() Workout {
	x := &training{Training: t, stash: map[int]*Snapshot{}}
	return &workout{iteration: 0, training: x}
}

func (w *workout) Close() error {
	w.training.stash = nil
	return nil
}

func (w *workout) Iteration() int {
	return w.iteration
}

func (w *workout) report() (report *Report, err error) {
	report = &Report{History: w.history}
	if len(w.history) == 0 {
		return report, zorros.Errorf("training has no iterations")
	}
	j := fu.Indmind(w.scorlog)
	report.TheBest = j
	report.Params = w.history[j].Params
	report.Score = w.scorlog[j]
	if w.training.ModelFile != nil {
		snap, ok := w.training.stash[j]
		if !ok {
			return report, zorros.Errorf("iteration %d has no model snapshot", j)
		}
		if err = Memorize(w.training.ModelFile, *snap); err != nil {
			return
		}
	}
	return
}

func (w *workout) Complete(snap *Snapshot, params Params, score float64) (report *Report, done bool, err error) {
	if w.training.done {
		return nil, true, zorros.Errorf("training is already done")
	}
	histlen := w.training.ScoreHistory
	maxiter := fu.Maxi(w.training.Iterations, 1)
	w.scorlog = append(w.scorlog, score)
	w.history = append(w.history, Record{w.iteration, params, score})
	if w.training.ModelFile != nil && snap != nil {
		w.training.stash[w.iteration] = snap
	}
	if w.training.Verbose != nil {
		w.Verbose(fmt.Sprintf("[%3d] %v score: %.5f", w.iteration, formatParams(params), score))
	}
	if w.iteration >= maxiter-1 || (histlen > 0 && len(w.scorlog) > histlen && fu.Indmind(w.scorlog[len(w.scorlog)-histlen-1:]) == 0) {
		w.training.done = true
		done = true
		report, err = w.report()
	}
	return
}

func formatParams(p Params) string {
	s := "{"
	for i, k := range p.Keys() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%v: %v", k, p[k])
	}
	return s + "}"
}

func (w *workout) Verbose(s string) {
	if w.training.Verbose != nil {
		w.training.Verbose(s)
	}
}

func (w *workout) Next() Workout {
	if w.training.done {
		zlog.Warning("training is already done")
		return nil
	}
	return &workout{
		iteration: w.iteration + 1,
		training:  w.training,
		history:   w.history,
		scorlog:   w.scorlog,
	}
}
