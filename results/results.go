/*
Package results keeps evaluation predictions of forecasting strategies in a SQLite database
*/
package results

import (
	"database/sql"
	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/forecast/metrics"
	"go-ml.dev/pkg/forecast/series"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"math"
	"sync"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	dataset  TEXT NOT NULL,
	strategy TEXT NOT NULL,
	fold     INTEGER NOT NULL,
	pos      INTEGER NOT NULL,
	point    TEXT NOT NULL,
	y_true   REAL NOT NULL,
	y_pred   REAL,
	cutoff   TEXT NOT NULL,
	PRIMARY KEY (dataset, strategy, fold, pos)
);
CREATE INDEX IF NOT EXISTS idx_predictions_strategy ON predictions(dataset, strategy);
`

/*
Record is a single prediction of a strategy
*/
type Record struct {
	Dataset  string
	Strategy string
	Fold     int
	Point    string
	YTrue    float64
	YPred    float64 // NaN when the strategy could not predict
	Cutoff   string
}

/*
Result are the true and predicted values of a strategy on a dataset in fold order
*/
type Result struct {
	Dataset  string
	Strategy string
	YTrue    []float64
	YPred    []float64
}

/*
Store is a SQLite results database
*/
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

/*
Open opens or creates the results database, ":memory:" keeps it in memory
*/
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open results database: %v", err)
	}
	// in-memory database lives in a single connection
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, zorros.Wrapf(err, "failed to create results schema: %v", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

/*
Save replaces predictions of the strategy on the dataset fold,
true values are taken at the predicted time points
*/
func (s *Store) Save(dataset, strategy string, fold int, yTrue, yPred series.Series, cutoff tsindex.Point) (err error) {
	a, b, err := metrics.Align(yTrue, yPred)
	if err != nil {
		return zorros.Trace(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return zorros.Trace(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.Exec(`DELETE FROM predictions WHERE dataset = ? AND strategy = ? AND fold = ?`, dataset, strategy, fold); err != nil {
		return zorros.Wrapf(err, "failed to clear fold %d: %v", fold, err)
	}
	st, err := tx.Prepare(`INSERT INTO predictions (dataset, strategy, fold, pos, point, y_true, y_pred, cutoff) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return zorros.Trace(err)
	}
	defer st.Close()
	for i, p := range yPred.Index() {
		var pred sql.NullFloat64
		if !math.IsNaN(b[i]) {
			pred = sql.NullFloat64{Float64: b[i], Valid: true}
		}
		if _, err = st.Exec(dataset, strategy, fold, i, p.String(), a[i], pred, cutoff.String()); err != nil {
			return zorros.Wrapf(err, "failed to save prediction at %v: %v", p, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return zorros.Trace(err)
	}
	zlog.Infof("saved %d predictions of %v on %v fold %d", len(b), strategy, dataset, fold)
	return nil
}

/*
Clear removes all predictions of the strategy on the dataset
*/
func (s *Store) Clear(dataset, strategy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM predictions WHERE dataset = ? AND strategy = ?`, dataset, strategy); err != nil {
		return zorros.Wrapf(err, "failed to clear %v on %v: %v", strategy, dataset, err)
	}
	return nil
}

/*
Load returns predictions of the strategy on the dataset ordered by fold and time
*/
func (s *Store) Load(dataset, strategy string) ([]Record, error) {
	rows, err := s.db.Query(`SELECT fold, point, y_true, y_pred, cutoff FROM predictions
		WHERE dataset = ? AND strategy = ? ORDER BY fold, pos`, dataset, strategy)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer rows.Close()
	r := []Record{}
	for rows.Next() {
		q := Record{Dataset: dataset, Strategy: strategy}
		var pred sql.NullFloat64
		if err = rows.Scan(&q.Fold, &q.Point, &q.YTrue, &pred, &q.Cutoff); err != nil {
			return nil, zorros.Trace(err)
		}
		q.YPred = math.NaN()
		if pred.Valid {
			q.YPred = pred.Float64
		}
		r = append(r, q)
	}
	if err = rows.Err(); err != nil {
		return nil, zorros.Trace(err)
	}
	return r, nil
}

func (s *Store) strings(query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer rows.Close()
	r := []string{}
	for rows.Next() {
		var v string
		if err = rows.Scan(&v); err != nil {
			return nil, zorros.Trace(err)
		}
		r = append(r, v)
	}
	if err = rows.Err(); err != nil {
		return nil, zorros.Trace(err)
	}
	return r, nil
}

// Datasets returns sorted names of datasets having results
func (s *Store) Datasets() ([]string, error) {
	return s.strings(`SELECT DISTINCT dataset FROM predictions ORDER BY dataset`)
}

// Strategies returns sorted names of strategies evaluated on the dataset
func (s *Store) Strategies(dataset string) ([]string, error) {
	return s.strings(`SELECT DISTINCT strategy FROM predictions WHERE dataset = ? ORDER BY strategy`, dataset)
}

/*
Results loads results of every strategy on every dataset
*/
func (s *Store) Results() ([]Result, error) {
	datasets, err := s.Datasets()
	if err != nil {
		return nil, err
	}
	r := []Result{}
	for _, d := range datasets {
		strategies, err := s.Strategies(d)
		if err != nil {
			return nil, err
		}
		for _, st := range strategies {
			recs, err := s.Load(d, st)
			if err != nil {
				return nil, err
			}
			q := Result{Dataset: d, Strategy: st, YTrue: make([]float64, len(recs)), YPred: make([]float64, len(recs))}
			for i, x := range recs {
				q.YTrue[i], q.YPred[i] = x.YTrue, x.YPred
			}
			r = append(r, q)
		}
	}
	return r, nil
}

/*
Score evaluates the metric over all predictions of the result
*/
func (r Result) Score(metric metrics.Metric) (float64, error) {
	return metric(series.FromValues(r.YTrue...), series.FromValues(r.YPred...))
}
