package config

import (
	"go-ml.dev/pkg/forecast/horizon"
	"go-ml.dev/pkg/forecast/metrics"
	"go-ml.dev/pkg/forecast/model"
	"go-ml.dev/pkg/forecast/split"
	"go-ml.dev/pkg/forecast/tsindex"
	"go-ml.dev/pkg/zorros/zlog"
	"go-ml.dev/pkg/zorros/zorros"
	"gopkg.in/yaml.v3"
	"os"
)

// Config holds tsforecast configuration.
type Config struct {
	Data       DataConfig     `yaml:"data"`
	Forecaster model.Spec     `yaml:"forecaster"`
	Horizon    []int          `yaml:"horizon"`
	Evaluate   EvaluateConfig `yaml:"evaluate"`
	Tune       TuneConfig     `yaml:"tune"`
	Results    string         `yaml:"results"`    // SQLite results database
	ModelFile  string         `yaml:"model_file"` // relative names are placed into the cache
	Log        LogConfig      `yaml:"log"`
}

// DataConfig describes the CSV file with time points in the first column and values in the second.
type DataConfig struct {
	Path   string `yaml:"path"`
	Name   string `yaml:"name"`  // dataset name for results, the file name by default
	Index  string `yaml:"index"` // int, period or datetime
	Freq   string `yaml:"freq"`  // required for period and datetime indices
	Header bool   `yaml:"header"`
}

// EvaluateConfig configures the moving-cutoff backtest.
type EvaluateConfig struct {
	TestSize     float64 `yaml:"test_size"`
	WindowLength int     `yaml:"window_length"`
	StepLength   int     `yaml:"step_length"`
	Metric       string  `yaml:"metric"`
	UpdateParams bool    `yaml:"update_params"`
}

// TuneConfig configures the grid search.
type TuneConfig struct {
	Grid         map[string][]float64 `yaml:"grid"`
	CV           string               `yaml:"cv"` // expanding or sliding
	WindowLength int                  `yaml:"window_length"`
	StepLength   int                  `yaml:"step_length"`
	Metric       string               `yaml:"metric"`
	ScoreHistory int                  `yaml:"score_history"`
	NJobs        int                  `yaml:"n_jobs"`
}

// LogConfig configures zlog.
type LogConfig struct {
	Verbose   bool   `yaml:"verbose"`
	File      string `yaml:"file"`
	SentryDsn string `yaml:"sentry_dsn"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Data:       DataConfig{Index: "int", Header: true},
		Forecaster: model.Spec{Name: "NaiveForecaster"},
		Horizon:    []int{1},
		Evaluate: EvaluateConfig{
			TestSize:     split.DefaultTestSize,
			WindowLength: split.DefaultWindowLength,
			StepLength:   split.DefaultStepLength,
			Metric:       "smape",
		},
		Tune: TuneConfig{
			CV:           "expanding",
			WindowLength: split.DefaultWindowLength,
			StepLength:   split.DefaultStepLength,
			Metric:       "smape",
			NJobs:        1,
		},
		Results:   "results.db",
		ModelFile: "model.xz",
	}
}

// Load loads configuration from a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to read config: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, zorros.Wrapf(err, "failed to parse config: %v", err)
	}
	return cfg, cfg.Validate()
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return zorros.Wrapf(err, "failed to marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return zorros.Wrapf(err, "failed to write config: %v", err)
	}
	return nil
}

// Validate checks values which can't be checked later by the components.
func (c *Config) Validate() error {
	kind, err := tsindex.ParseKind(c.Data.Index)
	if err != nil {
		return err
	}
	if kind != tsindex.Int {
		if _, err = tsindex.ParseFreq(c.Data.Freq); err != nil {
			return zorros.Wrapf(err, "%v index requires frequency: %v", kind, err)
		}
	}
	if _, err = c.FH(); err != nil {
		return err
	}
	if _, err = metrics.ByName(c.Evaluate.Metric); err != nil {
		return err
	}
	if _, err = metrics.ByName(c.Tune.Metric); err != nil {
		return err
	}
	switch c.Tune.CV {
	case "", "expanding", "sliding":
	default:
		return zorros.Errorf("unknown cv `%v`, expected expanding or sliding", c.Tune.CV)
	}
	return nil
}

// FH is the configured relative horizon.
func (c *Config) FH() (horizon.Horizon, error) {
	if len(c.Horizon) == 0 {
		return horizon.LuckyRange(1), nil
	}
	return horizon.Relative(c.Horizon...)
}

// Splitter is the configured grid search cross-validation.
func (c *Config) Splitter() (split.Splitter, error) {
	fh, err := c.FH()
	if err != nil {
		return nil, err
	}
	if c.Tune.CV == "sliding" {
		return split.SlidingWindow{Horizon: fh, Length: c.Tune.WindowLength, Step: c.Tune.StepLength, StartWithWindow: true}, nil
	}
	return split.ExpandingWindow{Horizon: fh, Initial: c.Tune.WindowLength, Step: c.Tune.StepLength}, nil
}

// Zlog is the logger configuration.
func (c *Config) Zlog() zlog.Config {
	return zlog.Config{Name: "tsforecast", Verbose: c.Log.Verbose, LogFile: c.Log.File, SentryDsn: c.Log.SentryDsn}
}
