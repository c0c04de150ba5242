/*
Command tsforecast fits, evaluates and tunes forecasters on CSV series
*/
package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"go-ml.dev/pkg/forecast/internal/config"
	"go-ml.dev/pkg/zorros/zlog"
	"os"
)

var (
	// Global flags
	configFile string
	dataPath   string
	modelFile  string
	verbose    bool

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tsforecast",
		Short: "Univariate time series forecasting",
		Long: `tsforecast fits forecasters on a series read from CSV with time points in the first column
and values in the second one, evaluates them with moving cutoffs and tunes their parameters by grid search.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if cfg, err = loadConfig(); err != nil {
				return
			}
			cfg.Zlog().Init()
			return
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			zlog.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "CSV data file or URL, overrides config")
	rootCmd.PersistentFlags().StringVar(&modelFile, "model", "", "model file, overrides config")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(tuneCmd())
	rootCmd.AddCommand(resultsCmd())
	rootCmd.AddCommand(listCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	c, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		c.Data.Path = dataPath
	}
	if modelFile != "" {
		c.ModelFile = modelFile
	}
	if verbose {
		c.Log.Verbose = true
	}
	return c, nil
}
