// Package salesetl provides the public API for the per-product weekly
// sales aggregation pipeline: load the four input tables, compute the
// summary, rating and top-cities views, assemble them into the output
// table and write it as a Parquet dataset partitioned by product.
package salesetl

import (
	"salesetl/internal/config"
	"salesetl/internal/dataframe"
	"salesetl/internal/etl"
)

// Config holds the pipeline's runtime settings.
type Config = config.Config

// DataFrame is the tabular result type returned by the pipeline.
type DataFrame = dataframe.DataFrame

// Calculator runs the pipeline over one snapshot of the input tables.
type Calculator = etl.Calculator

// LoadConfig reads a YAML configuration file, applying defaults for
// omitted directories.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a configuration populated entirely from defaults.
func DefaultConfig() *Config {
	return config.Default()
}

// NewCalculator loads and validates the input tables named by cfg.
func NewCalculator(cfg *Config) (*Calculator, error) {
	return etl.NewCalculator(cfg)
}

// Run executes the whole pipeline: load, aggregate, assemble and write
// the partitioned output dataset.
func Run(cfg *Config) error {
	calc, err := etl.NewCalculator(cfg)
	if err != nil {
		return err
	}
	defer calc.Release()

	if err := calc.CalculateIndex(); err != nil {
		return err
	}
	return calc.SaveOutput()
}
