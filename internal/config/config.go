// Package config loads the pipeline configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"salesetl/internal/errors"
)

// Default locations used when the config file omits them.
const (
	DefaultCSVDir    = "data/input"
	DefaultOutputDir = "data/output/output_table"
)

// Config holds the pipeline's runtime settings.
type Config struct {
	// CSVDir is the directory holding the input CSV tables.
	CSVDir string `yaml:"csv_dir"`
	// OutputDir is the directory the partitioned Parquet dataset is
	// written to. Its previous contents are replaced on each run.
	OutputDir string `yaml:"output_dir"`
	// ProductList restricts the pipeline to the given product IDs. Empty
	// means every product.
	ProductList []string `yaml:"product_list"`
}

// Load reads and validates a YAML config file. A missing or malformed
// file is a configuration error; omitted directories fall back to the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError("config.load",
			fmt.Sprintf("cannot read config file %q: %v", path, err))
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigurationError("config.load",
			fmt.Sprintf("cannot parse config file %q: %v", path, err))
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CSVDir == "" {
		c.CSVDir = DefaultCSVDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
}

// Default returns a config populated entirely from defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
