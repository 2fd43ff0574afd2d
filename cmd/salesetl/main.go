package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"salesetl/internal/config"
	"salesetl/internal/etl"
)

func customUsage() {
	fmt.Fprintf(os.Stderr, "salesetl - per-product weekly sales aggregation pipeline\n\n")
	fmt.Fprintf(os.Stderr, "Usage: salesetl [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  -c, --config PATH\n\t\tPath to the YAML configuration file (default: config.yml)\n")
	fmt.Fprintf(os.Stderr, "  -h, --help\n\t\tShow this help message and exit\n")
}

func main() {
	configPath := flag.String("config", "config.yml", "Path to the YAML configuration file")
	flag.StringVar(configPath, "c", "config.yml", "Path to the YAML configuration file") // alias

	//nolint:reassign // Standard Go pattern for customizing flag usage message
	flag.Usage = customUsage

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	start := time.Now()
	log.Printf("reading input tables from %s", cfg.CSVDir)

	calc, err := etl.NewCalculator(cfg)
	if err != nil {
		log.Fatalf("loading input tables: %v", err)
	}
	defer calc.Release()

	if err := calc.CalculateIndex(); err != nil {
		log.Fatalf("calculating sales index: %v", err)
	}
	log.Printf("aggregated %d output rows", calc.Output().Len())

	if err := calc.SaveOutput(); err != nil {
		log.Fatalf("writing output dataset: %v", err)
	}
	log.Printf("wrote partitioned dataset to %s in %s", cfg.OutputDir, time.Since(start))
}
