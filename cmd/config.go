package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/slotsim/slotsim/slotting/construct"
	"github.com/slotsim/slotsim/slotting/search"
)

// RunConfig is the YAML form of the `run` options. Every field mirrors a flag of
// the same name; flags given explicitly on the command line win over the file.
type RunConfig struct {
	Aisles        int           `yaml:"aisles"`
	Depth         int           `yaml:"depth"`
	Heuristic     string        `yaml:"heuristic"`
	Threshold     float64       `yaml:"threshold"`
	Seed          int64         `yaml:"seed"`
	Restarts      int           `yaml:"restarts"`
	MaxIterations int           `yaml:"max-iterations"`
	MaxStall      int           `yaml:"max-stall"`
	TimeBudget    time.Duration `yaml:"time-budget"`
	Incremental   bool          `yaml:"incremental"`
}

// defaultRunConfig holds the flag defaults.
func defaultRunConfig() RunConfig {
	return RunConfig{
		Heuristic: construct.NameJaccard,
		Threshold: 0.2,
		Seed:      42,
		Restarts:  1,
	}
}

// loadRunConfig parses a run configuration file.
// Uses strict field checking so typos in keys are reported.
func loadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	cfg := defaultRunConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	return &cfg, nil
}

// merge overlays file values onto c for every field whose flag was not set.
func (c *RunConfig) merge(file *RunConfig, flags *pflag.FlagSet) {
	if file == nil {
		return
	}
	keep := func(name string) bool { return flags != nil && flags.Changed(name) }
	if !keep("aisles") {
		c.Aisles = file.Aisles
	}
	if !keep("depth") {
		c.Depth = file.Depth
	}
	if !keep("heuristic") {
		c.Heuristic = file.Heuristic
	}
	if !keep("threshold") {
		c.Threshold = file.Threshold
	}
	if !keep("seed") {
		c.Seed = file.Seed
	}
	if !keep("restarts") {
		c.Restarts = file.Restarts
	}
	if !keep("max-iterations") {
		c.MaxIterations = file.MaxIterations
	}
	if !keep("max-stall") {
		c.MaxStall = file.MaxStall
	}
	if !keep("time-budget") {
		c.TimeBudget = file.TimeBudget
	}
	if !keep("incremental") {
		c.Incremental = file.Incremental
	}
}

// Validate checks the options before any heuristic runs.
func (c *RunConfig) Validate() error {
	if c.Aisles < 0 || c.Depth < 0 {
		return fmt.Errorf("aisles and depth must be non-negative, got %d and %d", c.Aisles, c.Depth)
	}
	if !construct.IsValidHeuristic(c.Heuristic) {
		return fmt.Errorf("unknown heuristic %q; valid: %v", c.Heuristic, construct.ValidHeuristicNames())
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %v", c.Threshold)
	}
	if c.Restarts < 1 {
		return fmt.Errorf("restarts must be at least 1, got %d", c.Restarts)
	}
	return c.searchConfig().Validate()
}

func (c *RunConfig) searchConfig() search.Config {
	return search.Config{
		MaxStall:      c.MaxStall,
		MaxIterations: c.MaxIterations,
		TimeBudget:    c.TimeBudget,
		Strategy:      search.StrategyStrict,
		Incremental:   c.Incremental,
	}
}
