package search

import (
	"fmt"
	"time"
)

// StrategyStrict accepts a candidate only when it strictly lowers the best cost,
// with uniform selection among the applicable move families.
const StrategyStrict = "strict"

// validStrategies maps accepted acceptance-policy names. Alternative policies
// (annealing-style acceptance, adaptive family weights) would be registered here.
var validStrategies = map[string]bool{
	StrategyStrict: true,
	"":             true, // empty defaults to strict
}

// IsValidStrategy returns true if name is a recognized acceptance policy.
func IsValidStrategy(name string) bool {
	return validStrategies[name]
}

// DefaultMaxRounds is the practical bound on descend/certify cycles of one run.
// Reaching it ends the run with ErrCertificationDiverged.
const DefaultMaxRounds = 10000

// Config controls one local-search run. The zero value reproduces the reference
// behaviour: stall limit 2·N², no iteration or time budget, full re-evaluation.
type Config struct {
	MaxStall      int           // consecutive non-improving trials before certification (0 = 2·N²)
	MaxIterations int           // total trial budget across rounds (0 = unlimited)
	TimeBudget    time.Duration // wall-clock budget (0 = unlimited)
	MaxRounds     int           // descend/certify cycles before ErrCertificationDiverged (0 = DefaultMaxRounds)
	Strategy      string        // acceptance policy; only "strict"
	Incremental   bool          // screen certification swaps with O(N) delta evaluation
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxStall < 0 {
		return fmt.Errorf("max stall must be non-negative, got %d", c.MaxStall)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations must be non-negative, got %d", c.MaxIterations)
	}
	if c.TimeBudget < 0 {
		return fmt.Errorf("time budget must be non-negative, got %v", c.TimeBudget)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("max rounds must be non-negative, got %d", c.MaxRounds)
	}
	if !IsValidStrategy(c.Strategy) {
		return fmt.Errorf("unknown strategy %q; valid: %s", c.Strategy, StrategyStrict)
	}
	return nil
}

func (c Config) stallLimit(n int) int {
	if c.MaxStall > 0 {
		return c.MaxStall
	}
	return 2 * n * n
}

func (c Config) maxRounds() int {
	if c.MaxRounds > 0 {
		return c.MaxRounds
	}
	return DefaultMaxRounds
}
