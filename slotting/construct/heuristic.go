// Package construct builds initial placements for the local search:
// a uniform random baseline, ABC frequency classes and Jaccard affinity clusters.
package construct

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/slotsim/slotsim/slotting"
)

// Heuristic produces a complete placement (a bijection over all slots) for an instance.
// Implementations draw all randomness from rng.
type Heuristic interface {
	Name() string
	Build(affinity *slotting.AffinityMatrix, g slotting.Geometry, rng *rand.Rand) (*slotting.Placement, error)
}

// Config carries the parameters of the heuristics that need them.
type Config struct {
	Threshold   float64                    // Jaccard correlation threshold in [0,1]
	TravelTimes *slotting.TravelTimeMatrix // optional; computed from the geometry when nil
}

// Heuristic names accepted by NewHeuristic and the --heuristic flag.
const (
	NameRandom  = "random"
	NameABC     = "abc"
	NameJaccard = "jaccard"
)

// validHeuristics maps accepted heuristic names.
var validHeuristics = map[string]bool{
	NameRandom:  true,
	NameABC:     true,
	NameJaccard: true,
}

// IsValidHeuristic returns true if name is a recognized heuristic.
func IsValidHeuristic(name string) bool {
	return validHeuristics[name]
}

// ValidHeuristicNames returns the recognized names in sorted order.
func ValidHeuristicNames() []string {
	names := make([]string, 0, len(validHeuristics))
	for name := range validHeuristics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewHeuristic creates a heuristic by name.
func NewHeuristic(name string, cfg Config) (Heuristic, error) {
	switch name {
	case NameRandom:
		return Random{}, nil
	case NameABC:
		return ABC{}, nil
	case NameJaccard:
		if cfg.Threshold < 0 || cfg.Threshold > 1 {
			return nil, fmt.Errorf("jaccard threshold must be in [0,1], got %v", cfg.Threshold)
		}
		return &Jaccard{Threshold: cfg.Threshold, TravelTimes: cfg.TravelTimes}, nil
	default:
		return nil, fmt.Errorf("unknown heuristic %q; valid: %s", name, strings.Join(ValidHeuristicNames(), ", "))
	}
}

// checkInstance rejects size mismatches before any heuristic runs.
func checkInstance(affinity *slotting.AffinityMatrix, g slotting.Geometry) error {
	if affinity == nil {
		return fmt.Errorf("%w: nil affinity matrix", slotting.ErrInvalidAffinity)
	}
	return affinity.CheckGeometry(g)
}

// Random shuffles the SKU ids uniformly and stores them in slot id order.
// It carries no quality guarantee and serves as a baseline.
type Random struct{}

// Name implements Heuristic.
func (Random) Name() string { return NameRandom }

// Build implements Heuristic.
func (Random) Build(affinity *slotting.AffinityMatrix, g slotting.Geometry, rng *rand.Rand) (*slotting.Placement, error) {
	if err := checkInstance(affinity, g); err != nil {
		return nil, err
	}
	return slotting.NewPlacement(g, rng.Perm(g.NumSlots()))
}

// rankByFrequency returns SKU ids ordered by descending frequency, ties by ascending id.
func rankByFrequency(freq []float64) []int {
	order := make([]int, len(freq))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return freq[order[a]] > freq[order[b]]
	})
	return order
}
