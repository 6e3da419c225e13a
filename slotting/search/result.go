package search

import (
	"time"

	"github.com/slotsim/slotsim/slotting"
)

// StopReason records why a run ended.
type StopReason string

const (
	StopCertified       StopReason = "certified"
	StopIterationBudget StopReason = "iteration-budget"
	StopTimeBudget      StopReason = "time-budget"
	StopCancelled       StopReason = "cancelled"
	StopDiverged        StopReason = "diverged"
)

// Stats counts search activity. Tried and Accepted are indexed by MoveKind.
type Stats struct {
	Iterations   int // random trials in the stall-based descent
	Improvements int // accepted trials
	Rounds       int // certification passes
	Checks       int // neighbours examined during certification
	Tried        [numMoveKinds]int
	Accepted     [numMoveKinds]int
}

// add merges o into s.
func (s *Stats) add(o Stats) {
	s.Iterations += o.Iterations
	s.Improvements += o.Improvements
	s.Rounds += o.Rounds
	s.Checks += o.Checks
	for k := range s.Tried {
		s.Tried[k] += o.Tried[k]
		s.Accepted[k] += o.Accepted[k]
	}
}

// Result is the outcome of a run. Cost never exceeds InitialCost.
type Result struct {
	Placement   *slotting.Placement
	Cost        float64
	InitialCost float64
	Certified   bool // true when no aisle swap or slot swap strictly lowers Cost
	StopReason  StopReason
	Stats       Stats
	Elapsed     time.Duration
}

// Gain returns the relative cost reduction (InitialCost-Cost)/InitialCost, or 0.
func (r *Result) Gain() float64 {
	if r.InitialCost == 0 {
		return 0
	}
	return (r.InitialCost - r.Cost) / r.InitialCost
}
