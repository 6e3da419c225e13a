// Package report summarises search runs for the command line and for export.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/slotsim/slotsim/slotting"
	"github.com/slotsim/slotsim/slotting/matrixio"
	"github.com/slotsim/slotsim/slotting/search"
)

// NewRunID returns a fresh identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// Summary aggregates the results of one or more starts on the same instance.
type Summary struct {
	RunID        string         `json:"run_id"`
	Heuristic    string         `json:"heuristic"`
	Geometry     string         `json:"geometry"`
	Starts       int            `json:"starts"`
	InitialCost  float64        `json:"initial_cost"` // of the best start
	FinalCost    float64        `json:"final_cost"`
	Gain         float64        `json:"gain"`
	Certified    bool           `json:"certified"`
	StopReason   string         `json:"stop_reason"`
	MeanCost     float64        `json:"mean_cost"`
	StdDevCost   float64        `json:"stddev_cost"`
	Iterations   int            `json:"iterations"`
	Improvements int            `json:"improvements"`
	Rounds       int            `json:"rounds"`
	Checks       int            `json:"certification_checks"`
	Accepted     map[string]int `json:"accepted_by_family"`
	Elapsed      time.Duration  `json:"elapsed_ns"`

	best *slotting.Placement
}

// Summarize builds a Summary from the per-start results. Safe for an empty slice.
func Summarize(runID, heuristic string, results []*search.Result) *Summary {
	s := &Summary{RunID: runID, Heuristic: heuristic, Accepted: make(map[string]int)}
	var costs []float64
	var best *search.Result
	for _, r := range results {
		if r == nil {
			continue
		}
		costs = append(costs, r.Cost)
		if best == nil || r.Cost < best.Cost {
			best = r
		}
		if r.Elapsed > s.Elapsed {
			s.Elapsed = r.Elapsed
		}
	}
	if best == nil {
		return s
	}
	s.Starts = len(costs)
	s.InitialCost = best.InitialCost
	s.FinalCost = best.Cost
	s.Gain = best.Gain()
	s.Certified = best.Certified
	s.StopReason = string(best.StopReason)
	s.Geometry = best.Placement.Geometry().String()
	s.best = best.Placement
	s.MeanCost, s.StdDevCost = stat.MeanStdDev(costs, nil)
	if len(costs) == 1 {
		s.StdDevCost = 0
	}

	agg := search.Aggregate(results)
	s.Iterations = agg.Iterations
	s.Improvements = agg.Improvements
	s.Rounds = agg.Rounds
	s.Checks = agg.Checks
	for _, k := range search.AllMoveKinds() {
		if agg.Tried[k] > 0 {
			s.Accepted[k.String()] = agg.Accepted[k]
		}
	}
	return s
}

// Best returns the best placement summarised, or nil.
func (s *Summary) Best() *slotting.Placement {
	return s.best
}

// Print writes a human-readable summary.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Slotting Summary ===")
	fmt.Fprintf(w, "Run ID               : %s\n", s.RunID)
	fmt.Fprintf(w, "Heuristic            : %s\n", s.Heuristic)
	fmt.Fprintf(w, "Warehouse            : %s\n", s.Geometry)
	fmt.Fprintf(w, "Starts               : %d\n", s.Starts)
	fmt.Fprintf(w, "Initial cost         : %.6f\n", s.InitialCost)
	fmt.Fprintf(w, "Final cost           : %.6f\n", s.FinalCost)
	fmt.Fprintf(w, "Gain                 : %.2f%%\n", 100*s.Gain)
	if s.Starts > 1 {
		fmt.Fprintf(w, "Mean final cost      : %.6f (stddev %.6f)\n", s.MeanCost, s.StdDevCost)
	}
	fmt.Fprintf(w, "Certified            : %t (%s)\n", s.Certified, s.StopReason)
	fmt.Fprintf(w, "Iterations           : %d\n", s.Iterations)
	fmt.Fprintf(w, "Improvements         : %d\n", s.Improvements)
	fmt.Fprintf(w, "Certification rounds : %d\n", s.Rounds)
	fmt.Fprintf(w, "Elapsed              : %v\n", s.Elapsed.Round(time.Millisecond))
}

// WriteJSON writes the summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummarySheet is the workbook sheet holding the summary fields.
const SummarySheet = "Summary"

// WriteXLSX writes the best placement and the summary to a workbook.
func (s *Summary) WriteXLSX(path string) error {
	if s.best == nil {
		return fmt.Errorf("report: no placement to export")
	}
	return matrixio.WritePlacementXLSX(path, s.best, func(f *excelize.File) error {
		if _, err := f.NewSheet(SummarySheet); err != nil {
			return fmt.Errorf("adding summary sheet: %w", err)
		}
		rows := [][2]any{
			{"run_id", s.RunID},
			{"heuristic", s.Heuristic},
			{"geometry", s.Geometry},
			{"starts", s.Starts},
			{"initial_cost", s.InitialCost},
			{"final_cost", s.FinalCost},
			{"gain", s.Gain},
			{"certified", s.Certified},
			{"stop_reason", s.StopReason},
			{"iterations", s.Iterations},
			{"rounds", s.Rounds},
		}
		for i, r := range rows {
			if err := f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", i+1), r[0]); err != nil {
				return err
			}
			if err := f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", i+1), r[1]); err != nil {
				return err
			}
		}
		return nil
	})
}
