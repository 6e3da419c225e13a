package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slotsim/slotsim/slotting"
	"github.com/slotsim/slotsim/slotting/construct"
	"github.com/slotsim/slotsim/slotting/matrixio"
	"github.com/slotsim/slotsim/slotting/metrics"
	"github.com/slotsim/slotsim/slotting/report"
	"github.com/slotsim/slotsim/slotting/search"
)

var (
	runOpts     = defaultRunConfig()
	configPath  string // YAML run configuration
	affinityIn  string // affinity matrix file (.txt or .xlsx)
	outputPath  string // placement text output
	xlsxPath    string // workbook output
	metricsPath string // prometheus textfile output
	jsonSummary bool   // print summary as JSON
)

// runCmd builds a start placement and improves it by local search
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Optimise a placement for an affinity matrix",
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOpts
		if configPath != "" {
			fileCfg, err := loadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			opts.merge(fileCfg, cmd.Flags())
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runSlotting(ctx, &opts, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// loadInstance reads the affinity file and resolves the geometry from the file
// header and the explicit dimensions. Either may be absent, not both, and they must agree.
func loadInstance(path string, aisles, depth int) (*slotting.AffinityMatrix, slotting.Geometry, error) {
	if path == "" {
		return nil, slotting.Geometry{}, fmt.Errorf("no affinity file given (--affinity)")
	}
	var inst *matrixio.Instance
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		inst, err = matrixio.ReadAffinityXLSX(path)
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, slotting.Geometry{}, fmt.Errorf("opening affinity file: %w", err)
		}
		defer f.Close()
		inst, err = matrixio.ReadAffinity(f)
	}
	if err != nil {
		return nil, slotting.Geometry{}, fmt.Errorf("reading %s: %w", path, err)
	}

	g := inst.Geometry
	switch {
	case aisles > 0 || depth > 0:
		flagGeom := slotting.Geometry{Aisles: aisles, Depth: depth}
		if inst.HasGeometry() && inst.Geometry != flagGeom {
			return nil, g, fmt.Errorf("%w: file header says %s, flags say %s", slotting.ErrDimensionMismatch, inst.Geometry, flagGeom)
		}
		g = flagGeom
	case !inst.HasGeometry():
		return nil, g, fmt.Errorf("%s has no header; pass --aisles and --depth", path)
	}
	if err := g.Validate(); err != nil {
		return nil, g, err
	}

	affinity, err := inst.Matrix()
	if err != nil {
		return nil, g, err
	}
	if err := affinity.CheckGeometry(g); err != nil {
		return nil, g, err
	}
	return affinity, g, nil
}

// runSlotting executes one optimisation run and writes the summary to w.
func runSlotting(ctx context.Context, opts *RunConfig, w io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	affinity, g, err := loadInstance(affinityIn, opts.Aisles, opts.Depth)
	if err != nil {
		return err
	}
	times, err := slotting.NewTravelTimeMatrix(g)
	if err != nil {
		return err
	}
	eval, err := slotting.NewEvaluator(times, affinity)
	if err != nil {
		return err
	}
	h, err := construct.NewHeuristic(opts.Heuristic, construct.Config{Threshold: opts.Threshold, TravelTimes: times})
	if err != nil {
		return err
	}

	runID := report.NewRunID()
	log := logrus.WithFields(logrus.Fields{"run_id": runID, "heuristic": h.Name()})
	log.Infof("Starting run on %s with %d SKUs, seed=%d, restarts=%d", g, affinity.Size(), opts.Seed, opts.Restarts)

	rngs := slotting.NewPartitionedRNG(slotting.NewRunKey(opts.Seed))
	starts := make([]*slotting.Placement, opts.Restarts)
	for k := range starts {
		p, err := h.Build(affinity, g, rngs.ForSubsystem(slotting.SubsystemConstructWorker(k)))
		if err != nil {
			return fmt.Errorf("building start %d: %w", k, err)
		}
		starts[k] = p
		log.Debugf("start %d: cost %.6f", k, eval.Evaluate(p))
	}

	searchOpts := []search.Option{search.WithLogger(log)}
	var rec *metrics.Recorder
	if metricsPath != "" {
		rec = metrics.NewRecorder(true)
		searchOpts = append(searchOpts, search.WithObserver(rec))
	}
	_, results, err := search.MultiStart(ctx, eval, opts.searchConfig(), starts, rngs, searchOpts...)
	if err != nil {
		return err
	}

	summary := report.Summarize(runID, h.Name(), results)
	if !summary.Certified {
		log.Warnf("Search stopped before certification (%s)", summary.StopReason)
	}
	if jsonSummary {
		if err := summary.WriteJSON(w); err != nil {
			return err
		}
	} else {
		summary.Print(w)
	}

	if outputPath != "" {
		if err := writePlacementFile(outputPath, summary.Best()); err != nil {
			return err
		}
	}
	if xlsxPath != "" {
		if err := summary.WriteXLSX(xlsxPath); err != nil {
			return err
		}
	}
	if rec != nil {
		for _, r := range results {
			rec.ObserveResult(r)
		}
		if err := rec.WriteTextfile(metricsPath); err != nil {
			return err
		}
	}
	log.Info("Run complete.")
	return nil
}

func writePlacementFile(path string, p *slotting.Placement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := matrixio.WritePlacement(f, p); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	d := defaultRunConfig()
	runCmd.Flags().StringVar(&affinityIn, "affinity", "", "Affinity matrix file (text, or .xlsx)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration; explicit flags override it")
	runCmd.Flags().IntVar(&runOpts.Aisles, "aisles", 0, "Number of aisles (defaults to the file header)")
	runCmd.Flags().IntVar(&runOpts.Depth, "depth", 0, "Slots per aisle (defaults to the file header)")
	runCmd.Flags().StringVar(&runOpts.Heuristic, "heuristic", d.Heuristic, "Construction heuristic (random, abc, jaccard)")
	runCmd.Flags().Float64Var(&runOpts.Threshold, "threshold", d.Threshold, "Jaccard correlation threshold in [0,1]")
	runCmd.Flags().Int64Var(&runOpts.Seed, "seed", d.Seed, "Seed for construction shuffles and move selection")
	runCmd.Flags().IntVar(&runOpts.Restarts, "restarts", d.Restarts, "Independent starts searched in parallel")
	runCmd.Flags().IntVar(&runOpts.MaxIterations, "max-iterations", 0, "Trial budget per start (0 = unlimited)")
	runCmd.Flags().IntVar(&runOpts.MaxStall, "max-stall", 0, "Non-improving trials before certification (0 = 2*N^2)")
	runCmd.Flags().DurationVar(&runOpts.TimeBudget, "time-budget", 0, "Wall-clock budget per start (0 = unlimited)")
	runCmd.Flags().BoolVar(&runOpts.Incremental, "incremental", false, "Screen certification swaps with delta evaluation")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the best placement grid to this file")
	runCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write placement and summary to this workbook")
	runCmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Write search metrics in Prometheus textfile format")
	runCmd.Flags().BoolVar(&jsonSummary, "json", false, "Print the summary as JSON")

	rootCmd.AddCommand(runCmd)
}
