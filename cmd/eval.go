package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slotsim/slotsim/slotting"
	"github.com/slotsim/slotsim/slotting/matrixio"
)

var (
	evalAffinity  string
	evalPlacement string
	evalAisles    int
	evalDepth     int
)

// evalCmd prints the expected picking time of a stored placement
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate the expected order-picking time of a placement",
	Run: func(cmd *cobra.Command, args []string) {
		if err := evaluatePlacement(evalAffinity, evalPlacement, evalAisles, evalDepth, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func evaluatePlacement(affinityPath, placementPath string, aisles, depth int, w io.Writer) error {
	affinity, g, err := loadInstance(affinityPath, aisles, depth)
	if err != nil {
		return err
	}
	if placementPath == "" {
		return fmt.Errorf("no placement file given (--placement)")
	}
	p, err := readPlacementFile(placementPath, g)
	if err != nil {
		return fmt.Errorf("reading %s: %w", placementPath, err)
	}
	times, err := slotting.NewTravelTimeMatrix(g)
	if err != nil {
		return err
	}
	eval, err := slotting.NewEvaluator(times, affinity)
	if err != nil {
		return err
	}
	if err := eval.Check(p); err != nil {
		return err
	}
	fmt.Fprintf(w, "%.6f\n", eval.Evaluate(p))
	return nil
}

// readPlacementFile reads a text grid, or the workbook written by `run --xlsx`.
func readPlacementFile(path string, g slotting.Geometry) (*slotting.Placement, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return matrixio.ReadPlacementXLSX(path, g)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening placement file: %w", err)
	}
	defer f.Close()
	return matrixio.ReadPlacement(f, g)
}

func init() {
	evalCmd.Flags().StringVar(&evalAffinity, "affinity", "", "Affinity matrix file (text, or .xlsx)")
	evalCmd.Flags().StringVar(&evalPlacement, "placement", "", "Placement grid file (text, or .xlsx from run --xlsx)")
	evalCmd.Flags().IntVar(&evalAisles, "aisles", 0, "Number of aisles (defaults to the file header)")
	evalCmd.Flags().IntVar(&evalDepth, "depth", 0, "Slots per aisle (defaults to the file header)")
	rootCmd.AddCommand(evalCmd)
}
