package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slotsim/slotsim/slotting"
	"github.com/slotsim/slotsim/slotting/generate"
	"github.com/slotsim/slotsim/slotting/matrixio"
)

var (
	genAisles int
	genDepth  int
	genSeed   int64
	genOut    string
)

// generateCmd writes a synthetic three-block instance
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic affinity matrix",
	Run: func(cmd *cobra.Command, args []string) {
		if err := generateInstance(genAisles, genDepth, genSeed, genOut); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Wrote %d x %d instance to %s", genAisles, genDepth, genOut)
	},
}

func generateInstance(aisles, depth int, seed int64, out string) error {
	g, err := slotting.NewGeometry(aisles, depth)
	if err != nil {
		return err
	}
	if out == "" {
		return fmt.Errorf("no output file given (--out)")
	}
	rng := slotting.NewPartitionedRNG(slotting.NewRunKey(seed)).ForSubsystem(slotting.SubsystemGenerate)
	rows, err := generate.Block(g.NumSlots(), rng)
	if err != nil {
		return err
	}
	inst := &matrixio.Instance{Geometry: g, Affinity: rows}
	if strings.EqualFold(filepath.Ext(out), ".xlsx") {
		return matrixio.WriteAffinityXLSX(out, inst)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := matrixio.WriteAffinity(f, inst); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return f.Close()
}

func init() {
	generateCmd.Flags().IntVar(&genAisles, "aisles", 4, "Number of aisles")
	generateCmd.Flags().IntVar(&genDepth, "depth", 3, "Slots per aisle")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Generator seed")
	generateCmd.Flags().StringVar(&genOut, "out", "", "Output file (text, or .xlsx)")
	rootCmd.AddCommand(generateCmd)
}
