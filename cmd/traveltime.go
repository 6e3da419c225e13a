package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slotsim/slotsim/slotting"
)

var (
	ttAisles int
	ttDepth  int
)

// traveltimeCmd prints the travel-time matrix of a layout
var traveltimeCmd = &cobra.Command{
	Use:   "traveltime",
	Short: "Print the S-shape travel-time matrix for a layout",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printTravelTimes(ttAisles, ttDepth, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func printTravelTimes(aisles, depth int, w io.Writer) error {
	g, err := slotting.NewGeometry(aisles, depth)
	if err != nil {
		return err
	}
	m, err := slotting.NewTravelTimeMatrix(g)
	if err != nil {
		return err
	}
	for _, row := range m.Rows() {
		fields := make([]string, len(row))
		for j, v := range row {
			fields[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		fmt.Fprintln(w, strings.Join(fields, " "))
	}
	return nil
}

func init() {
	traveltimeCmd.Flags().IntVar(&ttAisles, "aisles", 4, "Number of aisles")
	traveltimeCmd.Flags().IntVar(&ttDepth, "depth", 1, "Slots per aisle")
	rootCmd.AddCommand(traveltimeCmd)
}
