// Package matrixio reads and writes affinity matrices and placements, as
// whitespace-separated text and as Excel workbooks.
//
// Affinity text format: an optional header line "<depth> <aisles>" followed by N
// rows of N numbers. Placement text format: one line per depth level, each holding
// the SKU ids of that level from aisle 0 to aisle R-1.
package matrixio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/slotsim/slotsim/slotting"
)

// ErrFormat is returned for malformed input files.
var ErrFormat = errors.New("malformed input")

// Instance is an affinity matrix with the warehouse shape it was recorded for.
type Instance struct {
	// Geometry is the zero value when the source carried no header.
	Geometry slotting.Geometry
	Affinity [][]float64
}

// HasGeometry reports whether the instance carried a shape header.
func (in *Instance) HasGeometry() bool {
	return in.Geometry != (slotting.Geometry{})
}

// Matrix validates the rows and returns them as an AffinityMatrix.
func (in *Instance) Matrix() (*slotting.AffinityMatrix, error) {
	return slotting.NewAffinityMatrix(in.Affinity)
}

// ReadAffinity parses an affinity file. The first line is taken as a header when
// it holds exactly two integers and the remaining lines form a square matrix.
func ReadAffinity(r io.Reader) (*Instance, error) {
	lines, err := readFields(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty affinity file", ErrFormat)
	}

	inst := &Instance{}
	body := lines
	if g, ok := parseHeader(lines[0]); ok && isSquare(lines[1:]) {
		inst.Geometry = g
		body = lines[1:]
	}
	if !isSquare(body) {
		return nil, fmt.Errorf("%w: affinity matrix is not square (%d rows, first has %d values)", ErrFormat, len(body), len(body[0]))
	}

	inst.Affinity = make([][]float64, len(body))
	for i, fields := range body {
		row := make([]float64, len(fields))
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %v", ErrFormat, i, j, err)
			}
			row[j] = v
		}
		inst.Affinity[i] = row
	}
	if inst.HasGeometry() && inst.Geometry.NumSlots() != len(inst.Affinity) {
		return nil, fmt.Errorf("%w: header %s has %d slots but matrix has %d SKUs",
			slotting.ErrDimensionMismatch, inst.Geometry, inst.Geometry.NumSlots(), len(inst.Affinity))
	}
	return inst, nil
}

// WriteAffinity writes inst with values rounded to three decimals. The header is
// written only when the instance has a geometry.
func WriteAffinity(w io.Writer, inst *Instance) error {
	bw := bufio.NewWriter(w)
	if inst.HasGeometry() {
		fmt.Fprintf(bw, "%d %d\n", inst.Geometry.Depth, inst.Geometry.Aisles)
	}
	for _, row := range inst.Affinity {
		for j, v := range row {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadPlacement parses a depth-by-aisle grid of SKU ids for geometry g.
func ReadPlacement(r io.Reader, g slotting.Geometry) (*slotting.Placement, error) {
	lines, err := readFields(r)
	if err != nil {
		return nil, err
	}
	grid := make([][]int, len(lines))
	for d, fields := range lines {
		grid[d] = make([]int, len(fields))
		for a, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: placement line %d: %v", ErrFormat, d, err)
			}
			grid[d][a] = v
		}
	}
	return slotting.FromGrid(g, grid)
}

// WritePlacement writes p as one line per depth level.
func WritePlacement(w io.Writer, p *slotting.Placement) error {
	bw := bufio.NewWriter(w)
	for _, row := range p.Grid() {
		for a, sku := range row {
			if a > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.Itoa(sku))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// readFields splits r into lines of whitespace-separated fields, skipping blank lines.
func readFields(r io.Reader) ([][]string, error) {
	var lines [][]string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

func parseHeader(fields []string) (slotting.Geometry, bool) {
	if len(fields) != 2 {
		return slotting.Geometry{}, false
	}
	depth, err1 := strconv.Atoi(fields[0])
	aisles, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return slotting.Geometry{}, false
	}
	return slotting.Geometry{Aisles: aisles, Depth: depth}, true
}

func isSquare(lines [][]string) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if len(l) != len(lines) {
			return false
		}
	}
	return true
}
