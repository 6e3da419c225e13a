package matrixio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/slotsim/slotsim/slotting"
)

// ReadAffinityXLSX reads the first sheet of an Excel workbook as an affinity
// matrix. The same header rule as ReadAffinity applies; empty cells read as 0.
func ReadAffinityXLSX(path string) (*Instance, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrFormat, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// GetRows trims trailing empty cells; pad to the widest row.
	var b strings.Builder
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		if i == 0 && len(r) == 2 && strings.TrimSpace(r[0]) != "" && strings.TrimSpace(r[1]) != "" {
			fmt.Fprintf(&b, "%s %s\n", strings.TrimSpace(r[0]), strings.TrimSpace(r[1]))
			continue
		}
		for j := 0; j < width; j++ {
			cell := "0"
			if j < len(r) && strings.TrimSpace(r[j]) != "" {
				cell = strings.TrimSpace(r[j])
			}
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	return ReadAffinity(strings.NewReader(b.String()))
}

// WriteAffinityXLSX writes inst to a single-sheet workbook in the text layout.
func WriteAffinityXLSX(path string, inst *Instance) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	row := 1
	if inst.HasGeometry() {
		if err := setRow(f, sheet, row, []any{inst.Geometry.Depth, inst.Geometry.Aisles}); err != nil {
			return err
		}
		row++
	}
	for _, r := range inst.Affinity {
		vals := make([]any, len(r))
		for j, v := range r {
			vals[j] = v
		}
		if err := setRow(f, sheet, row, vals); err != nil {
			return err
		}
		row++
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// PlacementSheet is the sheet name used for placement grids.
const PlacementSheet = "Placement"

// WritePlacementXLSX writes p as a labelled depth-by-aisle grid: row 1 holds aisle
// labels, column A holds depth labels. Extra, if non-nil, is called with the open
// workbook before it is saved so callers can add sheets.
func WritePlacementXLSX(path string, p *slotting.Placement, extra func(*excelize.File) error) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), PlacementSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := fillPlacementSheet(f, PlacementSheet, p); err != nil {
		return err
	}
	if extra != nil {
		if err := extra(f); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// ReadPlacementXLSX reads a grid written by WritePlacementXLSX.
func ReadPlacementXLSX(path string, g slotting.Geometry) (*slotting.Placement, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(PlacementSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: %s has an empty placement sheet", ErrFormat, path)
	}
	grid := make([][]int, 0, len(rows)-1)
	for i, r := range rows[1:] {
		if len(r) < 2 {
			return nil, fmt.Errorf("%w: placement row %d is empty", ErrFormat, i)
		}
		line := make([]int, len(r)-1)
		for j, cell := range r[1:] {
			v, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("%w: placement row %d: %v", ErrFormat, i, err)
			}
			line[j] = v
		}
		grid = append(grid, line)
	}
	return slotting.FromGrid(g, grid)
}

func fillPlacementSheet(f *excelize.File, sheet string, p *slotting.Placement) error {
	g := p.Geometry()
	header := make([]any, g.Aisles+1)
	header[0] = "depth/aisle"
	for a := 0; a < g.Aisles; a++ {
		header[a+1] = a
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for d, line := range p.Grid() {
		vals := make([]any, len(line)+1)
		vals[0] = d
		for a, sku := range line {
			vals[a+1] = sku
		}
		if err := setRow(f, sheet, d+2, vals); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	for j, v := range vals {
		cell, err := excelize.CoordinatesToCellName(j+1, row)
		if err != nil {
			return fmt.Errorf("cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("setting %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
