// Package testutil provides shared test infrastructure for the slotting packages:
// the literal travel-time and evaluation fixtures in testdata/fixtures.json and
// small assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Fixtures represents the structure of testdata/fixtures.json.
type Fixtures struct {
	TravelTimes []TravelTimeCase `json:"travel_times"`
	Evaluations []EvaluationCase `json:"evaluations"`
}

// TravelTimeCase is a documented travel-time matrix for one geometry.
type TravelTimeCase struct {
	Name   string      `json:"name"`
	Aisles int         `json:"aisles"`
	Depth  int         `json:"depth"`
	Matrix [][]float64 `json:"matrix"`
}

// EvaluationCase is a documented expected cost of a placement grid (grid[depth][aisle] = SKU).
type EvaluationCase struct {
	Name     string      `json:"name"`
	Aisles   int         `json:"aisles"`
	Depth    int         `json:"depth"`
	Grid     [][]int     `json:"grid"`
	Affinity [][]float64 `json:"affinity"`
	Cost     float64     `json:"cost"`
}

// LoadFixtures loads testdata/fixtures.json at the repository root.
// The path is resolved relative to this source file: slotting/internal/testutil/ -> testdata/.
func LoadFixtures(t *testing.T) *Fixtures {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "fixtures.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixtures: %v", err)
	}

	var fx Fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		t.Fatalf("Failed to parse fixtures: %v", err)
	}
	return &fx
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// BlockAffinity returns a symmetric n x n affinity matrix where SKUs in the same
// block of size `block` co-occur with probability `in` and other pairs with `out`.
// Useful for instances where a good placement clusters blocks together.
func BlockAffinity(n, block int, in, out float64) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			switch {
			case i == j:
			case i/block == j/block:
				rows[i][j] = in
			default:
				rows[i][j] = out
			}
		}
	}
	return rows
}
