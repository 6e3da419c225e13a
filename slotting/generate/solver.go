package generate

import (
	"errors"
	"fmt"
	"math"
)

// ErrContract is returned when a matrix breaks the probability-matrix contract.
var ErrContract = errors.New("probability matrix contract violated")

// Solver recovers a probability matrix whose Jaccard indices match target, typically
// by linear programming. No solver ships with this module; callers plug one in.
type Solver interface {
	Solve(target [][]float64) ([][]float64, error)
}

// SolveAndCheck runs s and verifies its output with CheckContract.
func SolveAndCheck(s Solver, target [][]float64, tol float64) ([][]float64, error) {
	out, err := s.Solve(target)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	if len(out) != len(target) {
		return nil, fmt.Errorf("%w: solver returned %d rows for %d SKUs", ErrContract, len(out), len(target))
	}
	if err := CheckContract(out, tol); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckContract verifies that m is square and symmetric with a zero diagonal,
// non-negative entries and total mass 1, all within tol.
func CheckContract(m [][]float64, tol float64) error {
	n := len(m)
	var total float64
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrContract, i, len(row), n)
		}
		if math.Abs(row[i]) > tol {
			return fmt.Errorf("%w: diagonal entry %d is %g", ErrContract, i, row[i])
		}
		for j, v := range row {
			if v < -tol {
				return fmt.Errorf("%w: entry (%d,%d) is negative (%g)", ErrContract, i, j, v)
			}
			if math.Abs(v-m[j][i]) > tol {
				return fmt.Errorf("%w: entries (%d,%d) and (%d,%d) differ", ErrContract, i, j, j, i)
			}
			total += v
		}
	}
	if n > 0 && math.Abs(total-1) > tol {
		return fmt.Errorf("%w: total mass is %g", ErrContract, total)
	}
	return nil
}

// Normalize scales m in place to unit total mass. A zero matrix is left unchanged.
func Normalize(m [][]float64) {
	var total float64
	for _, row := range m {
		for _, v := range row {
			total += math.Abs(v)
		}
	}
	if total == 0 {
		return
	}
	for _, row := range m {
		for j := range row {
			row[j] /= total
		}
	}
}
