package slotting

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AffinityMatrix holds pairwise co-occurrence probabilities between SKUs.
// Entry (i,j), i != j, is the probability that SKUs i and j are ordered together.
// The matrix is expected to be symmetric; evaluation reads the upper triangle only.
type AffinityMatrix struct {
	data *mat.Dense
}

// NewAffinityMatrix validates rows and copies them into an AffinityMatrix.
// Rows must form a non-empty square matrix of finite, non-negative values.
func NewAffinityMatrix(rows [][]float64) (*AffinityMatrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidAffinity)
	}
	flat := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidAffinity, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entry (%d,%d) must be finite, got %v", ErrInvalidAffinity, i, j, v)
			}
			if v < 0 {
				return nil, fmt.Errorf("%w: entry (%d,%d) must be non-negative, got %v", ErrInvalidAffinity, i, j, v)
			}
		}
		flat = append(flat, row...)
	}
	m := &AffinityMatrix{data: mat.NewDense(n, n, flat)}
	if !m.IsSymmetric(1e-9) {
		logrus.Warnf("affinity matrix of size %d is not symmetric; only the upper triangle is used for evaluation", n)
	}
	return m, nil
}

// Size returns the number of SKUs.
func (m *AffinityMatrix) Size() int {
	n, _ := m.data.Dims()
	return n
}

// At returns entry (i,j).
func (m *AffinityMatrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// Pair returns the probability used for the unordered pair {i,j}: the upper-triangle entry.
func (m *AffinityMatrix) Pair(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return m.data.At(i, j)
}

// Rows copies the matrix into a row slice.
func (m *AffinityMatrix) Rows() [][]float64 {
	n := m.Size()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m.data)
	}
	return rows
}

// IsSymmetric reports whether |A[i][j] - A[j][i]| <= tol for every pair.
func (m *AffinityMatrix) IsSymmetric(tol float64) bool {
	n := m.Size()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(m.data.At(i, j)-m.data.At(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

// CheckGeometry returns ErrDimensionMismatch unless the matrix has exactly one row per slot of g.
func (m *AffinityMatrix) CheckGeometry(g Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if m.Size() != g.NumSlots() {
		return fmt.Errorf("%w: affinity matrix has %d SKUs but %s has %d slots",
			ErrDimensionMismatch, m.Size(), g, g.NumSlots())
	}
	return nil
}

// Frequencies returns each SKU's total affinity mass (its row sum).
func (m *AffinityMatrix) Frequencies() []float64 {
	n := m.Size()
	freq := make([]float64, n)
	for i := range freq {
		freq[i] = floats.Sum(m.data.RawRowView(i))
	}
	return freq
}

// Jaccard returns the symmetric matrix of pairwise Jaccard indices
//
//	J(i,j) = A[i][j] / (freq(i) + freq(j) - A[i][j])
//
// computed from the upper triangle. A zero denominator yields 0.
func (m *AffinityMatrix) Jaccard() [][]float64 {
	n := m.Size()
	freq := m.Frequencies()
	jac := make([][]float64, n)
	for i := range jac {
		jac[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a := m.data.At(i, j)
			den := freq[i] + freq[j] - a
			var v float64
			if den != 0 {
				v = a / den
			}
			jac[i][j] = v
			jac[j][i] = v
		}
	}
	return jac
}

// CorrelationSets returns, for every SKU i, the SKUs j != i with J(i,j) >= threshold,
// in ascending id order.
func CorrelationSets(jaccard [][]float64, threshold float64) [][]int {
	n := len(jaccard)
	sets := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j != i && jaccard[i][j] >= threshold {
				sets[i] = append(sets[i], j)
			}
		}
	}
	return sets
}

// TotalMass returns the sum of all entries.
func (m *AffinityMatrix) TotalMass() float64 {
	return mat.Sum(m.data)
}
