package slotting

import (
	"gonum.org/v1/gonum/mat"
)

// TravelTime returns the S-shape tour cost of retrieving the items at p and q,
// starting and ending at the entry. Costs are counted in slot-traversal steps.
//
// A visited aisle is always traversed completely (D+1 steps from the front to the
// back cross-aisle), so the depth of a slot inside its aisle never changes the cost.
// When both items share an aisle (including p == q) the vehicle returns along the
// same aisle. Otherwise the cheaper of two tours is taken: the through tour, which
// crosses at the back to the second aisle and comes out at its front, and the
// backtrack tour, which leaves the first aisle at its front before visiting the second.
func TravelTime(g Geometry, p, q Slot) int {
	entry := g.Entry()
	length := g.AisleLength()
	col1 := g.AccessColumn(p.Aisle)

	// entry step + walk to the first aisle + traverse it
	toFirst := 1 + abs(col1-entry) + length

	if p.Aisle == q.Aisle {
		return 2 * toFirst
	}

	col2 := g.AccessColumn(q.Aisle)
	back := abs(col2-entry) + 1 // walk back to the entry + exit step

	through := toFirst + abs(col2-col1) + length + back
	backtrack := toFirst + length + abs(col2-col1) + 2*length + back
	return min(through, backtrack)
}

// SingleItemTime is the round-trip cost of retrieving one item at s.
func SingleItemTime(g Geometry, s Slot) int {
	return TravelTime(g, s, s)
}

// TravelTimeMatrix holds TravelTime for every pair of slots, indexed by linear slot id.
// It is immutable after construction and safe to share read-only across goroutines.
type TravelTimeMatrix struct {
	geometry Geometry
	data     *mat.SymDense
}

// NewTravelTimeMatrix computes the upper triangle of the pairwise cost matrix once;
// the symmetric storage mirrors it. Construction is O(N²).
func NewTravelTimeMatrix(g Geometry) (*TravelTimeMatrix, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	n := g.NumSlots()
	data := mat.NewSymDense(n, nil)
	for p := 0; p < n; p++ {
		sp := g.SlotAt(p)
		for q := p; q < n; q++ {
			data.SetSym(p, q, float64(TravelTime(g, sp, g.SlotAt(q))))
		}
	}
	return &TravelTimeMatrix{geometry: g, data: data}, nil
}

// Geometry returns the layout the matrix was built for.
func (m *TravelTimeMatrix) Geometry() Geometry {
	return m.geometry
}

// Size returns N.
func (m *TravelTimeMatrix) Size() int {
	return m.geometry.NumSlots()
}

// At returns the tour cost for slots p and q.
func (m *TravelTimeMatrix) At(p, q int) float64 {
	return m.data.At(p, q)
}

// Self returns the single-item round trip cost of slot p.
func (m *TravelTimeMatrix) Self(p int) float64 {
	return m.data.At(p, p)
}

// Rows copies the matrix into a row slice, for printing and export.
func (m *TravelTimeMatrix) Rows() [][]float64 {
	n := m.Size()
	rows := make([][]float64, n)
	for p := range rows {
		rows[p] = make([]float64, n)
		for q := range rows[p] {
			rows[p][q] = m.data.At(p, q)
		}
	}
	return rows
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
