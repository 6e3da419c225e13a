package slotting

import "fmt"

// Evaluator computes the expected pick cost of placements for one instance.
// Orders are modelled as two-item baskets: SKUs i and j are picked together with
// probability A[i][j] (upper triangle), and the pick costs T[slot(i), slot(j)].
type Evaluator struct {
	times    *TravelTimeMatrix
	affinity *AffinityMatrix
}

// NewEvaluator binds a travel-time matrix and an affinity matrix of matching size.
func NewEvaluator(times *TravelTimeMatrix, affinity *AffinityMatrix) (*Evaluator, error) {
	if err := affinity.CheckGeometry(times.Geometry()); err != nil {
		return nil, err
	}
	return &Evaluator{times: times, affinity: affinity}, nil
}

// TravelTimes returns the travel-time matrix.
func (e *Evaluator) TravelTimes() *TravelTimeMatrix {
	return e.times
}

// Affinity returns the affinity matrix.
func (e *Evaluator) Affinity() *AffinityMatrix {
	return e.affinity
}

// Geometry returns the warehouse layout being evaluated.
func (e *Evaluator) Geometry() Geometry {
	return e.times.Geometry()
}

// Evaluate returns the expected pick cost of p: the sum over unordered SKU pairs
// i < j of T[slot(i), slot(j)] * A[i][j]. O(N²).
func (e *Evaluator) Evaluate(p *Placement) float64 {
	n := p.Size()
	var cost float64
	for i := 0; i < n; i++ {
		si := p.SlotOf(i)
		for j := i + 1; j < n; j++ {
			a := e.affinity.At(i, j)
			if a == 0 {
				continue
			}
			cost += e.times.At(si, p.SlotOf(j)) * a
		}
	}
	return cost
}

// Check verifies that p belongs to this evaluator's geometry and is a valid bijection.
func (e *Evaluator) Check(p *Placement) error {
	if p.Geometry() != e.Geometry() {
		return fmt.Errorf("%w: placement is %s, evaluator is %s", ErrDimensionMismatch, p.Geometry(), e.Geometry())
	}
	return p.Validate()
}

// SwapDelta returns the change in expected cost if the contents of slots a and b
// were exchanged. Only pairs involving the two moved SKUs change, so this is O(N).
func (e *Evaluator) SwapDelta(p *Placement, a, b int) float64 {
	if a == b {
		return 0
	}
	x, y := p.SKUAt(a), p.SKUAt(b)
	n := p.Size()
	var delta float64
	for k := 0; k < n; k++ {
		if k == x || k == y {
			continue
		}
		sk := p.SlotOf(k)
		if ax := e.affinity.Pair(x, k); ax != 0 {
			delta += ax * (e.times.At(b, sk) - e.times.At(a, sk))
		}
		if ay := e.affinity.Pair(y, k); ay != 0 {
			delta += ay * (e.times.At(a, sk) - e.times.At(b, sk))
		}
	}
	// The pair {x,y} keeps the same two slots, and T is symmetric, so it contributes nothing.
	return delta
}
