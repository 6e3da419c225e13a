package slotting

import "fmt"

// Geometry describes a rectangular warehouse of Aisles storage rows, each holding
// Depth slots. A single entry/exit point sits at the centre of the front cross-aisle
// and every aisle is reached from the column on its right.
//
// Cross-aisle columns are numbered 0..2R: aisle a occupies column 2a+1 and is
// entered from column 2a+2; the entry is column R.
type Geometry struct {
	Aisles int // number of storage rows (R)
	Depth  int // slots per aisle (D)
}

// Slot addresses one storage location.
type Slot struct {
	Aisle int
	Depth int
}

// NewGeometry returns a validated Geometry.
func NewGeometry(aisles, depth int) (Geometry, error) {
	g := Geometry{Aisles: aisles, Depth: depth}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Validate reports whether both dimensions are positive.
func (g Geometry) Validate() error {
	if g.Aisles <= 0 || g.Depth <= 0 {
		return fmt.Errorf("%w: aisles=%d depth=%d, both must be positive", ErrInvalidGeometry, g.Aisles, g.Depth)
	}
	return nil
}

// NumSlots returns N = Aisles*Depth.
func (g Geometry) NumSlots() int {
	return g.Aisles * g.Depth
}

// Width returns the number of discrete positions along the front cross-aisle.
func (g Geometry) Width() int {
	return 2*g.Aisles + 1
}

// Entry returns the cross-aisle column of the entry/exit point.
func (g Geometry) Entry() int {
	return g.Width() / 2
}

// AccessColumn returns the cross-aisle column from which aisle a is entered.
func (g Geometry) AccessColumn(aisle int) int {
	return 2*aisle + 2
}

// AisleLength is the number of steps needed to traverse an aisle from the front
// cross-aisle to the back cross-aisle.
func (g Geometry) AisleLength() int {
	return g.Depth + 1
}

// SlotID is the canonical Slot -> linear id conversion: aisle + depth*Aisles.
// Every matrix and placement in the module is indexed by this id.
func (g Geometry) SlotID(s Slot) int {
	return s.Aisle + s.Depth*g.Aisles
}

// SlotAt is the inverse of SlotID.
func (g Geometry) SlotAt(id int) Slot {
	return Slot{Aisle: id % g.Aisles, Depth: id / g.Aisles}
}

// Contains reports whether s lies inside the warehouse.
func (g Geometry) Contains(s Slot) bool {
	return s.Aisle >= 0 && s.Aisle < g.Aisles && s.Depth >= 0 && s.Depth < g.Depth
}

// Slots enumerates every slot in row-major scan order (aisle outer, depth inner).
// Construction heuristics break ties by first occurrence in this order.
func (g Geometry) Slots() []Slot {
	out := make([]Slot, 0, g.NumSlots())
	for a := 0; a < g.Aisles; a++ {
		for d := 0; d < g.Depth; d++ {
			out = append(out, Slot{Aisle: a, Depth: d})
		}
	}
	return out
}

// AisleSlots returns the linear ids of every slot of one aisle, front to back.
func (g Geometry) AisleSlots(aisle int) []int {
	ids := make([]int, g.Depth)
	for d := range ids {
		ids[d] = g.SlotID(Slot{Aisle: aisle, Depth: d})
	}
	return ids
}

func (g Geometry) String() string {
	return fmt.Sprintf("%d aisles x %d deep", g.Aisles, g.Depth)
}
