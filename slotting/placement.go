package slotting

import (
	"fmt"
	"slices"
)

// Placement is a bijection between the N SKUs and the N slots of a Geometry.
// skuOf and slotOf are kept mutually consistent by every mutating method.
type Placement struct {
	geometry Geometry
	skuOf    []int // slot id -> SKU
	slotOf   []int // SKU -> slot id
}

// NewPlacement builds a Placement from skuOf, indexed by linear slot id.
// Returns ErrInvalidPlacement unless skuOf is a permutation of 0..N-1.
func NewPlacement(g Geometry, skuOf []int) (*Placement, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	n := g.NumSlots()
	if len(skuOf) != n {
		return nil, fmt.Errorf("%w: %d SKUs for %d slots", ErrDimensionMismatch, len(skuOf), n)
	}
	slotOf := make([]int, n)
	for i := range slotOf {
		slotOf[i] = -1
	}
	for slot, sku := range skuOf {
		if sku < 0 || sku >= n {
			return nil, fmt.Errorf("%w: slot %d holds SKU %d outside [0,%d)", ErrInvalidPlacement, slot, sku, n)
		}
		if slotOf[sku] >= 0 {
			return nil, fmt.Errorf("%w: SKU %d stored in slots %d and %d", ErrInvalidPlacement, sku, slotOf[sku], slot)
		}
		slotOf[sku] = slot
	}
	return &Placement{geometry: g, skuOf: slices.Clone(skuOf), slotOf: slotOf}, nil
}

// FromGrid builds a Placement from a depth x aisle grid where grid[d][a] is the SKU
// stored at depth d of aisle a. This is the layout used by the text placement format.
func FromGrid(g Geometry, grid [][]int) (*Placement, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(grid) != g.Depth {
		return nil, fmt.Errorf("%w: grid has %d depth rows, want %d", ErrDimensionMismatch, len(grid), g.Depth)
	}
	skuOf := make([]int, g.NumSlots())
	for d, row := range grid {
		if len(row) != g.Aisles {
			return nil, fmt.Errorf("%w: grid row %d has %d aisles, want %d", ErrDimensionMismatch, d, len(row), g.Aisles)
		}
		for a, sku := range row {
			skuOf[g.SlotID(Slot{Aisle: a, Depth: d})] = sku
		}
	}
	return NewPlacement(g, skuOf)
}

// IdentityPlacement stores SKU i in slot i.
func IdentityPlacement(g Geometry) *Placement {
	n := g.NumSlots()
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return &Placement{geometry: g, skuOf: ids, slotOf: slices.Clone(ids)}
}

// Geometry returns the layout of the placement.
func (p *Placement) Geometry() Geometry {
	return p.geometry
}

// Size returns N.
func (p *Placement) Size() int {
	return len(p.skuOf)
}

// SKUAt returns the SKU stored in slot id.
func (p *Placement) SKUAt(slot int) int {
	return p.skuOf[slot]
}

// SlotOf returns the slot id of sku.
func (p *Placement) SlotOf(sku int) int {
	return p.slotOf[sku]
}

// SKUs returns a copy of the slot -> SKU array.
func (p *Placement) SKUs() []int {
	return slices.Clone(p.skuOf)
}

// Slots returns a copy of the SKU -> slot array.
func (p *Placement) Slots() []int {
	return slices.Clone(p.slotOf)
}

// Grid returns the depth x aisle view of the placement (see FromGrid).
func (p *Placement) Grid() [][]int {
	g := p.geometry
	grid := make([][]int, g.Depth)
	for d := range grid {
		grid[d] = make([]int, g.Aisles)
		for a := range grid[d] {
			grid[d][a] = p.skuOf[g.SlotID(Slot{Aisle: a, Depth: d})]
		}
	}
	return grid
}

// Clone returns an independent copy.
func (p *Placement) Clone() *Placement {
	return &Placement{
		geometry: p.geometry,
		skuOf:    slices.Clone(p.skuOf),
		slotOf:   slices.Clone(p.slotOf),
	}
}

// CopyFrom overwrites p with the contents of src. Both must share a geometry.
func (p *Placement) CopyFrom(src *Placement) {
	copy(p.skuOf, src.skuOf)
	copy(p.slotOf, src.slotOf)
}

// Equal reports whether both placements store every SKU in the same slot.
func (p *Placement) Equal(o *Placement) bool {
	return p.geometry == o.geometry && slices.Equal(p.skuOf, o.skuOf)
}

// Swap exchanges the contents of two slots.
func (p *Placement) Swap(a, b int) {
	skuA, skuB := p.skuOf[a], p.skuOf[b]
	p.skuOf[a], p.skuOf[b] = skuB, skuA
	p.slotOf[skuA], p.slotOf[skuB] = b, a
}

// SwapAisles exchanges the contents of two aisles, depth by depth.
func (p *Placement) SwapAisles(a, b int) {
	for d := 0; d < p.geometry.Depth; d++ {
		p.Swap(p.geometry.SlotID(Slot{Aisle: a, Depth: d}), p.geometry.SlotID(Slot{Aisle: b, Depth: d}))
	}
}

// RotateSlots moves the contents along a cycle of slot ids. Forward shifts every
// slot's content one step back (slots[i] receives slots[i+1], the last receives the
// first); backward is the inverse rotation.
func (p *Placement) RotateSlots(slots []int, forward bool) {
	k := len(slots)
	if k < 2 {
		return
	}
	if forward {
		first := p.skuOf[slots[0]]
		for i := 0; i < k-1; i++ {
			p.set(slots[i], p.skuOf[slots[i+1]])
		}
		p.set(slots[k-1], first)
		return
	}
	last := p.skuOf[slots[k-1]]
	for i := k - 1; i > 0; i-- {
		p.set(slots[i], p.skuOf[slots[i-1]])
	}
	p.set(slots[0], last)
}

// RotateAisles applies RotateSlots depth by depth to a cycle of aisles.
func (p *Placement) RotateAisles(aisles []int, forward bool) {
	cycle := make([]int, len(aisles))
	for d := 0; d < p.geometry.Depth; d++ {
		for i, a := range aisles {
			cycle[i] = p.geometry.SlotID(Slot{Aisle: a, Depth: d})
		}
		p.RotateSlots(cycle, forward)
	}
}

func (p *Placement) set(slot, sku int) {
	p.skuOf[slot] = sku
	p.slotOf[sku] = slot
}

// Validate checks the bijection invariant.
func (p *Placement) Validate() error {
	n := p.geometry.NumSlots()
	if len(p.skuOf) != n || len(p.slotOf) != n {
		return fmt.Errorf("%w: placement size %d for %d slots", ErrDimensionMismatch, len(p.skuOf), n)
	}
	for slot, sku := range p.skuOf {
		if sku < 0 || sku >= n || p.slotOf[sku] != slot {
			return fmt.Errorf("%w: slot %d and SKU %d disagree", ErrInvalidPlacement, slot, sku)
		}
	}
	return nil
}
