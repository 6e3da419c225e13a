package search

import (
	"fmt"
	"math/rand"

	"github.com/slotsim/slotsim/slotting"
)

// MoveKind names a neighbourhood family.
type MoveKind int

const (
	// AisleSwap exchanges the contents of two aisles.
	AisleSwap MoveKind = iota
	// SlotSwap exchanges the contents of two slots.
	SlotSwap
	// AisleCycle rotates the contents of k >= 3 aisles.
	AisleCycle
	// SlotCycle rotates the contents of k >= 3 slots.
	SlotCycle

	numMoveKinds
)

var moveKindNames = [numMoveKinds]string{"aisle-swap", "slot-swap", "aisle-cycle", "slot-cycle"}

func (k MoveKind) String() string {
	if k < 0 || k >= numMoveKinds {
		return fmt.Sprintf("MoveKind(%d)", int(k))
	}
	return moveKindNames[k]
}

// AllMoveKinds lists every family in selection order.
func AllMoveKinds() []MoveKind {
	return []MoveKind{AisleSwap, SlotSwap, AisleCycle, SlotCycle}
}

// Move is one neighbourhood transformation. Cycle holds aisle indices for the aisle
// families and linear slot ids for the slot families. A swap is a cycle of length 2.
type Move struct {
	Kind    MoveKind
	Cycle   []int
	Forward bool
}

// Apply mutates p in place.
func (m Move) Apply(p *slotting.Placement) {
	switch m.Kind {
	case AisleSwap, AisleCycle:
		p.RotateAisles(m.Cycle, m.Forward)
	case SlotSwap, SlotCycle:
		p.RotateSlots(m.Cycle, m.Forward)
	default:
		panic(fmt.Sprintf("Move.Apply: unknown kind %v", m.Kind))
	}
}

// Inverse returns the move that undoes m: the same cycle rotated the other way.
// Swaps are their own inverse.
func (m Move) Inverse() Move {
	inv := m
	if len(m.Cycle) > 2 {
		inv.Forward = !m.Forward
	}
	return inv
}

func (m Move) String() string {
	dir := "fwd"
	if !m.Forward {
		dir = "bwd"
	}
	return fmt.Sprintf("%v%v/%s", m.Kind, m.Cycle, dir)
}

// Families returns the move families applicable to g. Aisle moves need at least two
// aisles and cycles need more than three elements; a single-aisle warehouse is
// searched with slot swaps only.
func Families(g slotting.Geometry) []MoveKind {
	n := g.NumSlots()
	if g.Aisles == 1 {
		if n < 2 {
			return nil
		}
		return []MoveKind{SlotSwap}
	}
	fams := []MoveKind{AisleSwap, SlotSwap}
	if g.Aisles > 3 {
		fams = append(fams, AisleCycle)
	}
	if n > 3 {
		fams = append(fams, SlotCycle)
	}
	return fams
}

// RandomMove draws a move of the given family. Cycle lengths are uniform in [3, size]
// and the direction is a fair coin; swaps are always forward.
func RandomMove(kind MoveKind, g slotting.Geometry, rng *rand.Rand) Move {
	switch kind {
	case AisleSwap:
		return Move{Kind: kind, Cycle: sampleDistinct(rng, g.Aisles, 2), Forward: true}
	case SlotSwap:
		return Move{Kind: kind, Cycle: sampleDistinct(rng, g.NumSlots(), 2), Forward: true}
	case AisleCycle:
		k := 3 + rng.Intn(g.Aisles-2)
		return Move{Kind: kind, Cycle: sampleDistinct(rng, g.Aisles, k), Forward: rng.Intn(2) == 0}
	case SlotCycle:
		k := 3 + rng.Intn(g.NumSlots()-2)
		return Move{Kind: kind, Cycle: sampleDistinct(rng, g.NumSlots(), k), Forward: rng.Intn(2) == 0}
	default:
		panic(fmt.Sprintf("RandomMove: unknown kind %v", kind))
	}
}

// sampleDistinct returns k distinct values from [0,n) in random order.
func sampleDistinct(rng *rand.Rand, n, k int) []int {
	if k*4 < n {
		out := make([]int, 0, k)
		seen := make(map[int]bool, k)
		for len(out) < k {
			v := rng.Intn(n)
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
		return out
	}
	return rng.Perm(n)[:k]
}
