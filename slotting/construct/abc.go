package construct

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/slotsim/slotsim/slotting"
)

// Distance classes of the ABC heuristic.
const (
	ClassA = iota // aisles nearest the entry
	ClassB
	ClassC
)

// ClassifyAisles partitions aisles 0..r-1 into distance classes A, B and C.
//
// Class A holds the aisle facing the entry (even r) or the two aisles on either
// side of it (odd r). With L aisles left of class A, ⌊L/3⌋+1 aisles on each side
// go to class B, nearest first, and the remaining outer aisles go to class C.
// Fewer than four aisles are special-cased: 1 → A{0}; 2 → A{0} B{1}; 3 → A{0,1} B{2}.
func ClassifyAisles(r int) [3][]int {
	var classes [3][]int
	switch r {
	case 1:
		classes[ClassA] = []int{0}
		return classes
	case 2:
		classes[ClassA] = []int{0}
		classes[ClassB] = []int{1}
		return classes
	case 3:
		classes[ClassA] = []int{0, 1}
		classes[ClassB] = []int{2}
		return classes
	}
	if r < 1 {
		return classes
	}

	if r%2 == 0 {
		classes[ClassA] = []int{r/2 - 1}
	} else {
		classes[ClassA] = []int{(r+1)/2 - 2, (r+1)/2 - 1}
	}
	left := classes[ClassA][0]
	right := classes[ClassA][len(classes[ClassA])-1]
	perSide := left/3 + 1

	for a := max(left-perSide, 0); a < left; a++ {
		classes[ClassB] = append(classes[ClassB], a)
	}
	for a := right + 1; a < min(right+1+perSide, r); a++ {
		classes[ClassB] = append(classes[ClassB], a)
	}
	for a := 0; a < left-perSide; a++ {
		classes[ClassC] = append(classes[ClassC], a)
	}
	for a := right + 1 + perSide; a < r; a++ {
		classes[ClassC] = append(classes[ClassC], a)
	}
	return classes
}

// ABC groups SKUs into frequency classes matched to the aisle distance classes.
// The most frequently ordered SKUs fill class A, the next ones class B, the rest
// class C. Class and group membership are deterministic; only the assignment of
// SKUs to slots inside a class is shuffled.
type ABC struct{}

// Name implements Heuristic.
func (ABC) Name() string { return NameABC }

// Build implements Heuristic.
func (ABC) Build(affinity *slotting.AffinityMatrix, g slotting.Geometry, rng *rand.Rand) (*slotting.Placement, error) {
	if err := checkInstance(affinity, g); err != nil {
		return nil, err
	}
	ranked := rankByFrequency(affinity.Frequencies())
	classes := ClassifyAisles(g.Aisles)

	skuOf := make([]int, g.NumSlots())
	next := 0
	for c, aisles := range classes {
		size := len(aisles) * g.Depth
		group := append([]int(nil), ranked[next:next+size]...)
		next += size
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })

		k := 0
		for _, a := range aisles {
			for _, slot := range g.AisleSlots(a) {
				skuOf[slot] = group[k]
				k++
			}
		}
		logrus.Debugf("abc: class %c holds aisles %v (%d SKUs)", 'A'+rune(c), aisles, size)
	}
	return slotting.NewPlacement(g, skuOf)
}
