package construct

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/slotsim/slotsim/slotting"
)

// Jaccard places SKUs greedily by affinity cluster.
//
// The most frequent unplaced SKU (the head) takes the free slot nearest the entry,
// i.e. with the smallest single-item round trip. Every still-unplaced member of the
// head's correlation set {j : J(head,j) >= Threshold} is then placed, most correlated
// first, in the free slot nearest the head's slot. The process repeats with the next
// most frequent unplaced SKU. Ties between slots go to the first in row-major scan
// order; ties between SKUs go to the lower id. The heuristic is deterministic and
// ignores rng.
type Jaccard struct {
	Threshold   float64
	TravelTimes *slotting.TravelTimeMatrix
}

// Name implements Heuristic.
func (*Jaccard) Name() string { return NameJaccard }

// Build implements Heuristic.
func (h *Jaccard) Build(affinity *slotting.AffinityMatrix, g slotting.Geometry, _ *rand.Rand) (*slotting.Placement, error) {
	if err := checkInstance(affinity, g); err != nil {
		return nil, err
	}
	times := h.TravelTimes
	if times == nil || times.Geometry() != g {
		var err error
		if times, err = slotting.NewTravelTimeMatrix(g); err != nil {
			return nil, err
		}
	}

	n := g.NumSlots()
	jac := affinity.Jaccard()
	sets := slotting.CorrelationSets(jac, h.Threshold)
	ranked := rankByFrequency(affinity.Frequencies())

	scan := make([]int, n) // slot ids in row-major scan order
	for i, s := range g.Slots() {
		scan[i] = g.SlotID(s)
	}
	skuOf := make([]int, n)
	free := make([]bool, n)
	placed := make([]bool, n)
	for i := range free {
		free[i] = true
	}

	nearest := func(dist func(slot int) float64) int {
		best, bestDist := -1, math.Inf(1)
		for _, slot := range scan {
			if free[slot] {
				if d := dist(slot); d < bestDist {
					best, bestDist = slot, d
				}
			}
		}
		return best
	}
	place := func(sku, slot int) {
		skuOf[slot] = sku
		free[slot] = false
		placed[sku] = true
	}

	clusters := 0
	for _, head := range ranked {
		if placed[head] {
			continue
		}
		anchor := nearest(times.Self)
		place(head, anchor)
		clusters++

		var members []int
		for _, j := range sets[head] {
			if !placed[j] {
				members = append(members, j)
			}
		}
		for len(members) > 0 {
			bi := 0
			for i := 1; i < len(members); i++ {
				if jac[head][members[i]] > jac[head][members[bi]] {
					bi = i
				}
			}
			sku := members[bi]
			members = append(members[:bi], members[bi+1:]...)
			place(sku, nearest(func(slot int) float64 { return times.At(anchor, slot) }))
		}
	}
	logrus.Debugf("jaccard: placed %d SKUs in %d clusters (threshold %.3f)", n, clusters, h.Threshold)
	return slotting.NewPlacement(g, skuOf)
}
