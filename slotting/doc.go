// Package slotting assigns SKUs to the fixed storage slots of a warehouse so as to
// minimise the expected travel time of an order-picking vehicle that follows an
// S-shape route.
//
// # Reading Guide
//
//   - geometry.go: aisle/depth layout and the single Slot <-> linear id conversion
//   - traveltime.go: S-shape tour cost and the precomputed TravelTimeMatrix
//   - affinity.go: pairwise co-occurrence probabilities, frequencies, Jaccard indices
//   - placement.go: the SKU <-> slot bijection and its in-place mutations
//   - evaluation.go: expected pick cost of a placement
//
// # Architecture
//
// The slotting package holds the data model; algorithms live in sub-packages:
//   - slotting/construct/: initial placements (random, ABC frequency classes, Jaccard clusters)
//   - slotting/search/: stall-based local descent with 2-swap local-optimum certification
//   - slotting/matrixio/: text and xlsx formats for affinity matrices and placements
//   - slotting/generate/: synthetic block-structured affinity matrices
//   - slotting/report/: run summaries and spreadsheet export
//   - slotting/metrics/: prometheus instrumentation of search runs
//
// All randomness flows through explicit *rand.Rand values obtained from a
// PartitionedRNG, so runs are reproducible from a single seed.
package slotting
