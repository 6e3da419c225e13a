package slotting

import "errors"

// Sentinel errors returned by the slotting library. Callers compare with errors.Is;
// the returned errors wrap these with the offending values.
var (
	// ErrInvalidGeometry is returned for non-positive aisle or depth counts.
	ErrInvalidGeometry = errors.New("invalid warehouse geometry")
	// ErrDimensionMismatch is returned when a matrix or placement does not match the geometry.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidAffinity is returned for ragged, non-finite or negative affinity input.
	ErrInvalidAffinity = errors.New("invalid affinity matrix")
	// ErrInvalidPlacement is returned when a placement is not a bijection between SKUs and slots.
	ErrInvalidPlacement = errors.New("invalid placement")
)
