package slotting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlacement_Invalid(t *testing.T) {
	g := Geometry{Aisles: 2, Depth: 2}
	tests := []struct {
		name  string
		skuOf []int
		want  error
	}{
		{"too short", []int{0, 1, 2}, ErrDimensionMismatch},
		{"duplicate", []int{0, 1, 1, 3}, ErrInvalidPlacement},
		{"out of range", []int{0, 1, 2, 4}, ErrInvalidPlacement},
		{"negative", []int{0, -1, 2, 3}, ErrInvalidPlacement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlacement(g, tt.skuOf)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromGrid_InverseConsistent(t *testing.T) {
	g := Geometry{Aisles: 2, Depth: 2}
	p, err := FromGrid(g, [][]int{{1, 3}, {0, 2}})
	require.NoError(t, err)
	// slot ids: (a0,d0)=0 (a1,d0)=1 (a0,d1)=2 (a1,d1)=3
	assert.Equal(t, []int{1, 3, 0, 2}, p.SKUs())
	assert.Equal(t, []int{2, 0, 3, 1}, p.Slots())
	assert.Equal(t, [][]int{{1, 3}, {0, 2}}, p.Grid())
	require.NoError(t, p.Validate())
}

func TestFromGrid_WrongShape(t *testing.T) {
	g := Geometry{Aisles: 2, Depth: 2}
	_, err := FromGrid(g, [][]int{{0, 1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = FromGrid(g, [][]int{{0, 1, 2}, {3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPlacement_SwapIsOwnInverse(t *testing.T) {
	g := Geometry{Aisles: 3, Depth: 2}
	p := IdentityPlacement(g)
	orig := p.Clone()
	p.Swap(0, 4)
	assert.Equal(t, 4, p.SKUAt(0))
	assert.Equal(t, 0, p.SlotOf(4))
	require.NoError(t, p.Validate())
	p.Swap(0, 4)
	assert.True(t, p.Equal(orig))
}

func TestPlacement_SwapAisles(t *testing.T) {
	g := Geometry{Aisles: 2, Depth: 2}
	p, err := FromGrid(g, [][]int{{2, 3}, {1, 0}})
	require.NoError(t, err)
	p.SwapAisles(0, 1)
	assert.Equal(t, [][]int{{3, 2}, {0, 1}}, p.Grid())
	require.NoError(t, p.Validate())
}

func TestPlacement_RotateAisles(t *testing.T) {
	g := Geometry{Aisles: 4, Depth: 2}
	grid := [][]int{{0, 1, 4, 6}, {3, 2, 5, 7}}

	fwd, err := FromGrid(g, grid)
	require.NoError(t, err)
	fwd.RotateAisles([]int{0, 1, 3}, true)
	assert.Equal(t, [][]int{{1, 6, 4, 0}, {2, 7, 5, 3}}, fwd.Grid())

	bwd, err := FromGrid(g, grid)
	require.NoError(t, err)
	bwd.RotateAisles([]int{0, 1, 3}, false)
	assert.Equal(t, [][]int{{6, 0, 4, 1}, {7, 3, 5, 2}}, bwd.Grid())
	require.NoError(t, bwd.Validate())
}

func TestPlacement_RotateSlots(t *testing.T) {
	g := Geometry{Aisles: 4, Depth: 2}
	grid := [][]int{{0, 1, 4, 6}, {3, 2, 5, 7}}
	cycle := []int{
		g.SlotID(Slot{Aisle: 1, Depth: 0}),
		g.SlotID(Slot{Aisle: 2, Depth: 1}),
		g.SlotID(Slot{Aisle: 3, Depth: 1}),
	}

	fwd, err := FromGrid(g, grid)
	require.NoError(t, err)
	fwd.RotateSlots(cycle, true)
	assert.Equal(t, [][]int{{0, 5, 4, 6}, {3, 2, 7, 1}}, fwd.Grid())

	bwd, err := FromGrid(g, grid)
	require.NoError(t, err)
	bwd.RotateSlots(cycle, false)
	assert.Equal(t, [][]int{{0, 7, 4, 6}, {3, 2, 1, 5}}, bwd.Grid())
}

func TestPlacement_RotationRoundTrip(t *testing.T) {
	g := Geometry{Aisles: 5, Depth: 3}
	p := IdentityPlacement(g)
	orig := p.Clone()
	cycle := []int{14, 2, 7, 0, 9}
	p.RotateSlots(cycle, true)
	assert.False(t, p.Equal(orig))
	p.RotateSlots(cycle, false)
	assert.True(t, p.Equal(orig))

	p.RotateAisles([]int{4, 1, 3}, false)
	p.RotateAisles([]int{4, 1, 3}, true)
	assert.True(t, p.Equal(orig))
}

func TestPlacement_CloneIsIndependent(t *testing.T) {
	p := IdentityPlacement(Geometry{Aisles: 2, Depth: 1})
	c := p.Clone()
	c.Swap(0, 1)
	assert.Equal(t, 0, p.SKUAt(0))
	p.CopyFrom(c)
	assert.True(t, p.Equal(c))
}
