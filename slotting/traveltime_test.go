package slotting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotsim/slotsim/slotting/internal/testutil"
)

func TestNewTravelTimeMatrix_DocumentedMatrices(t *testing.T) {
	fx := testutil.LoadFixtures(t)
	require.NotEmpty(t, fx.TravelTimes)
	for _, tc := range fx.TravelTimes {
		t.Run(tc.Name, func(t *testing.T) {
			m, err := NewTravelTimeMatrix(Geometry{Aisles: tc.Aisles, Depth: tc.Depth})
			require.NoError(t, err)
			assert.Equal(t, tc.Matrix, m.Rows())
		})
	}
}

func TestTravelTimeMatrix_Symmetric(t *testing.T) {
	for _, g := range []Geometry{{1, 1}, {1, 5}, {4, 1}, {3, 4}, {6, 2}, {7, 3}} {
		m, err := NewTravelTimeMatrix(g)
		require.NoError(t, err)
		n := g.NumSlots()
		for p := 0; p < n; p++ {
			for q := 0; q < n; q++ {
				assert.Equal(t, m.At(p, q), m.At(q, p), "%s: T[%d,%d]", g, p, q)
				assert.Equal(t, float64(TravelTime(g, g.SlotAt(q), g.SlotAt(p))), m.At(p, q))
			}
		}
	}
}

func TestTravelTimeMatrix_DiagonalIsSingleItemRoundTrip(t *testing.T) {
	g := Geometry{Aisles: 5, Depth: 3}
	m, err := NewTravelTimeMatrix(g)
	require.NoError(t, err)
	for p := 0; p < g.NumSlots(); p++ {
		s := g.SlotAt(p)
		want := 2 * (1 + abs(g.AccessColumn(s.Aisle)-g.Entry()) + g.AisleLength())
		assert.Equal(t, float64(want), m.Self(p), "slot %v", s)
		assert.Equal(t, want, SingleItemTime(g, s))
	}
}

func TestTravelTime_Positive(t *testing.T) {
	g := Geometry{Aisles: 6, Depth: 4}
	for _, p := range g.Slots() {
		for _, q := range g.Slots() {
			assert.Positive(t, TravelTime(g, p, q))
		}
	}
}

func TestTravelTime_SingleAisleHasNoLateralTerm(t *testing.T) {
	// R=1: entry column 1, access column 2, every pick is a same-aisle round trip
	g := Geometry{Aisles: 1, Depth: 3}
	for _, p := range g.Slots() {
		for _, q := range g.Slots() {
			assert.Equal(t, 2*(1+1+4), TravelTime(g, p, q))
		}
	}
}

func TestTravelTime_FartherAislesCostMore(t *testing.T) {
	g := Geometry{Aisles: 6, Depth: 2}
	near := TravelTime(g, Slot{Aisle: 2, Depth: 0}, Slot{Aisle: 3, Depth: 0})
	far := TravelTime(g, Slot{Aisle: 0, Depth: 0}, Slot{Aisle: 5, Depth: 0})
	assert.Less(t, near, far)
}

func TestNewTravelTimeMatrix_InvalidGeometry(t *testing.T) {
	_, err := NewTravelTimeMatrix(Geometry{Aisles: 0, Depth: 2})
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}
