package search

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotsim/slotsim/slotting"
	"github.com/slotsim/slotsim/slotting/internal/testutil"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

// blockInstance: 12 SKUs in 4 blocks of 3 on a 4-aisle, depth-3 layout.
func blockInstance(t *testing.T) *slotting.Evaluator {
	t.Helper()
	g := slotting.Geometry{Aisles: 4, Depth: 3}
	tt, err := slotting.NewTravelTimeMatrix(g)
	require.NoError(t, err)
	a, err := slotting.NewAffinityMatrix(testutil.BlockAffinity(12, 3, 0.2, 0.01))
	require.NoError(t, err)
	e, err := slotting.NewEvaluator(tt, a)
	require.NoError(t, err)
	return e
}

func randomStart(g slotting.Geometry, seed int64) *slotting.Placement {
	rng := rand.New(rand.NewSource(seed))
	p, err := slotting.NewPlacement(g, rng.Perm(g.NumSlots()))
	if err != nil {
		panic(err)
	}
	return p
}

// assertLocalOptimum re-checks every aisle swap and slot swap with full evaluation.
func assertLocalOptimum(t *testing.T, e *slotting.Evaluator, p *slotting.Placement, cost float64) {
	t.Helper()
	g := p.Geometry()
	for a := 0; a < g.Aisles; a++ {
		for b := a + 1; b < g.Aisles; b++ {
			q := p.Clone()
			q.SwapAisles(a, b)
			assert.False(t, e.Evaluate(q) < cost, "aisle swap (%d,%d) improves", a, b)
		}
	}
	for a := 0; a < p.Size(); a++ {
		for b := a + 1; b < p.Size(); b++ {
			q := p.Clone()
			q.Swap(a, b)
			assert.False(t, e.Evaluate(q) < cost, "slot swap (%d,%d) improves", a, b)
		}
	}
}

func TestFamilies(t *testing.T) {
	tests := []struct {
		g    slotting.Geometry
		want []MoveKind
	}{
		{slotting.Geometry{Aisles: 1, Depth: 1}, nil},
		{slotting.Geometry{Aisles: 1, Depth: 5}, []MoveKind{SlotSwap}},
		{slotting.Geometry{Aisles: 2, Depth: 1}, []MoveKind{AisleSwap, SlotSwap}},
		{slotting.Geometry{Aisles: 2, Depth: 2}, []MoveKind{AisleSwap, SlotSwap, SlotCycle}},
		{slotting.Geometry{Aisles: 3, Depth: 1}, []MoveKind{AisleSwap, SlotSwap}},
		{slotting.Geometry{Aisles: 4, Depth: 1}, []MoveKind{AisleSwap, SlotSwap, AisleCycle, SlotCycle}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Families(tt.g), "%s", tt.g)
	}
}

func TestMove_InverseRestoresPlacement(t *testing.T) {
	g := slotting.Geometry{Aisles: 5, Depth: 3}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		kind := AllMoveKinds()[i%int(numMoveKinds)]
		m := RandomMove(kind, g, rng)
		p := randomStart(g, int64(i))
		orig := p.Clone()
		m.Apply(p)
		require.NoError(t, p.Validate())
		m.Inverse().Apply(p)
		assert.True(t, p.Equal(orig), "move %v", m)
	}
}

func TestRandomMove_CycleLengthsInRange(t *testing.T) {
	g := slotting.Geometry{Aisles: 4, Depth: 2}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		m := RandomMove(AisleCycle, g, rng)
		assert.GreaterOrEqual(t, len(m.Cycle), 3)
		assert.LessOrEqual(t, len(m.Cycle), g.Aisles)
		m = RandomMove(SlotCycle, g, rng)
		assert.GreaterOrEqual(t, len(m.Cycle), 3)
		assert.LessOrEqual(t, len(m.Cycle), g.NumSlots())
		seen := map[int]bool{}
		for _, s := range m.Cycle {
			assert.False(t, seen[s], "duplicate slot %d in %v", s, m.Cycle)
			seen[s] = true
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Strategy: StrategyStrict}.Validate())
	assert.Error(t, Config{MaxStall: -1}.Validate())
	assert.Error(t, Config{MaxIterations: -1}.Validate())
	assert.Error(t, Config{TimeBudget: -1}.Validate())
	assert.Error(t, Config{MaxRounds: -1}.Validate())
	assert.Error(t, Config{Strategy: "annealing"}.Validate())
}

func TestDescend_CertifiedIsLocalOptimum(t *testing.T) {
	e := blockInstance(t)
	for _, incremental := range []bool{false, true} {
		eng, err := NewEngine(e, Config{Incremental: incremental}, rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		start := randomStart(e.Geometry(), 11)
		res, err := eng.Descend(context.Background(), start)
		require.NoError(t, err)
		assert.True(t, res.Certified)
		assert.Equal(t, StopCertified, res.StopReason)
		assert.LessOrEqual(t, res.Cost, res.InitialCost)
		assert.Equal(t, e.Evaluate(res.Placement), res.Cost)
		assert.GreaterOrEqual(t, res.Stats.Rounds, 1)
		assertLocalOptimum(t, e, res.Placement, res.Cost)
	}
}

func TestDescend_DoesNotModifyStart(t *testing.T) {
	e := blockInstance(t)
	eng, err := NewEngine(e, Config{}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	start := randomStart(e.Geometry(), 5)
	orig := start.Clone()
	_, err = eng.Descend(context.Background(), start)
	require.NoError(t, err)
	assert.True(t, start.Equal(orig))
}

func TestDescend_SameSeedSameResult(t *testing.T) {
	e := blockInstance(t)
	run := func() *Result {
		eng, err := NewEngine(e, Config{}, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		res, err := eng.Descend(context.Background(), randomStart(e.Geometry(), 9))
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.True(t, a.Placement.Equal(b.Placement))
	assert.Equal(t, a.Cost, b.Cost)
	assert.Equal(t, a.Stats, b.Stats)
}

// costRecorder checks that the best cost reported to the observer never rises.
type costRecorder struct {
	mu     sync.Mutex
	last   float64
	rises  int
	trials int
	certs  int
}

func (c *costRecorder) OnTrial(_ MoveKind, _ bool, cost float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trials > 0 && cost > c.last {
		c.rises++
	}
	c.last = cost
	c.trials++
}

func (c *costRecorder) OnCertification(_ int, _ bool, _ float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.certs++
}

func TestDescend_BestCostMonotone(t *testing.T) {
	e := blockInstance(t)
	rec := &costRecorder{}
	eng, err := NewEngine(e, Config{}, rand.New(rand.NewSource(8)), WithObserver(rec))
	require.NoError(t, err)
	res, err := eng.Descend(context.Background(), randomStart(e.Geometry(), 2))
	require.NoError(t, err)
	assert.Zero(t, rec.rises)
	assert.Equal(t, res.Stats.Iterations, rec.trials)
	assert.Equal(t, res.Stats.Rounds, rec.certs)

	var tried, accepted int
	for k := range res.Stats.Tried {
		tried += res.Stats.Tried[k]
		accepted += res.Stats.Accepted[k]
	}
	assert.Equal(t, res.Stats.Iterations, tried)
	assert.Equal(t, res.Stats.Improvements, accepted)
}

func TestDescend_IterationBudget(t *testing.T) {
	e := blockInstance(t)
	eng, err := NewEngine(e, Config{MaxIterations: 5}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := eng.Descend(context.Background(), randomStart(e.Geometry(), 1))
	require.NoError(t, err)
	assert.False(t, res.Certified)
	assert.Equal(t, StopIterationBudget, res.StopReason)
	assert.Equal(t, 5, res.Stats.Iterations)
	assert.LessOrEqual(t, res.Cost, res.InitialCost)
	require.NoError(t, res.Placement.Validate())
}

func TestDescend_Cancelled(t *testing.T) {
	e := blockInstance(t)
	eng, err := NewEngine(e, Config{}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := eng.Descend(ctx, randomStart(e.Geometry(), 1))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, StopCancelled, res.StopReason)
	assert.Equal(t, res.InitialCost, res.Cost)
}

func TestDescend_SingleSlotIsCertified(t *testing.T) {
	g := slotting.Geometry{Aisles: 1, Depth: 1}
	tt, err := slotting.NewTravelTimeMatrix(g)
	require.NoError(t, err)
	a, err := slotting.NewAffinityMatrix([][]float64{{0}})
	require.NoError(t, err)
	e, err := slotting.NewEvaluator(tt, a)
	require.NoError(t, err)
	eng, err := NewEngine(e, Config{}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := eng.Descend(context.Background(), slotting.IdentityPlacement(g))
	require.NoError(t, err)
	assert.True(t, res.Certified)
	assert.Zero(t, res.Cost)
	assert.Zero(t, res.Stats.Iterations)
}

func TestDescend_TwoByTwoReachesOptimum(t *testing.T) {
	// Starting from the documented 11.2 placement.
	fx := testutil.LoadFixtures(t)
	require.NotEmpty(t, fx.Evaluations)
	ev := fx.Evaluations[0]
	g := slotting.Geometry{Aisles: ev.Aisles, Depth: ev.Depth}
	tt, err := slotting.NewTravelTimeMatrix(g)
	require.NoError(t, err)
	a, err := slotting.NewAffinityMatrix(ev.Affinity)
	require.NoError(t, err)
	e, err := slotting.NewEvaluator(tt, a)
	require.NoError(t, err)
	start, err := slotting.FromGrid(g, ev.Grid)
	require.NoError(t, err)

	eng, err := NewEngine(e, Config{}, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	res, err := eng.Descend(context.Background(), start)
	require.NoError(t, err)
	assert.True(t, res.Certified)
	assert.LessOrEqual(t, res.Cost, ev.Cost)
	assertLocalOptimum(t, e, res.Placement, res.Cost)
}

func TestNewEngine_Invalid(t *testing.T) {
	e := blockInstance(t)
	_, err := NewEngine(nil, Config{}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = NewEngine(e, Config{}, nil)
	assert.Error(t, err)
	_, err = NewEngine(e, Config{Strategy: "greedy"}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestDescend_RejectsMismatchedStart(t *testing.T) {
	e := blockInstance(t)
	eng, err := NewEngine(e, Config{}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = eng.Descend(context.Background(), slotting.IdentityPlacement(slotting.Geometry{Aisles: 3, Depth: 4}))
	assert.ErrorIs(t, err, slotting.ErrDimensionMismatch)
}

func TestMultiStart_BestOfAllAndDeterministic(t *testing.T) {
	e := blockInstance(t)
	starts := func() []*slotting.Placement {
		return []*slotting.Placement{
			randomStart(e.Geometry(), 1),
			randomStart(e.Geometry(), 2),
			randomStart(e.Geometry(), 3),
		}
	}
	run := func() (*Result, []*Result) {
		rngs := slotting.NewPartitionedRNG(slotting.NewRunKey(99))
		best, all, err := MultiStart(context.Background(), e, Config{}, starts(), rngs)
		require.NoError(t, err)
		return best, all
	}
	best, all := run()
	require.Len(t, all, 3)
	for _, r := range all {
		assert.True(t, r.Certified)
		assert.LessOrEqual(t, best.Cost, r.Cost)
	}
	best2, all2 := run()
	assert.True(t, best.Placement.Equal(best2.Placement))
	for k := range all {
		assert.Equal(t, all[k].Cost, all2[k].Cost, "start %d", k)
	}

	agg := Aggregate(all)
	assert.Equal(t, all[0].Stats.Iterations+all[1].Stats.Iterations+all[2].Stats.Iterations, agg.Iterations)
}

func TestMultiStart_NoStarts(t *testing.T) {
	e := blockInstance(t)
	_, _, err := MultiStart(context.Background(), e, Config{}, nil, slotting.NewPartitionedRNG(1))
	assert.Error(t, err)
}

func TestResult_Gain(t *testing.T) {
	assert.Equal(t, 0.25, (&Result{InitialCost: 4, Cost: 3}).Gain())
	assert.Zero(t, (&Result{}).Gain())
}

func TestDescend_CertificationRestartsDescent(t *testing.T) {
	// A one-trial stall limit hands control to certification almost at once, so
	// certification keeps finding improving swaps and restarting the descent.
	e := blockInstance(t)
	for seed := int64(0); seed < 5; seed++ {
		eng, err := NewEngine(e, Config{MaxStall: 1}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		res, err := eng.Descend(context.Background(), randomStart(e.Geometry(), seed))
		require.NoError(t, err)
		assert.Greater(t, res.Stats.Rounds, 1, "seed %d", seed)
		assert.True(t, res.Certified, "seed %d", seed)
		assert.Equal(t, StopCertified, res.StopReason)
		assert.Less(t, res.Cost, res.InitialCost, "seed %d", seed)
		assertLocalOptimum(t, e, res.Placement, res.Cost)
	}
}

func TestDescend_RoundLimitIsFatal(t *testing.T) {
	e := blockInstance(t)
	for seed := int64(0); seed < 5; seed++ {
		eng, err := NewEngine(e, Config{MaxStall: 1, MaxRounds: 2}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		res, err := eng.Descend(context.Background(), randomStart(e.Geometry(), seed))
		assert.True(t, errors.Is(err, ErrCertificationDiverged), "seed %d: err=%v", seed, err)
		require.NotNil(t, res)
		assert.Equal(t, StopDiverged, res.StopReason)
		assert.False(t, res.Certified)
		assert.Equal(t, 2, res.Stats.Rounds)
		assert.LessOrEqual(t, res.Cost, res.InitialCost)
		require.NoError(t, res.Placement.Validate())
	}
}

func TestDescend_TimeBudget(t *testing.T) {
	e := blockInstance(t)
	eng, err := NewEngine(e, Config{TimeBudget: time.Nanosecond}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := eng.Descend(context.Background(), randomStart(e.Geometry(), 1))
	require.NoError(t, err)
	assert.False(t, res.Certified)
	assert.Equal(t, StopTimeBudget, res.StopReason)
	assert.LessOrEqual(t, res.Cost, res.InitialCost)
	require.NoError(t, res.Placement.Validate())
}

func TestMultiStart_SingleStartMatchesEngine(t *testing.T) {
	// Worker 0 draws from the plain search stream.
	e := blockInstance(t)
	rngs := slotting.NewPartitionedRNG(slotting.NewRunKey(5))
	best, _, err := MultiStart(context.Background(), e, Config{}, []*slotting.Placement{randomStart(e.Geometry(), 4)}, rngs)
	require.NoError(t, err)

	eng, err := NewEngine(e, Config{}, slotting.NewPartitionedRNG(slotting.NewRunKey(5)).ForSubsystem(slotting.SubsystemSearch))
	require.NoError(t, err)
	res, err := eng.Descend(context.Background(), randomStart(e.Geometry(), 4))
	require.NoError(t, err)
	assert.True(t, best.Placement.Equal(res.Placement))
	assert.Equal(t, res.Stats, best.Stats)
}
