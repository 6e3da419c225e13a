package search

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/slotsim/slotsim/slotting"
)

// MultiStart runs one independent search per start placement and returns the best
// result together with every per-start result in input order. Worker k draws its
// moves from rngs.ForSubsystem(SubsystemSearchWorker(k)); all streams are derived
// before any goroutine starts, so the outcome does not depend on scheduling.
// Ties on cost go to the lowest start index.
func MultiStart(ctx context.Context, eval *slotting.Evaluator, cfg Config, starts []*slotting.Placement,
	rngs *slotting.PartitionedRNG, opts ...Option) (*Result, []*Result, error) {
	if len(starts) == 0 {
		return nil, nil, fmt.Errorf("search: no start placements")
	}
	engines := make([]*Engine, len(starts))
	for k := range starts {
		eng, err := NewEngine(eval, cfg, rngs.ForSubsystem(slotting.SubsystemSearchWorker(k)), opts...)
		if err != nil {
			return nil, nil, err
		}
		eng.log = eng.log.WithField("start", k)
		engines[k] = eng
	}

	results := make([]*Result, len(starts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k := range starts {
		k := k
		g.Go(func() error {
			res, err := engines[k].Descend(gctx, starts[k])
			if err != nil {
				return fmt.Errorf("start %d: %w", k, err)
			}
			results[k] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, results, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Cost < best.Cost {
			best = r
		}
	}
	return best, results, nil
}

// Aggregate sums the statistics of several results.
func Aggregate(results []*Result) Stats {
	var s Stats
	for _, r := range results {
		if r != nil {
			s.add(r.Stats)
		}
	}
	return s
}
