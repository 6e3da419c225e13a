// Package search improves a placement by stochastic local search followed by an
// exhaustive 2-swap certification pass.
//
// A run alternates two phases. The descent draws random moves from the applicable
// families and keeps a candidate only when it strictly lowers the expected cost; it
// ends after MaxStall consecutive failures. Certification then scans every aisle swap
// and every slot swap. The first strictly improving swap is applied and the descent
// restarts; if none exists the placement is certified and the run ends.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slotsim/slotsim/slotting"
)

// ErrCertificationDiverged is returned when the descend/certify cycle exceeds its
// round limit (Config.MaxRounds) or a certified swap fails to lower the cost.
// Either is treated as fatal rather than retried.
var ErrCertificationDiverged = errors.New("certification did not converge")

// Observer receives search events. Implementations shared between MultiStart
// workers must be safe for concurrent use.
type Observer interface {
	OnTrial(kind MoveKind, accepted bool, cost float64)
	OnCertification(round int, improved bool, cost float64)
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithLogger sets the log entry used for run progress.
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// Engine runs local search against one evaluator. An Engine owns its RNG and is
// not safe for concurrent use; MultiStart builds one per worker.
type Engine struct {
	eval     *slotting.Evaluator
	cfg      Config
	rng      *rand.Rand
	observer Observer
	log      *logrus.Entry

	// run state
	start time.Time
	stats Stats
}

// NewEngine validates cfg and returns an engine drawing moves from rng.
func NewEngine(eval *slotting.Evaluator, cfg Config, rng *rand.Rand, opts ...Option) (*Engine, error) {
	if eval == nil {
		return nil, fmt.Errorf("search: nil evaluator")
	}
	if rng == nil {
		return nil, fmt.Errorf("search: nil rng")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	e := &Engine{eval: eval, cfg: cfg, rng: rng, log: logrus.NewEntry(logrus.StandardLogger())}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Descend runs the search from start, which is not modified. A run that ends on a
// budget returns Certified=false with the best placement found so far. Cancelling
// ctx returns ctx.Err() together with the partial result.
func (e *Engine) Descend(ctx context.Context, start *slotting.Placement) (*Result, error) {
	if err := e.eval.Check(start); err != nil {
		return nil, err
	}
	e.start = time.Now()
	e.stats = Stats{}

	best := start.Clone()
	scratch := start.Clone()
	bestCost := e.eval.Evaluate(best)
	res := &Result{InitialCost: bestCost}

	g := best.Geometry()
	fams := Families(g)
	stall := e.cfg.stallLimit(best.Size())
	e.log.Debugf("search: %s, %d families, stall limit %d, initial cost %.6f", g, len(fams), stall, bestCost)

	finish := func(reason StopReason) *Result {
		res.Placement = best
		res.Cost = bestCost
		res.StopReason = reason
		res.Certified = reason == StopCertified
		res.Stats = e.stats
		res.Elapsed = time.Since(e.start)
		e.log.Debugf("search: stop=%s cost=%.6f rounds=%d iterations=%d", reason, bestCost, e.stats.Rounds, e.stats.Iterations)
		return res
	}

	for round := 0; ; round++ {
		if round >= e.cfg.maxRounds() {
			return finish(StopDiverged), fmt.Errorf("%w after %d rounds (cost %.6f)", ErrCertificationDiverged, round, bestCost)
		}

		// Stochastic descent.
		failures := 0
		for len(fams) > 0 && failures < stall {
			if reason, stop := e.budgetExceeded(ctx); stop {
				return finish(reason), ctxErr(ctx, reason)
			}
			kind := fams[e.rng.Intn(len(fams))]
			m := RandomMove(kind, g, e.rng)
			scratch.CopyFrom(best)
			m.Apply(scratch)
			cost := e.eval.Evaluate(scratch)
			e.stats.Iterations++
			e.stats.Tried[kind]++
			accepted := cost < bestCost
			if accepted {
				best, scratch = scratch, best
				bestCost = cost
				failures = 0
				e.stats.Improvements++
				e.stats.Accepted[kind]++
			} else {
				failures++
			}
			if e.observer != nil {
				e.observer.OnTrial(kind, accepted, bestCost)
			}
		}

		// Certification.
		e.stats.Rounds++
		improved, cost, reason, stop := e.certify(ctx, best, bestCost)
		if e.observer != nil {
			e.observer.OnCertification(e.stats.Rounds, improved, cost)
		}
		if stop {
			return finish(reason), ctxErr(ctx, reason)
		}
		if !improved {
			return finish(StopCertified), nil
		}
		if !(cost < bestCost) {
			return finish(StopDiverged), fmt.Errorf("%w: certified swap did not lower cost (%.9f >= %.9f)", ErrCertificationDiverged, cost, bestCost)
		}
		e.log.Debugf("search: round %d certification improved %.6f -> %.6f", e.stats.Rounds, bestCost, cost)
		bestCost = cost
	}
}

// certify scans all aisle swaps, then all slot swaps, and applies the first one that
// strictly lowers the cost. It reports whether p changed and its cost afterwards.
func (e *Engine) certify(ctx context.Context, p *slotting.Placement, cost float64) (bool, float64, StopReason, bool) {
	g := p.Geometry()
	for a := 0; a < g.Aisles; a++ {
		for b := a + 1; b < g.Aisles; b++ {
			if reason, stop := e.budgetExceeded(ctx); stop {
				return false, cost, reason, true
			}
			e.stats.Checks++
			p.SwapAisles(a, b)
			if c := e.eval.Evaluate(p); c < cost {
				return true, c, "", false
			}
			p.SwapAisles(a, b)
		}
	}

	eps := 1e-9 * math.Max(1, math.Abs(cost))
	n := p.Size()
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if reason, stop := e.budgetExceeded(ctx); stop {
				return false, cost, reason, true
			}
			e.stats.Checks++
			if e.cfg.Incremental && e.eval.SwapDelta(p, a, b) > eps {
				continue
			}
			p.Swap(a, b)
			if c := e.eval.Evaluate(p); c < cost {
				return true, c, "", false
			}
			p.Swap(a, b)
		}
	}
	return false, cost, "", false
}

// budgetExceeded checks cancellation and the iteration and time budgets.
func (e *Engine) budgetExceeded(ctx context.Context) (StopReason, bool) {
	if ctx.Err() != nil {
		return StopCancelled, true
	}
	if e.cfg.MaxIterations > 0 && e.stats.Iterations >= e.cfg.MaxIterations {
		return StopIterationBudget, true
	}
	if e.cfg.TimeBudget > 0 && time.Since(e.start) >= e.cfg.TimeBudget {
		return StopTimeBudget, true
	}
	return "", false
}

func ctxErr(ctx context.Context, reason StopReason) error {
	if reason == StopCancelled {
		return ctx.Err()
	}
	return nil
}
