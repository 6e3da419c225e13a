// Package metrics exports search activity as Prometheus collectors on a dedicated
// registry. A Recorder implements search.Observer and can be shared by
// concurrent MultiStart workers.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/slotsim/slotsim/slotting/search"
)

// Recorder holds the collectors for one process.
type Recorder struct {
	// Registry is the dedicated registry all collectors are registered on.
	Registry *prometheus.Registry

	// Trials counts descent trials by move family and outcome (accepted/rejected).
	Trials *prometheus.CounterVec
	// Certifications counts certification passes by outcome (improved/certified).
	Certifications *prometheus.CounterVec
	// BestCost is the latest best expected cost seen by any worker.
	BestCost prometheus.Gauge
	// RunDuration records wall-clock seconds per completed run.
	RunDuration prometheus.Histogram
	// Runs counts completed runs by stop reason.
	Runs *prometheus.CounterVec
}

var _ search.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder. withRuntime adds the Go and process collectors.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		Trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "slotting_search_trials_total", Help: "Local-search trials by move family and outcome."},
			[]string{"family", "outcome"},
		),
		Certifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "slotting_search_certifications_total", Help: "Certification passes by outcome."},
			[]string{"outcome"},
		),
		BestCost: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "slotting_search_best_cost", Help: "Best expected order-picking time found."},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "slotting_search_run_duration_seconds", Help: "Search run duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 4, 10)},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "slotting_search_runs_total", Help: "Completed search runs by stop reason."},
			[]string{"reason"},
		),
	}
	r.Registry.MustRegister(r.Trials, r.Certifications, r.BestCost, r.RunDuration, r.Runs)
	if withRuntime {
		r.Registry.MustRegister(collectors.NewGoCollector())
		r.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return r
}

// OnTrial implements search.Observer.
func (r *Recorder) OnTrial(kind search.MoveKind, accepted bool, cost float64) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
		r.BestCost.Set(cost)
	}
	r.Trials.WithLabelValues(kind.String(), outcome).Inc()
}

// OnCertification implements search.Observer.
func (r *Recorder) OnCertification(_ int, improved bool, cost float64) {
	outcome := "certified"
	if improved {
		outcome = "improved"
		r.BestCost.Set(cost)
	}
	r.Certifications.WithLabelValues(outcome).Inc()
}

// ObserveResult records a finished run.
func (r *Recorder) ObserveResult(res *search.Result) {
	if res == nil {
		return
	}
	r.RunDuration.Observe(res.Elapsed.Seconds())
	r.Runs.WithLabelValues(string(res.StopReason)).Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
