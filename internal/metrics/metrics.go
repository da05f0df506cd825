// Package metrics exposes Prometheus counters for the dispatch cache and
// the constant evaluator.
//
// Metrics:
//   - <ns>_dispatch_tables_built_total: dispatch tables built, by visitor
//   - <ns>_dispatch_resolutions_total: handler resolutions, by result (hit, miss)
//   - <ns>_evaluations_total: top-level constant evaluations, by status (ok, error)
//   - <ns>_diagnostics_total: diagnostics recorded, by severity
//
// A Collector implements dispatch.Observer and evaluator.Observer, so it
// can be installed with dispatch.SetObserver and evaluator.WithObserver.
package metrics

import (
	"fmt"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HugoDaniel/shadertree/internal/diagnostic"
	"github.com/HugoDaniel/shadertree/internal/evaluator"
)

// DefaultNamespace prefixes metric names when none is given.
const DefaultNamespace = "shadertree"

// Collector owns the counters and the registry they are registered in.
type Collector struct {
	registry *prometheus.Registry

	tablesBuilt *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
}

// NewCollector creates the counters and registers them with registry. If
// registry is nil, a fresh registry is used.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		registry: registry,
		tablesBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "tables_built_total",
				Help:      "Total number of dispatch tables built",
			},
			[]string{"visitor"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "resolutions_total",
				Help:      "Total number of handler resolutions by cache result",
			},
			[]string{"result"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of constant evaluations by status",
			},
			[]string{"status"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics by severity",
			},
			[]string{"severity"},
		),
	}

	registry.MustRegister(c.tablesBuilt, c.resolutions, c.evaluations, c.diagnostics)
	return c
}

// Registry returns the registry holding the counters.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TableBuilt implements dispatch.Observer.
func (c *Collector) TableBuilt(visitor reflect.Type, handlers int) {
	c.tablesBuilt.WithLabelValues(visitor.String()).Inc()
}

// Resolved implements dispatch.Observer.
func (c *Collector) Resolved(visitor, node reflect.Type, cached bool) {
	result := "miss"
	if cached {
		result = "hit"
	}
	c.resolutions.WithLabelValues(result).Inc()
}

// Evaluated implements evaluator.Observer.
func (c *Collector) Evaluated(r *evaluator.Result) {
	c.countEvaluation(r.OK())
	c.RecordDiagnostics(&r.Diagnostics)
}

// Observe counts one evaluation reported outside the evaluator package,
// together with the severities of its diagnostics.
func (c *Collector) Observe(ok bool, severities ...string) {
	c.countEvaluation(ok)
	for _, s := range severities {
		c.diagnostics.WithLabelValues(s).Inc()
	}
}

func (c *Collector) countEvaluation(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	c.evaluations.WithLabelValues(status).Inc()
}

// RecordDiagnostics counts every diagnostic of l by severity.
func (c *Collector) RecordDiagnostics(l *diagnostic.List) {
	for _, d := range l.All() {
		c.diagnostics.WithLabelValues(d.Severity.String()).Inc()
	}
}

// WriteToTextfile writes every metric in the text exposition format,
// atomically replacing path.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}
