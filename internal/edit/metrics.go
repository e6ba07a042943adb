package edit

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-operation counts on the edit subsystem, relabeled
// from internal/dispatch's Metrics (itself relabeled from the teacher's
// observability CounterVec/sync.Once pattern) onto tree-edit ops instead
// of dispatched commands.
type Metrics struct {
	registerOnce sync.Once
	ops          *prometheus.CounterVec
	commits      *prometheus.CounterVec
}

// NewMetrics builds an unregistered Metrics. Call Register before use.
func NewMetrics() *Metrics {
	return &Metrics{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ratree",
				Subsystem: "edit",
				Name:      "ops_total",
				Help:      "Tree-edit operations applied, by op and outcome.",
			},
			[]string{"op", "status"},
		),
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ratree",
				Subsystem: "edit",
				Name:      "commits_total",
				Help:      "Transaction terminal outcomes (complete/abort/ood).",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers m's collectors with the default Prometheus
// registry, exactly once.
func (m *Metrics) Register() {
	m.registerOnce.Do(func() {
		prometheus.MustRegister(m.ops, m.commits)
	})
}

// ObserveOp records one applied (or rejected) op.
func (m *Metrics) ObserveOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "failure"
	}
	m.ops.WithLabelValues(op, status).Inc()
}

// ObserveTerminal records complete/abort/out-of-date on a transaction.
func (m *Metrics) ObserveTerminal(outcome string) {
	m.commits.WithLabelValues(outcome).Inc()
}
