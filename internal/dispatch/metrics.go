package dispatch

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-command counts and latency, relabeled from the
// teacher's observability.RecordHTTPRequest/RecordSeedProxy pair
// (CounterVec + HistogramVec registered once via sync.Once) onto the
// command-dispatch subsystem instead of HTTP routes.
type Metrics struct {
	registerOnce sync.Once
	commands     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics builds an unregistered Metrics. Call Register before use.
func NewMetrics() *Metrics {
	return &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ratree",
				Subsystem: "command",
				Name:      "requests_total",
				Help:      "Total commands dispatched, by command and outcome.",
			},
			[]string{"command", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ratree",
				Subsystem: "command",
				Name:      "duration_seconds",
				Help:      "Command handler duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command", "status"},
		),
	}
}

// Register registers m's collectors with the default Prometheus
// registry, exactly once.
func (m *Metrics) Register() {
	m.registerOnce.Do(func() {
		prometheus.MustRegister(m.commands, m.duration)
	})
}

// Observe records one dispatched command's outcome.
func (m *Metrics) Observe(command string, ok bool, d time.Duration) {
	status := statusLabel(ok)
	m.commands.WithLabelValues(command, status).Inc()
	m.duration.WithLabelValues(command, status).Observe(d.Seconds())
}

func statusLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failure"
}
