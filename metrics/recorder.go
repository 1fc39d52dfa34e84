// Package metrics provides Prometheus instrumentation for the status line
// coordinator. Counters are kept in a private registry and can be pushed to
// a remote-write endpoint at the end of a run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"termstatus/statusline"
)

// StatusRecorder implements statusline.Recorder on top of a private
// Prometheus registry.
type StatusRecorder struct {
	registry *prometheus.Registry

	renders       prometheus.Counter
	suppressed    prometheus.Counter
	linesPrinted  prometheus.Counter
	notifications *prometheus.CounterVec
	queueDepth    prometheus.Gauge
}

// NewStatusRecorder creates a recorder whose metric names carry prefix.
func NewStatusRecorder(prefix string) (*StatusRecorder, error) {
	r := &StatusRecorder{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "renders_total",
			Help:      "Status line repaints that wrote to the terminal.",
		}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "repaints_suppressed_total",
			Help:      "Render jobs skipped because the line was unchanged.",
		}),
		linesPrinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "lines_printed_total",
			Help:      "Full lines scrolled above the status row.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "notifications_total",
			Help:      "Notifications installed, by severity.",
		}, []string{"severity"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prefix,
			Name:      "queue_depth",
			Help:      "Jobs waiting on the serial worker queue.",
		}),
	}

	collectors := []prometheus.Collector{
		r.renders, r.suppressed, r.linesPrinted, r.notifications, r.queueDepth,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering status metrics: %w", err)
		}
	}
	return r, nil
}

// RenderCompleted counts a render job; wrote is false for suppressed repaints.
func (r *StatusRecorder) RenderCompleted(wrote bool) {
	if wrote {
		r.renders.Inc()
	} else {
		r.suppressed.Inc()
	}
}

// LinePrinted counts one line scrolled above the status row.
func (r *StatusRecorder) LinePrinted() {
	r.linesPrinted.Inc()
}

// NotificationRaised counts an installed notification by severity.
func (r *StatusRecorder) NotificationRaised(sev statusline.Severity) {
	r.notifications.WithLabelValues(sev.String()).Inc()
}

// QueueDepth records the serial worker's queue length.
func (r *StatusRecorder) QueueDepth(n int) {
	r.queueDepth.Set(float64(n))
}

// Gather collects the current metric families for pushing.
func (r *StatusRecorder) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}
