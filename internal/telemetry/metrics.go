// Package telemetry exports Bot API call metrics to Prometheus and traces
// to OpenTelemetry.
package telemetry

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

const namespace = "tgnotify"

// Metrics holds the Prometheus collectors. The zero value is not usable;
// call NewMetrics.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	updates  *prometheus.CounterVec
	jobs     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "Bot API HTTP attempts by method and status code.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_call_duration_seconds",
			Help:      "Bot API HTTP attempt latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "Bot API calls retried after a 429.",
		}, []string{"method"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_updates_total",
			Help:      "Updates received by the webhook receiver.",
		}, []string{"kind", "result"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_runs_total",
			Help:      "Scheduled notification runs.",
		}, []string{"job", "result"}),
	}
	reg.MustRegister(m.calls, m.duration, m.retries, m.updates, m.jobs)
	return m
}

// ObserveCall records one completed HTTP attempt.
func (m *Metrics) ObserveCall(ev botapi.CallEvent) {
	status := "error"
	if ev.StatusCode != 0 {
		status = strconv.Itoa(ev.StatusCode)
	}
	m.calls.WithLabelValues(ev.Method, status).Inc()
	m.duration.WithLabelValues(ev.Method).Observe(ev.Duration.Seconds())
	if ev.Attempt > 1 {
		m.retries.WithLabelValues(ev.Method).Inc()
	}
}

// UpdateReceived records a webhook update.
func (m *Metrics) UpdateReceived(kind string, err error) {
	m.updates.WithLabelValues(kind, result(err)).Inc()
}

// JobRan records a scheduled run.
func (m *Metrics) JobRan(name string, err error) {
	m.jobs.WithLabelValues(name, result(err)).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
