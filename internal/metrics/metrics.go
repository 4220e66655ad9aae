package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "schedule"

// Label values used across collectors.
const (
	ResultSuccess = "success"
	ResultError   = "error"

	ChangesYes = "changes"
	ChangesNo  = "no_changes"
	ChangesNA  = "n/a"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	eventsTotal          prometheus.Counter
	scheduleUpdates      *prometheus.CounterVec
	timeToNextEvent      prometheus.Gauge
	announcementsTotal   *prometheus.CounterVec
	adapterRequests      *prometheus.CounterVec
	adapterUpstreamFails prometheus.Counter
}

// New creates the collectors on a dedicated registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "announcer",
			Name:      "events_total",
			Help:      "Events delivered by the announcer.",
		}),
		scheduleUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "announcer",
			Name:      "schedule_updates_total",
			Help:      "Schedule refresh attempts by outcome.",
		}, []string{"result", "changes"}),
		timeToNextEvent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "announcer",
			Name:      "time_to_next_event_seconds",
			Help:      "Seconds the announcer will wait before the next event is due.",
		}),
		announcementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "announcements_total",
			Help:      "Announcements sent to sinks.",
		}, []string{"sink", "size", "result"}),
		adapterRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adapter",
			Name:      "requests_total",
			Help:      "Adapter requests by endpoint.",
		}, []string{"endpoint"}),
		adapterUpstreamFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adapter",
			Name:      "upstream_failures_total",
			Help:      "Failed upstream schedule fetches.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsTotal,
		m.scheduleUpdates,
		m.timeToNextEvent,
		m.announcementsTotal,
		m.adapterRequests,
		m.adapterUpstreamFails,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EventAnnounced counts one delivered event.
func (m *Metrics) EventAnnounced() {
	if m == nil {
		return
	}

	m.eventsTotal.Inc()
}

// ScheduleUpdated counts a refresh attempt.
func (m *Metrics) ScheduleUpdated(result, changes string) {
	if m == nil {
		return
	}

	m.scheduleUpdates.WithLabelValues(result, changes).Inc()
}

// TimeToNextEvent records how long until the next event is due.
func (m *Metrics) TimeToNextEvent(d time.Duration) {
	if m == nil {
		return
	}

	m.timeToNextEvent.Set(d.Seconds())
}

// Announcement counts one publish to a sink, failed when err is not nil.
func (m *Metrics) Announcement(sink, size string, err error) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if err != nil {
		result = ResultError
	}

	m.announcementsTotal.WithLabelValues(sink, size, result).Inc()
}

// AdapterRequest counts one request to endpoint.
func (m *Metrics) AdapterRequest(endpoint string) {
	if m == nil {
		return
	}

	m.adapterRequests.WithLabelValues(endpoint).Inc()
}

// UpstreamFailure counts a failed upstream fetch seen by the adapter.
func (m *Metrics) UpstreamFailure() {
	if m == nil {
		return
	}

	m.adapterUpstreamFails.Inc()
}
