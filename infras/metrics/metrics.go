package metrics

import (
	"net/http"

	"pms/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	labelOutcome = "outcome"
	labelMethod  = "method"
	labelRoute   = "route"
	labelStatus  = "status"

	OutcomeFull    = "full"
	OutcomePartial = "partial"
	OutcomeEmpty   = "empty"
)

// Metrics owns a private registry so tests and multiple binaries never clash
// on the global default registerer.
type Metrics struct {
	registry *prometheus.Registry

	allocations       *prometheus.CounterVec
	allocationRooms   prometheus.Histogram
	shortfallGuests   prometheus.Counter
	confirmations     prometheus.Counter
	confirmedBookings prometheus.Counter
	cancellations     prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New(cfg *config.Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	namespace := cfg.Metrics.Namespace

	return &Metrics{
		registry: registry,
		allocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_allocations_total",
			Help:      "Count of group room allocations by outcome.",
		}, []string{labelOutcome}),
		allocationRooms: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "group_allocation_rooms",
			Help:      "Rooms used per group allocation.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		shortfallGuests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_allocation_shortfall_guests_total",
			Help:      "Guests left without a room by partial allocations.",
		}),
		confirmations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_confirmations_total",
			Help:      "Count of confirmed group bookings.",
		}),
		confirmedBookings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_confirmed_room_bookings_total",
			Help:      "Count of room bookings created by group confirmations.",
		}),
		cancellations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_cancellations_total",
			Help:      "Count of cancelled group bookings.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route and status.",
		}, []string{labelMethod, labelRoute, labelStatus}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{labelMethod, labelRoute}),
	}
}

func (m *Metrics) ObserveAllocation(rooms, shortfall int) {
	outcome := OutcomeFull

	switch {
	case rooms == 0:
		outcome = OutcomeEmpty
	case shortfall > 0:
		outcome = OutcomePartial
	}

	m.allocations.WithLabelValues(outcome).Inc()
	m.allocationRooms.Observe(float64(rooms))
	m.shortfallGuests.Add(float64(shortfall))
}

func (m *Metrics) ObserveConfirmation(bookings int) {
	m.confirmations.Inc()
	m.confirmedBookings.Add(float64(bookings))
}

func (m *Metrics) ObserveCancellation() {
	m.cancellations.Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
