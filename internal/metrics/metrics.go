package metrics

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
)

type Metrics struct {
	registry *prometheus.Registry

	events   *prometheus.CounterVec
	failures *prometheus.CounterVec
	active   prometheus.Gauge
	requests *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "events_total",
			Help:      "Marketplace events by type.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "failures_total",
			Help:      "Refused marketplace operations by error kind.",
		}, []string{"kind"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marketplace",
			Name:      "active_listings",
			Help:      "Listings currently open for sale.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(
		m.events,
		m.failures,
		m.active,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Listen(events *event.Manager) {
	for _, eventType := range event.AllEvents {
		events.AddEventListener(eventType, m.Observe)
	}
}

func (m *Metrics) Observe(msg interface{}) {
	ev, ok := msg.(entity.ListingEvent)
	if !ok {
		return
	}

	m.events.WithLabelValues(ev.Type).Inc()

	switch event.Type(ev.Type) {
	case event.ListingCreatedEvent:
		m.active.Inc()
	case event.ListingSoldEvent, event.ListingRetiredEvent:
		m.active.Dec()
	}
}

func (m *Metrics) SetActive(count int) {
	m.active.Set(float64(count))
}

func (m *Metrics) Failure(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, seconds float64) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Observe(seconds)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
