package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP transport metrics. A nil *Metrics records nothing.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	FeedEvents      *prometheus.CounterVec
}

// New creates and registers the transport metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metapanel_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method, route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		FeedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metapanel_feed_events_total",
			Help: "Metadata events read from the feed, by source",
		}, []string{"source"}),
	}
}

// ObserveRequest records one request. Call with time.Now() taken before the
// handler ran.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// IncrementFeedEvents counts one event delivered by source.
func (m *Metrics) IncrementFeedEvents(source string) {
	if m == nil {
		return
	}
	m.FeedEvents.WithLabelValues(source).Inc()
}
