package metrics

import (
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"metapanel/internal/panel"
)

// protocols bounds the protocol label. Any other value is counted as "other".
var protocols = []string{
	panel.ProtocolDMR,
	panel.ProtocolYSF,
	panel.ProtocolDStar,
	panel.ProtocolNXDN,
	panel.ProtocolM17,
}

// Metrics provides observability for viewer sessions.
// A nil *Metrics records nothing.
type Metrics struct {
	SessionsActive   prometheus.Gauge
	EventsTotal      *prometheus.CounterVec
	DirectivesTotal  *prometheus.CounterVec
	StreamDropsTotal prometheus.Counter
	ApplyDuration    prometheus.Histogram
}

// New registers the session metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the session metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "metapanel_sessions_active",
			Help: "Number of open viewer sessions",
		}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metapanel_events_total",
			Help: "Metadata events applied to sessions, by protocol and outcome",
		}, []string{"protocol", "outcome"}),
		DirectivesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "metapanel_directives_total",
			Help: "Render directives emitted, by operation",
		}, []string{"op"}),
		StreamDropsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "metapanel_stream_drops_total",
			Help: "Stream subscribers dropped for falling behind",
		}),
		ApplyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "metapanel_apply_duration_seconds",
			Help:    "Duration of applying one event to one session",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// ObserveEvent records one applied event. handled is false when no panel of
// the session acted on it.
func (m *Metrics) ObserveEvent(protocol string, handled bool, start time.Time) {
	if m == nil {
		return
	}
	outcome := "ignored"
	if handled {
		outcome = "handled"
	}
	m.EventsTotal.WithLabelValues(protocolLabel(protocol), outcome).Inc()
	m.ApplyDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddDirectives(op string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DirectivesTotal.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) StreamDropped() {
	if m == nil {
		return
	}
	m.StreamDropsTotal.Inc()
}

func protocolLabel(protocol string) string {
	switch {
	case protocol == "":
		return "none"
	case slices.Contains(protocols, protocol):
		return protocol
	}
	return "other"
}
