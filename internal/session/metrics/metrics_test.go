package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEventFoldsUnknownProtocols(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())
	start := time.Now()

	for i := range 500 {
		m.ObserveEvent(fmt.Sprintf("junk%d", i), false, start)
	}
	m.ObserveEvent("DMR", true, start)
	m.ObserveEvent("", false, start)

	assert.Equal(t, 3, testutil.CollectAndCount(m.EventsTotal))
	assert.InDelta(t, 500, testutil.ToFloat64(m.EventsTotal.WithLabelValues("other", "ignored")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EventsTotal.WithLabelValues("DMR", "handled")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EventsTotal.WithLabelValues("none", "ignored")), 0)
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionOpened()
		m.ObserveEvent("DMR", true, time.Now())
		m.AddDirectives("text", 2)
		m.StreamDropped()
		m.SessionClosed()
	})
}
