package ratelimit

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestWindowSlides(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	w := NewWindow(2, time.Second, WithClock(c.now))

	first := w.Allow("a")
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	c.t = c.t.Add(400 * time.Millisecond)
	assert.True(t, w.Allow("a").Allowed)

	denied := w.Allow("a")
	assert.False(t, denied.Allowed)
	assert.Equal(t, 600*time.Millisecond, denied.RetryAfter)

	assert.True(t, w.Allow("b").Allowed, "keys are independent")

	c.t = c.t.Add(600 * time.Millisecond)
	assert.True(t, w.Allow("a").Allowed, "oldest call left the window")

	w.Forget("a")
	assert.Equal(t, 1, w.Allow("a").Remaining)
}

func TestWindowSweepsIdleKeys(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	w := NewWindow(5, time.Minute, WithClock(c.now))

	for i := range 10000 {
		w.Allow(fmt.Sprintf("session-%d", i))
	}
	require.Equal(t, 10000, w.Len())

	c.t = c.t.Add(30 * time.Second)
	w.Allow("fresh")
	assert.Equal(t, 10001, w.Len(), "keys inside the window are kept")

	c.t = c.t.Add(time.Hour)
	w.Allow("fresh")
	assert.Equal(t, 1, w.Len())
}

func TestMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWindow(1, time.Minute)
	h := Middleware(w, func(r *http.Request) string {
		return r.URL.Query().Get("session")
	}, logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(url string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, url, nil))
		return rr
	}

	rr := do("/?session=s1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = do("/?session=s1")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate_limit_exceeded","error_description":"too many metadata events for this session","retry_after":60}`, rr.Body.String())

	assert.Equal(t, http.StatusOK, do("/").Code, "no key means no limit")

	unlimited := Middleware(nil, nil, logger)(http.NotFoundHandler())
	rr = httptest.NewRecorder()
	unlimited.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
