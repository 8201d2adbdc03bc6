// Package ratelimit caps how fast a caller may push metadata into a
// session, using a sliding window per key.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Window is an in-memory sliding window limiter keyed by string. It is safe
// for concurrent use.
type Window struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string][]time.Time
	lastSweep time.Time
}

type Option func(*Window)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		w.now = now
	}
}

// NewWindow allows limit calls per key within any span of window.
func NewWindow(limit int, window time.Duration, opts ...Option) *Window {
	w := &Window{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Allow records one call for key if the window has room.
func (w *Window) Allow(key string) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.window)
	if now.Sub(w.lastSweep) >= w.window {
		w.sweep(cutoff)
		w.lastSweep = now
	}
	stamps := expire(w.buckets[key], cutoff)
	if len(stamps) >= w.limit {
		w.buckets[key] = stamps
		resetAt := stamps[0].Add(w.window)
		return Result{
			Limit:      w.limit,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}
	stamps = append(stamps, now)
	w.buckets[key] = stamps
	return Result{
		Allowed:   true,
		Limit:     w.limit,
		Remaining: w.limit - len(stamps),
		ResetAt:   stamps[0].Add(w.window),
	}
}

// Forget drops the history of key, e.g. when its session is deleted.
func (w *Window) Forget(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.buckets, key)
}

// Len returns the number of keys with calls inside the window, as of the
// last sweep.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buckets)
}

// sweep removes keys whose calls have all left the window. Callers hold mu.
func (w *Window) sweep(cutoff time.Time) {
	for key, stamps := range w.buckets {
		if len(expire(stamps, cutoff)) == 0 {
			delete(w.buckets, key)
		}
	}
}

// expire drops timestamps at or before cutoff. stamps is sorted.
func expire(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}
