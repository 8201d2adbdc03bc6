package service

import (
	"log/slog"
	"slices"
	"sync"

	"metapanel/internal/panel"
	"metapanel/internal/panel/render"
)

// view is the live side of a session: the panels, the directive log they
// write to, and the document those directives build. All access goes
// through mu.
type view struct {
	mu         sync.Mutex
	dispatcher *panel.Dispatcher
	recorder   *render.Recorder
	document   *render.Document
	subs       map[uint64]chan []render.Directive
	nextSub    uint64
	buffer     int
	closed     bool
}

func newView(registry panel.Registry, buffer int, logger *slog.Logger) *view {
	v := &view{
		recorder: render.NewRecorder(""),
		document: render.NewDocument(),
		subs:     make(map[uint64]chan []render.Directive),
		buffer:   buffer,
	}
	v.dispatcher = panel.NewDispatcher(registry, func(id string) panel.Renderer {
		return render.Tee(v.recorder.For(id), v.document.Element(id))
	}, panel.WithLogger(logger))
	v.dispatcher.MountRegistry()
	return v
}

func (v *view) mounted(elementID string) bool {
	return slices.Contains(v.dispatcher.Elements(), elementID)
}

// dmr returns the DMR panel if the session mounted one.
func (v *view) dmr() (*panel.DMRPanel, bool) {
	element := panel.ElementID("dmr")
	if !v.mounted(element) {
		return nil, false
	}
	p, ok := v.dispatcher.Panel(element).(*panel.DMRPanel)
	return p, ok
}

// muted lists the DMR timeslots that currently show the muted marker.
func (v *view) muted() []int {
	p, ok := v.dmr()
	if !ok {
		return nil
	}
	var out []int
	for i, st := range p.Slots().States() {
		if st.Muted {
			out = append(out, i)
		}
	}
	return out
}

// flush drains pending directives and hands them to every subscriber. A
// subscriber whose buffer is full is closed and reported in dropped.
// Callers hold mu.
func (v *view) flush() (out []render.Directive, dropped int) {
	out = v.recorder.Drain()
	if len(out) == 0 {
		return out, 0
	}
	for id, ch := range v.subs {
		select {
		case ch <- out:
		default:
			close(ch)
			delete(v.subs, id)
			dropped++
		}
	}
	return out, dropped
}

func (v *view) subscribe() (uint64, []render.Directive, chan []render.Directive) {
	ch := make(chan []render.Directive, v.buffer)
	if v.closed {
		close(ch)
		return 0, nil, ch
	}
	v.nextSub++
	v.subs[v.nextSub] = ch
	return v.nextSub, v.document.Directives(), ch
}

func (v *view) unsubscribe(id uint64) {
	if ch, ok := v.subs[id]; ok {
		close(ch)
		delete(v.subs, id)
	}
}

func (v *view) close() {
	v.closed = true
	for id := range v.subs {
		v.unsubscribe(id)
	}
}
