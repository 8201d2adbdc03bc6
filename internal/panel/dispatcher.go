package panel

import (
	"log/slog"
	"maps"
	"regexp"
	"slices"
)

// ElementPrefix is the identifier prefix of metadata panel elements.
const ElementPrefix = "openwebrx-panel-metadata-"

var elementPattern = regexp.MustCompile(`^openwebrx-panel-metadata-([a-z0-9]+)$`)

// Registry maps a lowercase protocol tag to the panel constructor for it.
// It is read-only once handed to a Dispatcher.
type Registry map[string]Constructor

// DefaultRegistry returns the five protocol panels.
func DefaultRegistry() Registry {
	return Registry{
		"dmr":   NewDMRPanel,
		"ysf":   NewYSFPanel,
		"dstar": NewDStarPanel,
		"nxdn":  NewNXDNPanel,
		"m17":   NewM17Panel,
	}
}

// Only returns a copy of the registry restricted to tags. Unknown tags are
// skipped.
func (r Registry) Only(tags ...string) Registry {
	out := make(Registry, len(tags))
	for _, tag := range tags {
		if c, ok := r[tag]; ok {
			out[tag] = c
		}
	}
	return out
}

// Tags lists the registered tags in sorted order.
func (r Registry) Tags() []string {
	return slices.Sorted(maps.Keys(r))
}

// ElementID returns the element identifier for a protocol tag.
func ElementID(tag string) string {
	return ElementPrefix + tag
}

// TagOf extracts the protocol tag from an element identifier.
func TagOf(elementID string) (string, bool) {
	m := elementPattern.FindStringSubmatch(elementID)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MountFunc binds an element identifier to the Renderer for that element.
type MountFunc func(elementID string) Renderer

// Dispatcher owns one panel per element identifier, created on first use.
// It is not safe for concurrent use.
type Dispatcher struct {
	registry Registry
	mount    MountFunc
	panels   map[string]Panel
	order    []string
	logger   *slog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher copies registry so later changes by the caller are not seen.
// A nil mount renders nowhere.
func NewDispatcher(registry Registry, mount MountFunc, opts ...DispatcherOption) *Dispatcher {
	if mount == nil {
		mount = func(string) Renderer { return Discard }
	}
	d := &Dispatcher{
		registry: maps.Clone(registry),
		mount:    mount,
		panels:   make(map[string]Panel),
	}
	if d.registry == nil {
		d.registry = Registry{}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Panel returns the panel for elementID, building it on first use. Unknown
// identifiers get a BasePanel that ignores every event.
func (d *Dispatcher) Panel(elementID string) Panel {
	if p, ok := d.panels[elementID]; ok {
		return p
	}
	construct := newBase
	if tag, ok := TagOf(elementID); ok {
		if c, ok := d.registry[tag]; ok {
			construct = c
		}
	}
	p := construct(d.mount(elementID))
	d.panels[elementID] = p
	d.order = append(d.order, elementID)
	if d.logger != nil {
		d.logger.Debug("metadata panel mounted", "element", elementID, "modes", p.Modes())
	}
	return p
}

// Mount builds the panels for ids up front, in order.
func (d *Dispatcher) Mount(ids ...string) {
	for _, id := range ids {
		d.Panel(id)
	}
}

// MountRegistry mounts one element per registered tag.
func (d *Dispatcher) MountRegistry() {
	for _, tag := range d.registry.Tags() {
		d.Panel(ElementID(tag))
	}
}

// Route forwards ev to the panel of elementID. It reports whether the panel
// acted on the event.
func (d *Dispatcher) Route(elementID string, ev Event) bool {
	p := d.Panel(elementID)
	if !p.IsSupported(ev) {
		return false
	}
	p.Update(ev)
	return true
}

// Broadcast forwards ev to every mounted panel in mount order and returns
// the identifiers of the panels that acted on it.
func (d *Dispatcher) Broadcast(ev Event) []string {
	var handled []string
	for _, id := range d.order {
		if d.Route(id, ev) {
			handled = append(handled, id)
		}
	}
	if len(handled) == 0 && d.logger != nil {
		d.logger.Debug("metadata event not handled", "protocol", string(ev.Protocol))
	}
	return handled
}

// Clear resets every mounted panel.
func (d *Dispatcher) Clear() {
	for _, id := range d.order {
		d.panels[id].Clear()
	}
}

// Elements lists mounted identifiers in mount order.
func (d *Dispatcher) Elements() []string {
	return slices.Clone(d.order)
}

// States snapshots every mounted panel.
func (d *Dispatcher) States() map[string]State {
	out := make(map[string]State, len(d.panels))
	for id, p := range d.panels {
		out[id] = p.State()
	}
	return out
}
