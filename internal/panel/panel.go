// Package panel renders digital voice metadata into per-protocol panels.
//
// Each panel owns a fixed field schema and memoizes what it last rendered, so
// an incoming Event only produces Renderer calls for fields that changed.
// Panels are not safe for concurrent use; callers feed events one at a time.
package panel

import (
	"slices"
)

// Field names used in State.Fields.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldTarget      = "target"
	FieldMode        = "mode"
	FieldSource      = "source"
	FieldUp          = "up"
	FieldDown        = "down"
	FieldOurCall     = "ourcall"
	FieldYourCall    = "yourcall"
	FieldDeparture   = "departure"
	FieldDestination = "destination"
	FieldMessage     = "message"
)

// Panel is one metadata panel bound to a Renderer.
type Panel interface {
	// Modes lists the protocol tags the panel acts on.
	Modes() []string
	IsSupported(ev Event) bool
	// Update applies ev. Events for other protocols are ignored.
	Update(ev Event)
	// Clear resets every field to absent.
	Clear()
	State() State
}

// Constructor builds a panel rendering into r.
type Constructor func(r Renderer) Panel

// State is a snapshot of what a panel currently shows.
type State struct {
	Protocol string            `json:"protocol,omitempty"`
	Active   bool              `json:"active"`
	Data     bool              `json:"data,omitempty"`
	Sync     bool              `json:"sync,omitempty"`
	Muted    bool              `json:"muted,omitempty"`
	Category string            `json:"category,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Location *Location         `json:"location,omitempty"`
	Slots    []State           `json:"slots,omitempty"`
}

type field struct {
	name     string
	selector string
}

// fieldSet holds the memoized render state of one panel or DMR slot. Marker
// classes and the category class are applied to root.
type fieldSet struct {
	r        Renderer
	root     string
	schema   []field
	text     *Memo[string]
	classes  *Memo[bool]
	category string
	location *locationField
}

func newFieldSet(r Renderer, root string, schema []field, locationSelector string) *fieldSet {
	f := &fieldSet{
		r:       r,
		root:    root,
		schema:  schema,
		text:    NewMemo[string](),
		classes: NewMemo[bool](),
	}
	if locationSelector != "" {
		f.location = &locationField{selector: locationSelector}
	}
	return f
}

func (f *fieldSet) selector(name string) string {
	for _, fd := range f.schema {
		if fd.name == name {
			return fd.selector
		}
	}
	return ""
}

func (f *fieldSet) setText(name, value string) {
	if f.text.Set(name, value) {
		f.r.SetText(f.selector(name), value)
	}
}

func (f *fieldSet) setClass(class string, on bool) {
	if f.classes.Set(class, on) {
		f.r.SetClass(f.root, class, on)
	}
}

// setCategory shows value as a class on root when it is one of allowed;
// anything else removes the category.
func (f *fieldSet) setCategory(value string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		value = ""
	}
	if value == f.category {
		return
	}
	if f.category != "" {
		f.r.SetClass(f.root, f.category, false)
	}
	if value != "" {
		f.r.SetClass(f.root, value, true)
	}
	f.category = value
}

func (f *fieldSet) setLocation(lat, lon *float64, identity string) {
	if f.location != nil {
		f.location.set(f.r, lat, lon, identity)
	}
}

// clearFields resets the schema, category and location. Marker classes are
// left to the caller.
func (f *fieldSet) clearFields() {
	for _, fd := range f.schema {
		f.setText(fd.name, "")
	}
	f.setCategory("")
	if f.location != nil {
		f.location.clear(f.r)
	}
}

func (f *fieldSet) state() State {
	st := State{
		Active:   f.classes.Get(ClassActive),
		Sync:     f.classes.Get(ClassSync),
		Category: f.category,
	}
	if f.text.Len() > 0 {
		st.Fields = f.text.Values()
	}
	if f.location != nil && f.location.memo != (Location{}) {
		loc := f.location.memo
		st.Location = &loc
	}
	return st
}

// BasePanel acts on no protocol unless given modes. Unknown element
// identifiers are served by a BasePanel with no modes, which ignores every
// event. Protocol panels embed it for the mode check and the slot markers.
type BasePanel struct {
	modes  []string
	fields *fieldSet
}

// NewBasePanel returns a panel supporting modes that only tracks the shared
// slot markers.
func NewBasePanel(r Renderer, modes ...string) *BasePanel {
	return newBasePanel(r, nil, "", modes...)
}

func newBasePanel(r Renderer, schema []field, locationSelector string, modes ...string) *BasePanel {
	return &BasePanel{
		modes:  modes,
		fields: newFieldSet(r, SelSlot, schema, locationSelector),
	}
}

func (p *BasePanel) Modes() []string {
	return slices.Clone(p.modes)
}

func (p *BasePanel) IsSupported(ev Event) bool {
	return slices.Contains(p.modes, string(ev.Protocol))
}

func (p *BasePanel) Update(Event) {}

// Clear removes the active and sync markers.
func (p *BasePanel) Clear() {
	p.fields.setClass(ClassActive, false)
	p.fields.setClass(ClassSync, false)
}

func (p *BasePanel) State() State {
	st := p.fields.state()
	if len(p.modes) > 0 {
		st.Protocol = p.modes[0]
	}
	return st
}

// clearAll is the shared Clear of the protocol panels.
func (p *BasePanel) clearAll() {
	p.Clear()
	p.fields.clearFields()
}

func newBase(r Renderer) Panel {
	return NewBasePanel(r)
}
