// Package render provides headless Renderer implementations: a directive
// recorder and a document model that tracks what an element tree shows.
package render

import (
	"maps"
	"slices"
	"strings"

	"metapanel/internal/panel"
)

// Op is the kind of render directive.
type Op string

const (
	OpText  Op = "text"
	OpClass Op = "class"
	OpHTML  Op = "html"
)

// Directive is one render side effect addressed to a selector inside an
// element.
type Directive struct {
	Element  string `json:"element,omitempty"`
	Op       Op     `json:"op"`
	Selector string `json:"selector"`
	Value    string `json:"value,omitempty"`
	Class    string `json:"class,omitempty"`
	On       bool   `json:"on,omitempty"`
}

// Recorder appends every call as a Directive. The zero value is usable.
type Recorder struct {
	element    string
	directives *[]Directive
}

// NewRecorder records directives for element.
func NewRecorder(element string) *Recorder {
	return &Recorder{element: element, directives: new([]Directive)}
}

// For returns a recorder for another element that shares this log.
func (r *Recorder) For(element string) *Recorder {
	r.init()
	return &Recorder{element: element, directives: r.directives}
}

func (r *Recorder) init() {
	if r.directives == nil {
		r.directives = new([]Directive)
	}
}

func (r *Recorder) add(d Directive) {
	r.init()
	d.Element = r.element
	*r.directives = append(*r.directives, d)
}

func (r *Recorder) SetText(selector, text string) {
	r.add(Directive{Op: OpText, Selector: selector, Value: text})
}

func (r *Recorder) SetClass(selector, class string, on bool) {
	r.add(Directive{Op: OpClass, Selector: selector, Class: class, On: on})
}

func (r *Recorder) SetHTML(selector, markup string) {
	r.add(Directive{Op: OpHTML, Selector: selector, Value: markup})
}

// Directives returns a copy of the log.
func (r *Recorder) Directives() []Directive {
	r.init()
	return slices.Clone(*r.directives)
}

// Len returns the number of recorded directives.
func (r *Recorder) Len() int {
	r.init()
	return len(*r.directives)
}

// Drain returns the log and empties it.
func (r *Recorder) Drain() []Directive {
	r.init()
	out := *r.directives
	*r.directives = nil
	return out
}

// Node is what one selector inside an element currently shows.
type Node struct {
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

type node struct {
	text    string
	html    string
	classes map[string]struct{}
}

// Document is an in-memory element tree keyed by element and selector. It is
// not safe for concurrent use.
type Document struct {
	elements map[string]map[string]*node
}

func NewDocument() *Document {
	return &Document{elements: make(map[string]map[string]*node)}
}

func (d *Document) node(element, selector string) *node {
	nodes, ok := d.elements[element]
	if !ok {
		nodes = make(map[string]*node)
		d.elements[element] = nodes
	}
	n, ok := nodes[selector]
	if !ok {
		n = &node{classes: make(map[string]struct{})}
		nodes[selector] = n
	}
	return n
}

// Apply replays directives onto the document.
func (d *Document) Apply(directives ...Directive) {
	for _, dir := range directives {
		n := d.node(dir.Element, dir.Selector)
		switch dir.Op {
		case OpText:
			n.text = dir.Value
		case OpHTML:
			n.html = dir.Value
		case OpClass:
			for _, c := range strings.Fields(dir.Class) {
				if dir.On {
					n.classes[c] = struct{}{}
				} else {
					delete(n.classes, c)
				}
			}
		}
	}
}

// Element returns a Renderer writing straight into the document.
func (d *Document) Element(element string) panel.Renderer {
	return elementWriter{doc: d, element: element}
}

// Text returns the text shown at selector, or "".
func (d *Document) Text(element, selector string) string {
	if n, ok := d.elements[element][selector]; ok {
		return n.text
	}
	return ""
}

// HTML returns the markup shown at selector, or "".
func (d *Document) HTML(element, selector string) string {
	if n, ok := d.elements[element][selector]; ok {
		return n.html
	}
	return ""
}

// HasClass reports whether selector carries class.
func (d *Document) HasClass(element, selector, class string) bool {
	n, ok := d.elements[element][selector]
	if !ok {
		return false
	}
	_, on := n.classes[class]
	return on
}

// Snapshot returns every non-empty node, per element and selector.
func (d *Document) Snapshot() map[string]map[string]Node {
	out := make(map[string]map[string]Node, len(d.elements))
	for element, nodes := range d.elements {
		for selector, n := range nodes {
			if n.text == "" && n.html == "" && len(n.classes) == 0 {
				continue
			}
			if out[element] == nil {
				out[element] = make(map[string]Node)
			}
			out[element][selector] = Node{
				Text:    n.text,
				HTML:    n.html,
				Classes: slices.Sorted(maps.Keys(n.classes)),
			}
		}
	}
	return out
}

// Directives rebuilds the document as directives, sorted by element and
// selector, so a fresh view can be brought up to date.
func (d *Document) Directives() []Directive {
	var out []Directive
	snap := d.Snapshot()
	for _, element := range slices.Sorted(maps.Keys(snap)) {
		nodes := snap[element]
		for _, selector := range slices.Sorted(maps.Keys(nodes)) {
			n := nodes[selector]
			if n.Text != "" {
				out = append(out, Directive{Element: element, Op: OpText, Selector: selector, Value: n.Text})
			}
			if n.HTML != "" {
				out = append(out, Directive{Element: element, Op: OpHTML, Selector: selector, Value: n.HTML})
			}
			for _, c := range n.Classes {
				out = append(out, Directive{Element: element, Op: OpClass, Selector: selector, Class: c, On: true})
			}
		}
	}
	return out
}

type elementWriter struct {
	doc     *Document
	element string
}

func (w elementWriter) SetText(selector, text string) {
	w.doc.Apply(Directive{Element: w.element, Op: OpText, Selector: selector, Value: text})
}

func (w elementWriter) SetClass(selector, class string, on bool) {
	w.doc.Apply(Directive{Element: w.element, Op: OpClass, Selector: selector, Class: class, On: on})
}

func (w elementWriter) SetHTML(selector, markup string) {
	w.doc.Apply(Directive{Element: w.element, Op: OpHTML, Selector: selector, Value: markup})
}

// Tee fans every call out to all renderers in order.
func Tee(renderers ...panel.Renderer) panel.Renderer {
	return tee(renderers)
}

type tee []panel.Renderer

func (t tee) SetText(selector, text string) {
	for _, r := range t {
		r.SetText(selector, text)
	}
}

func (t tee) SetClass(selector, class string, on bool) {
	for _, r := range t {
		r.SetClass(selector, class, on)
	}
}

func (t tee) SetHTML(selector, markup string) {
	for _, r := range t {
		r.SetHTML(selector, markup)
	}
}
