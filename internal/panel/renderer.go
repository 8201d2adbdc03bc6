package panel

// Renderer is the output side of a panel. Selectors address sub-elements of
// the panel element; see selectors.go.
type Renderer interface {
	SetText(selector, text string)
	SetClass(selector, class string, on bool)
	SetHTML(selector, markup string)
}

// Scope prefixes every selector with root, so a slot can render into its own
// subtree of a shared panel element.
func Scope(r Renderer, root string) Renderer {
	return scoped{next: r, root: root}
}

type scoped struct {
	next Renderer
	root string
}

func (s scoped) path(selector string) string {
	if selector == "" {
		return s.root
	}
	return s.root + " " + selector
}

func (s scoped) SetText(selector, text string) {
	s.next.SetText(s.path(selector), text)
}

func (s scoped) SetClass(selector, class string, on bool) {
	s.next.SetClass(s.path(selector), class, on)
}

func (s scoped) SetHTML(selector, markup string) {
	s.next.SetHTML(s.path(selector), markup)
}

// Discard is a Renderer that drops everything.
var Discard Renderer = discard{}

type discard struct{}

func (discard) SetText(string, string)        {}
func (discard) SetClass(string, string, bool) {}
func (discard) SetHTML(string, string)        {}
