package panel

import (
	"html"
	"net/url"
	"strings"
)

// Location is the memoized outcome of a location check. The identity is part
// of the memo because the rendered link points at it.
type Location struct {
	Known    bool   `json:"known"`
	Identity string `json:"identity,omitempty"`
}

// HasLocation reports whether a position should be shown: both coordinates
// and the identity must be present. A zero coordinate counts as missing.
func HasLocation(lat, lon *float64, identity string) bool {
	return present(lat) && present(lon) && identity != ""
}

func present(v *float64) bool {
	return v != nil && *v != 0
}

// MapLink renders the map pin markup for a callsign.
func MapLink(identity string) string {
	href := "map?callsign=" + escapeComponent(identity)
	return `<a class="openwebrx-maps-pin" href="` + html.EscapeString(href) + `" target="_blank">` +
		`<svg viewBox="0 0 20 35"><use xlink:href="static/gfx/svg-defs.svg#maps-pin"></use></svg></a>`
}

// componentUnescaper turns url.QueryEscape output into encodeURIComponent
// output: spaces are %20 and !'()* stay literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// locationField renders the location indicator of one panel or slot.
type locationField struct {
	selector string
	memo     Location
}

func (l *locationField) set(r Renderer, lat, lon *float64, identity string) bool {
	next := Location{Known: HasLocation(lat, lon, identity), Identity: identity}
	if next == l.memo {
		return false
	}
	l.memo = next
	markup := ""
	if next.Known {
		markup = MapLink(identity)
	}
	r.SetHTML(l.selector, markup)
	return true
}

func (l *locationField) clear(r Renderer) bool {
	return l.set(r, nil, nil, "")
}
