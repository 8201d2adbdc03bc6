package models

import (
	"time"

	"github.com/google/uuid"

	"metapanel/internal/panel"
	"metapanel/internal/panel/render"
)

// Session is one headless viewer: a set of mounted metadata panels and the
// document they render into.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Elements  []string  `json:"elements"`
	Events    int       `json:"events"`
	Muted     []int     `json:"muted,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch records one applied event.
func (s *Session) Touch(now time.Time) {
	s.Events++
	s.UpdatedAt = now
}

// Snapshot is the full view state of a session.
type Snapshot struct {
	Session  Session                           `json:"session"`
	Panels   map[string]panel.State            `json:"panels"`
	Document map[string]map[string]render.Node `json:"document"`
}

// Update is the outcome of applying one event to a session.
type Update struct {
	Handled    []string           `json:"handled"`
	Directives []render.Directive `json:"directives"`
}
