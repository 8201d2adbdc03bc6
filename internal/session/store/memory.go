package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"metapanel/internal/session/models"
	"metapanel/pkg/platform/sentinel"
)

// InMemory keeps session records in a map. Records are copied in and out so
// callers never share the stored value.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[uuid.UUID]models.Session)}
}

func (s *InMemory) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = clone(*session)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(session)
	return &out, nil
}

// Execute applies fn to the stored record under the write lock. The record is
// saved only when fn returns nil.
func (s *InMemory) Execute(_ context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	work := clone(session)
	if err := fn(&work); err != nil {
		return nil, err
	}
	s.sessions[id] = work
	out := clone(work)
	return &out, nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns every record, oldest first.
func (s *InMemory) List(_ context.Context) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		c := clone(session)
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func clone(s models.Session) models.Session {
	s.Elements = slices.Clone(s.Elements)
	s.Muted = slices.Clone(s.Muted)
	return s
}
