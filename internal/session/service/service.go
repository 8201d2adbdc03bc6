package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"metapanel/internal/panel"
	"metapanel/internal/panel/render"
	"metapanel/internal/session/metrics"
	"metapanel/internal/session/models"
	"metapanel/pkg/platform/sentinel"
)

var (
	ErrUnknownPanel = errors.New("unknown panel tag")
	ErrUnknownSlot  = errors.New("unknown timeslot")
	ErrNoDMRPanel   = fmt.Errorf("%w: session has no dmr panel", sentinel.ErrInvalidState)
)

// DefaultStreamBuffer is how many directive batches a subscriber may lag
// behind before it is dropped.
const DefaultStreamBuffer = 64

type Store interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Execute(ctx context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Session, error)
}

// Service owns the viewer sessions and feeds metadata events into their
// panels.
type Service struct {
	store    Store
	registry panel.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	buffer   int

	mu    sync.RWMutex
	views map[uuid.UUID]*view
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRegistry sets the panels a session may mount.
func WithRegistry(registry panel.Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithStreamBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: panel.DefaultRegistry(),
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		buffer:   DefaultStreamBuffer,
		views:    make(map[uuid.UUID]*view),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a session with one panel per tag. No tags mounts every
// registered panel.
func (s *Service) Create(ctx context.Context, tags []string) (*models.Session, error) {
	registry := s.registry
	if len(tags) > 0 {
		for _, tag := range tags {
			if _, ok := s.registry[tag]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, tag)
			}
		}
		registry = s.registry.Only(tags...)
	}

	id := uuid.New()
	v := newView(registry, s.buffer, s.logger.With("session_id", id))
	now := s.now()
	session := &models.Session{
		ID:        id,
		Elements:  v.dispatcher.Elements(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.mu.Lock()
	s.views[id] = v
	s.mu.Unlock()

	s.metrics.SessionOpened()
	s.logger.InfoContext(ctx, "session created", "session_id", id, "elements", session.Elements)
	return session, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Session, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Delete closes a session and every stream attached to it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("failed to delete session: %w", sentinel.ErrNotFound)
	}

	v.mu.Lock()
	v.close()
	v.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.metrics.SessionClosed()
	s.logger.InfoContext(ctx, "session deleted", "session_id", id)
	return nil
}

// Apply offers ev to every panel of the session and returns the directives
// it produced.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, ev panel.Event) (*models.Update, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	v.mu.Lock()
	handled := v.dispatcher.Broadcast(ev)
	out, dropped := v.flush()
	muted := v.muted()
	v.mu.Unlock()

	s.observe(ctx, id, string(ev.Protocol), handled, out, dropped, start)
	if _, err := s.store.Execute(ctx, id, func(rec *models.Session) error {
		rec.Touch(s.now())
		rec.Muted = muted
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return &models.Update{Handled: handled, Directives: out}, nil
}

// Broadcast applies ev to every open session and returns how many of them
// had a panel that acted on it.
func (s *Service) Broadcast(ctx context.Context, ev panel.Event) (int, error) {
	s.mu.RLock()
	ids := make([]uuid.UUID, 0, len(s.views))
	for id := range s.views {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		update, err := s.Apply(ctx, id, ev)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if len(update.Handled) > 0 {
			n++
		}
	}
	return n, nil
}

// Reset clears every panel of the session, as when the receiver stops
// decoding.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (*models.Update, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.dispatcher.Clear()
	out, dropped := v.flush()
	muted := v.muted()
	v.mu.Unlock()

	s.countDirectives(out)
	s.dropped(ctx, id, dropped)
	if err := s.saveMuted(ctx, id, muted); err != nil {
		return nil, err
	}
	return &models.Update{Directives: out}, nil
}

// Mute toggles the muted marker of a DMR timeslot.
func (s *Service) Mute(ctx context.Context, id uuid.UUID, slot int, on bool) (*models.Update, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	dmr, ok := v.dmr()
	if !ok {
		v.mu.Unlock()
		return nil, ErrNoDMRPanel
	}
	if !dmr.Mute(slot, on) {
		v.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	out, dropped := v.flush()
	muted := v.muted()
	v.mu.Unlock()

	s.countDirectives(out)
	s.dropped(ctx, id, dropped)
	if err := s.saveMuted(ctx, id, muted); err != nil {
		return nil, err
	}
	return &models.Update{Handled: []string{panel.ElementID("dmr")}, Directives: out}, nil
}

// saveMuted records which timeslots the DMR panel shows as muted.
func (s *Service) saveMuted(ctx context.Context, id uuid.UUID, muted []int) error {
	if _, err := s.store.Execute(ctx, id, func(rec *models.Session) error {
		rec.Muted = muted
		rec.UpdatedAt = s.now()
		return nil
	}); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (s *Service) Snapshot(ctx context.Context, id uuid.UUID) (*models.Snapshot, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return &models.Snapshot{
		Session:  *session,
		Panels:   v.dispatcher.States(),
		Document: v.document.Snapshot(),
	}, nil
}

// Subscription streams the directive batches of one session. Initial
// rebuilds the current document; C is closed when the subscriber is dropped
// or the session is deleted.
type Subscription struct {
	Initial []render.Directive
	C       <-chan []render.Directive

	once   sync.Once
	cancel func()
}

// Close detaches the subscription. It is safe to call more than once.
func (sub *Subscription) Close() {
	sub.once.Do(sub.cancel)
}

func (s *Service) Subscribe(_ context.Context, id uuid.UUID) (*Subscription, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	subID, initial, ch := v.subscribe()
	v.mu.Unlock()

	return &Subscription{
		Initial: initial,
		C:       ch,
		cancel: func() {
			v.mu.Lock()
			v.unsubscribe(subID)
			v.mu.Unlock()
		},
	}, nil
}

// Close deletes every open session.
func (s *Service) Close(ctx context.Context) {
	s.mu.RLock()
	ids := make([]uuid.UUID, 0, len(s.views))
	for id := range s.views {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to close session", "session_id", id, "error", err)
		}
	}
}

func (s *Service) view(id uuid.UUID) (*view, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[id]
	if !ok {
		return nil, fmt.Errorf("failed to load session: %w", sentinel.ErrNotFound)
	}
	return v, nil
}

func (s *Service) observe(ctx context.Context, id uuid.UUID, protocol string, handled []string, out []render.Directive, dropped int, start time.Time) {
	s.metrics.ObserveEvent(protocol, len(handled) > 0, start)
	s.countDirectives(out)
	s.dropped(ctx, id, dropped)
}

func (s *Service) countDirectives(out []render.Directive) {
	if s.metrics == nil {
		return
	}
	counts := make(map[render.Op]int, 3)
	for _, d := range out {
		counts[d.Op]++
	}
	for op, n := range counts {
		s.metrics.AddDirectives(string(op), n)
	}
}

func (s *Service) dropped(ctx context.Context, id uuid.UUID, n int) {
	for range n {
		s.metrics.StreamDropped()
	}
	if n > 0 {
		s.logger.WarnContext(ctx, "dropped slow stream subscribers", "session_id", id, "count", n)
	}
}
