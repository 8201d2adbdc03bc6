package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"metapanel/internal/feed"
	"metapanel/internal/panel"
	"metapanel/internal/panel/render"
	"metapanel/internal/platform/middleware"
	"metapanel/internal/ratelimit"
	"metapanel/internal/session/models"
	"metapanel/internal/session/service"
	"metapanel/pkg/platform/httputil"
	"metapanel/pkg/platform/sentinel"
)

const (
	maxEventBytes = 64 << 10
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
)

// Stream frame types.
const (
	FrameSnapshot   = "snapshot"
	FrameDirectives = "directives"
)

// Service defines the session operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, tags []string) (*models.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	List(ctx context.Context) ([]*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Apply(ctx context.Context, id uuid.UUID, ev panel.Event) (*models.Update, error)
	Reset(ctx context.Context, id uuid.UUID) (*models.Update, error)
	Mute(ctx context.Context, id uuid.UUID, slot int, on bool) (*models.Update, error)
	Snapshot(ctx context.Context, id uuid.UUID) (*models.Snapshot, error)
	Subscribe(ctx context.Context, id uuid.UUID) (*service.Subscription, error)
}

// Handler serves the session endpoints.
type Handler struct {
	logger   *slog.Logger
	sessions Service
	limiter  *ratelimit.Window
	upgrader websocket.Upgrader
}

type Option func(*Handler)

// WithRateLimit caps metadata posts per session.
func WithRateLimit(limiter *ratelimit.Window) Option {
	return func(h *Handler) {
		h.limiter = limiter
	}
}

func New(sessions Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the session routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.With(middleware.ContentTypeJSON).Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleSnapshot)
			r.Delete("/", h.handleDelete)
			r.With(
				middleware.ContentTypeJSON,
				ratelimit.Middleware(h.limiter, h.rateLimitKey, h.logger),
			).Post("/metadata", h.handleMetadata)
			r.Post("/reset", h.handleReset)
			r.With(middleware.ContentTypeJSON).Post("/dmr/slots/{slot}/mute", h.handleMute)
			r.Get("/stream", h.handleStream)
		})
	})
}

type createRequest struct {
	Panels []string `json:"panels"`
}

type listResponse struct {
	Sessions []*models.Session `json:"sessions"`
}

type muteRequest struct {
	Muted *bool `json:"muted"`
}

// Frame is one websocket message of a session stream.
type Frame struct {
	Type       string             `json:"type"`
	Directives []render.Directive `json:"directives"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, httputil.BadRequest("invalid request body"))
		return
	}
	session, err := h.sessions.Create(ctx, req.Panels)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Sessions: sessions})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.sessions.Snapshot(r.Context(), id)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	if h.limiter != nil {
		h.limiter.Forget(id.String())
	}
	w.WriteHeader(http.StatusNoContent)
}

// rateLimitKey keys the metadata limit by session. Malformed or unknown ids
// get no key and are rejected by the handler without touching the limiter.
func (h *Handler) rateLimitKey(r *http.Request) string {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return ""
	}
	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		return ""
	}
	return id.String()
}

func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		httputil.WriteError(w, httputil.BadRequest("request body too large"))
		return
	}
	ev, err := feed.Decode(body)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid metadata request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		if errors.Is(err, feed.ErrNotMetadata) {
			httputil.WriteError(w, httputil.BadRequest("message is not metadata"))
			return
		}
		httputil.WriteError(w, httputil.BadRequest("invalid metadata event"))
		return
	}
	update, err := h.sessions.Apply(ctx, id, ev)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, update)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	update, err := h.sessions.Reset(r.Context(), id)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, update)
}

func (h *Handler) handleMute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		httputil.WriteError(w, httputil.BadRequest("slot must be an integer"))
		return
	}
	var req muteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&req); err != nil || req.Muted == nil {
		httputil.WriteError(w, httputil.BadRequest(`body must be {"muted": bool}`))
		return
	}
	update, err := h.sessions.Mute(ctx, id, slot, *req.Muted)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, update)
}

// handleStream upgrades to a websocket. The first frame rebuilds the current
// document, later frames carry each directive batch as it is rendered.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sub, err := h.sessions.Subscribe(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed", "session_id", id, "error", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go h.readPump(conn, done)

	if err := writeFrame(conn, Frame{Type: FrameSnapshot, Directives: sub.Initial}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case batch, ok := <-sub.C:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := writeFrame(conn, Frame{Type: FrameDirectives, Directives: batch}); err != nil {
				h.logger.DebugContext(ctx, "stream write failed", "session_id", id, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// readPump consumes control frames until the peer goes away.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	if f.Directives == nil {
		f.Directives = []render.Directive{}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownPanel), errors.Is(err, service.ErrUnknownSlot):
		httputil.WriteError(w, httputil.BadRequest(err.Error()))
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrInvalidState):
		httputil.WriteError(w, err)
	default:
		h.logger.ErrorContext(ctx, "session request failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, httputil.BadRequest("invalid session id"))
		return uuid.Nil, false
	}
	return id, true
}
