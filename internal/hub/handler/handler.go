// Package handler is the HTTP transport for the hub API. It decodes and
// validates requests, delegates to the service layer, and renders the JSON
// envelopes; no business logic lives here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hubgate/internal/hub/event"
	"hubgate/internal/hub/service"
	"hubgate/internal/platform/config"
	"hubgate/internal/platform/middleware"
	"hubgate/internal/token"
	"hubgate/pkg/apierrors"
	"hubgate/pkg/httputil"
)

// Service defines the hub operations the transport depends on.
type Service interface {
	Ingest(ctx context.Context, tok *token.Token, in event.Input) (event.Event, error)
	List(ctx context.Context, tok *token.Token, q service.ListQuery) (service.Page, error)
}

// Handler serves the /v1/hub routes.
type Handler struct {
	logger    *slog.Logger
	svc       Service
	sources   []config.Source
	appName   string
	env       string
	version   string
	startedAt time.Time
	validator middleware.TokenValidator
	rateLimit func(http.Handler) http.Handler
}

// New creates the hub Handler. rateLimit may be nil to disable throttling
// (tests).
func New(
	svc Service,
	logger *slog.Logger,
	cfg config.Config,
	validator middleware.TokenValidator,
	rateLimit func(http.Handler) http.Handler,
) *Handler {
	return &Handler{
		logger:    logger,
		svc:       svc,
		sources:   cfg.Sources,
		appName:   cfg.AppName,
		env:       cfg.Env,
		version:   cfg.Version,
		startedAt: time.Now(),
		validator: validator,
		rateLimit: rateLimit,
	}
}

// Register mounts the hub routes. Every route requires a valid bearer token
// and sits behind the hub-api rate limit policy; scope checks happen in the
// service layer.
func (h *Handler) Register(r chi.Router) {
	hub := chi.NewRouter()
	hub.Use(middleware.RequireAuth(h.validator, h.logger))
	if h.rateLimit != nil {
		hub.Use(h.rateLimit)
	}

	hub.Get("/info", h.handleInfo)
	hub.Get("/heartbeat", h.handleHeartbeat)
	hub.Get("/sources", h.handleSources)
	hub.Get("/events", h.handleListEvents)
	hub.Post("/events", h.handleCreateEvent)

	r.Mount("/v1/hub", hub)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	httputil.WriteJSON(w, http.StatusOK, infoResponse{
		Name:          h.appName,
		Env:           h.env,
		Version:       h.version,
		UptimeSeconds: int64(now.Sub(h.startedAt).Seconds()),
		Time:          now.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, heartbeatResponse{
		OK: true,
		At: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleSources(w http.ResponseWriter, r *http.Request) {
	sources := h.sources
	if sources == nil {
		sources = []config.Source{}
	}
	httputil.WriteJSON(w, http.StatusOK, sourcesResponse{Data: sources})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok := middleware.GetToken(ctx)
	if tok == nil {
		h.logger.ErrorContext(ctx, "token missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, apierrors.New(apierrors.CodeInternal, "authentication context error"))
		return
	}

	query, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.svc.List(ctx, tok, query)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListResponse(page))
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok := middleware.GetToken(ctx)
	if tok == nil {
		h.logger.ErrorContext(ctx, "token missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, apierrors.New(apierrors.CodeInternal, "authentication context error"))
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create event request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, apierrors.New(apierrors.CodeBadRequest, "invalid request body"))
		return
	}

	input, err := req.toInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stored, err := h.svc.Ingest(ctx, tok, input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCreateResponse(stored))
}
