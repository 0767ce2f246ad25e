package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agentcred/internal/events"
	"agentcred/internal/transport/http/shared"
)

// Service defines the event log read surface.
type Service interface {
	ListRecent(ctx context.Context, limit int) ([]events.Event, error)
	ListByAgent(ctx context.Context, agentID int64) ([]events.Event, error)
}

// Handler exposes the append-only event log for observers.
type Handler struct {
	events Service
	logger *slog.Logger
}

func New(events Service, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/events", h.handleListRecent)
	r.Get("/events/agents/{agentID}", h.handleListByAgent)
}

func (h *Handler) handleListRecent(w http.ResponseWriter, r *http.Request) {
	evts, err := h.events.ListRecent(r.Context(), shared.LimitQuery(r, 100))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if evts == nil {
		evts = []events.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, evts)
}

func (h *Handler) handleListByAgent(w http.ResponseWriter, r *http.Request) {
	agentID, err := shared.AgentIDParam(r, "agentID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	evts, err := h.events.ListByAgent(r.Context(), int64(agentID))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if evts == nil {
		evts = []events.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, evts)
}
