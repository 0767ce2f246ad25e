package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agentcred/internal/registry"
	"agentcred/internal/transport/http/shared"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
	"agentcred/pkg/requestcontext"
)

// Service defines the agent registry operations the handler exposes.
type Service interface {
	Register(ctx context.Context, owner id.Identity, uri string) (registry.Agent, error)
	Get(ctx context.Context, agentID id.AgentID) (registry.Agent, error)
}

// Handler handles agent registration endpoints.
type Handler struct {
	registry Service
	logger   *slog.Logger
}

func New(reg Service, logger *slog.Logger) *Handler {
	return &Handler{registry: reg, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/agents", h.handleRegister)
	r.Get("/agents/{agentID}", h.handleGet)
}

type registerRequest struct {
	URI string `json:"uri"`
}

type agentResponse struct {
	AgentID int64       `json:"agent_id"`
	Owner   id.Identity `json:"owner"`
	URI     string      `json:"uri"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	agent, err := h.registry.Register(ctx, requestcontext.Caller(ctx), req.URI)
	if err != nil {
		h.logger.WarnContext(ctx, "agent registration failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, agentResponse{
		AgentID: int64(agent.ID),
		Owner:   agent.Owner,
		URI:     agent.URI,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	agentID, err := shared.AgentIDParam(r, "agentID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	agent, err := h.registry.Get(r.Context(), agentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, agentResponse{
		AgentID: int64(agent.ID),
		Owner:   agent.Owner,
		URI:     agent.URI,
	})
}
