package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agentcred/internal/transport/http/shared"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
	"agentcred/pkg/requestcontext"
)

// Service defines the reputation ledger operations the handler exposes.
type Service interface {
	AdjustUser(ctx context.Context, caller, user id.Identity, delta int64) (string, error)
	AdjustAgent(ctx context.Context, caller id.Identity, agentID id.AgentID, delta int64) (string, error)
	UserScore(ctx context.Context, user id.Identity) (int64, error)
	AgentScore(ctx context.Context, agentID id.AgentID) (int64, error)
}

// Handler handles reputation endpoints.
type Handler struct {
	reputation Service
	logger     *slog.Logger
}

func New(reputation Service, logger *slog.Logger) *Handler {
	return &Handler{reputation: reputation, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/reputation/users/{identity}", h.handleUserScore)
	r.Get("/reputation/agents/{agentID}", h.handleAgentScore)
	r.Post("/reputation/users/{identity}/adjust", h.handleAdjustUser)
	r.Post("/reputation/agents/{agentID}/adjust", h.handleAdjustAgent)
}

type adjustRequest struct {
	Delta int64 `json:"delta"`
}

type scoreResponse struct {
	Subject string `json:"subject"`
	Score   int64  `json:"score"`
}

func (h *Handler) handleUserScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := id.Identity(chi.URLParam(r, "identity"))

	score, err := h.reputation.UserScore(ctx, user)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, scoreResponse{Subject: user.String(), Score: score})
}

func (h *Handler) handleAgentScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, err := shared.AgentIDParam(r, "agentID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	score, err := h.reputation.AgentScore(ctx, agentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, scoreResponse{Subject: agentID.String(), Score: score})
}

func (h *Handler) handleAdjustUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := id.Identity(chi.URLParam(r, "identity"))
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	txID, err := h.reputation.AdjustUser(ctx, requestcontext.Caller(ctx), user, req.Delta)
	if err != nil {
		h.logError(ctx, "user reputation adjustment failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"tx_id": txID})
}

func (h *Handler) handleAdjustAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, err := shared.AgentIDParam(r, "agentID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	txID, err := h.reputation.AdjustAgent(ctx, requestcontext.Caller(ctx), agentID, req.Delta)
	if err != nil {
		h.logError(ctx, "agent reputation adjustment failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"tx_id": txID})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
