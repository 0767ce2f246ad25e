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

// Service defines the stake ledger operations the handler exposes.
type Service interface {
	Stake(ctx context.Context, caller id.Identity, agentID id.AgentID, amount int64) (string, error)
	Unstake(ctx context.Context, caller id.Identity, agentID id.AgentID, amount int64) (string, error)
	Slash(ctx context.Context, caller id.Identity, agentID id.AgentID, amount uint64, reason string) (string, error)
	GetStake(ctx context.Context, agentID id.AgentID) (uint64, error)
	GetOwner(ctx context.Context, agentID id.AgentID) (id.Identity, error)
	AccountBalance(ctx context.Context, identity id.Identity) (uint64, error)
}

// Handler handles stake ledger endpoints.
type Handler struct {
	stake  Service
	logger *slog.Logger
}

func New(stake Service, logger *slog.Logger) *Handler {
	return &Handler{stake: stake, logger: logger}
}

// Register registers the stake routes. The router must already authenticate
// callers; handlers read the identity from the request context.
func (h *Handler) Register(r chi.Router) {
	r.Post("/stake", h.handleStake)
	r.Post("/unstake", h.handleUnstake)
	r.Post("/slash", h.handleSlash)
	r.Get("/stake/{agentID}", h.handleGetStake)
	r.Get("/accounts/{identity}/balance", h.handleAccountBalance)
}

type stakeRequest struct {
	AgentID int64 `json:"agent_id"`
	Amount  int64 `json:"amount"`
}

type slashRequest struct {
	AgentID int64  `json:"agent_id"`
	Amount  uint64 `json:"amount"`
	Reason  string `json:"reason"`
}

type txResponse struct {
	TxID string `json:"tx_id"`
}

type positionResponse struct {
	AgentID      int64       `json:"agent_id"`
	Owner        id.Identity `json:"owner,omitempty"`
	StakedAmount uint64      `json:"staked_amount"`
}

func (h *Handler) handleStake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	agentID, err := shared.AgentIDField(req.AgentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	txID, err := h.stake.Stake(ctx, requestcontext.Caller(ctx), agentID, req.Amount)
	if err != nil {
		h.logError(ctx, "stake failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, txResponse{TxID: txID})
}

func (h *Handler) handleUnstake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	agentID, err := shared.AgentIDField(req.AgentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	txID, err := h.stake.Unstake(ctx, requestcontext.Caller(ctx), agentID, req.Amount)
	if err != nil {
		h.logError(ctx, "unstake failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, txResponse{TxID: txID})
}

func (h *Handler) handleSlash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req slashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	agentID, err := shared.AgentIDField(req.AgentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	txID, err := h.stake.Slash(ctx, requestcontext.Caller(ctx), agentID, req.Amount, req.Reason)
	if err != nil {
		h.logError(ctx, "slash failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, txResponse{TxID: txID})
}

func (h *Handler) handleGetStake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, err := shared.AgentIDParam(r, "agentID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	staked, err := h.stake.GetStake(ctx, agentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	owner, err := h.stake.GetOwner(ctx, agentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, positionResponse{
		AgentID:      int64(agentID),
		Owner:        owner,
		StakedAmount: staked,
	})
}

func (h *Handler) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := id.Identity(chi.URLParam(r, "identity"))
	if identity.IsZero() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "identity is required"))
		return
	}

	balance, err := h.stake.AccountBalance(ctx, identity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"balance":  balance,
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
