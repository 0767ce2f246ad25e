package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agentcred/internal/orchestrator"
	"agentcred/internal/transport/http/shared"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
	"agentcred/pkg/requestcontext"
)

// Service defines the audit pipeline entrypoint.
type Service interface {
	SubmitAndAudit(ctx context.Context, caller id.Identity, agentID id.AgentID, payload string) (orchestrator.Result, error)
}

// Handler handles the one-call verification endpoint.
type Handler struct {
	orchestrator Service
	logger       *slog.Logger
}

func New(orch Service, logger *slog.Logger) *Handler {
	return &Handler{orchestrator: orch, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.handleVerify)
}

type verifyRequest struct {
	AgentID int64  `json:"agent_id"`
	Content string `json:"content"`
}

type verifyResponse struct {
	ContentHash  id.ContentHash `json:"content_hash"`
	Status       string         `json:"status"`
	Ok           bool           `json:"ok"`
	Score        int            `json:"score"`
	FallbackUsed bool           `json:"fallback_used"`
	PublishTx    string         `json:"publish_tx"`
	AuditTx      string         `json:"audit_tx"`
	UserDelta    int64          `json:"user_delta"`
	AgentDelta   int64          `json:"agent_delta"`
	StakeBefore  uint64         `json:"stake_before"`
	StakeAfter   uint64         `json:"stake_after"`
	SlashedStake uint64         `json:"slashed_stake"`
	AuditedAt    time.Time      `json:"audited_at"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	agentID, err := shared.AgentIDField(req.AgentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.Content == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "content is required"))
		return
	}

	res, err := h.orchestrator.SubmitAndAudit(ctx, requestcontext.Caller(ctx), agentID, req.Content)
	if err != nil {
		h.logger.WarnContext(ctx, "verification failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, verifyResponse{
		ContentHash:  res.Record.ContentHash,
		Status:       string(res.Record.Status),
		Ok:           res.Verdict.Ok,
		Score:        res.Verdict.Score,
		FallbackUsed: res.FallbackUsed,
		PublishTx:    res.PublishTx,
		AuditTx:      res.AuditTx,
		UserDelta:    res.UserDelta,
		AgentDelta:   res.AgentDelta,
		StakeBefore:  res.StakeBefore,
		StakeAfter:   res.StakeAfter,
		SlashedStake: res.StakeBefore - res.StakeAfter,
		AuditedAt:    res.Record.AuditedAt,
	})
}
