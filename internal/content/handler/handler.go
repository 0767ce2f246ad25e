package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agentcred/internal/content"
	"agentcred/internal/transport/http/shared"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
	"agentcred/pkg/requestcontext"
)

// Service defines the content ledger operations the handler exposes.
type Service interface {
	Publish(ctx context.Context, author id.Identity, agentID id.AgentID, hash id.ContentHash, uri string) (string, error)
	CommitAudit(ctx context.Context, caller id.Identity, hash id.ContentHash, ok bool, score int) (string, error)
	GetContent(ctx context.Context, hash id.ContentHash) (*content.Record, error)
	ListContent(ctx context.Context, limit int) ([]content.Record, error)
}

// Handler handles content ledger endpoints.
type Handler struct {
	content Service
	logger  *slog.Logger
}

func New(content Service, logger *slog.Logger) *Handler {
	return &Handler{content: content, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/content", h.handlePublish)
	r.Post("/content/{hash}/audit", h.handleCommitAudit)
	r.Get("/content/{hash}", h.handleGetContent)
	r.Get("/content", h.handleListContent)
}

type publishRequest struct {
	AgentID     int64  `json:"agent_id"`
	ContentHash string `json:"content_hash"`
	URI         string `json:"uri"`
}

type auditRequest struct {
	Ok    bool `json:"ok"`
	Score int  `json:"score"`
}

type recordResponse struct {
	ContentHash id.ContentHash `json:"content_hash"`
	Author      id.Identity    `json:"author"`
	AgentID     int64          `json:"agent_id"`
	URI         string         `json:"uri"`
	Status      content.Status `json:"status"`
	AuditScore  *int           `json:"audit_score,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	AuditedAt   *time.Time     `json:"audited_at,omitempty"`
}

func toRecordResponse(record *content.Record) recordResponse {
	resp := recordResponse{
		ContentHash: record.ContentHash,
		Author:      record.Author,
		AgentID:     int64(record.AgentID),
		URI:         record.URI,
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
	}
	if record.Status.Terminal() {
		score := record.AuditScore
		auditedAt := record.AuditedAt
		resp.AuditScore = &score
		resp.AuditedAt = &auditedAt
	}
	return resp
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	agentID, err := shared.AgentIDField(req.AgentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.ContentHash == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "content_hash is required"))
		return
	}

	txID, err := h.content.Publish(ctx, requestcontext.Caller(ctx), agentID, id.ContentHash(req.ContentHash), req.URI)
	if err != nil {
		h.logError(ctx, "publish failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]string{"tx_id": txID})
}

func (h *Handler) handleCommitAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := id.ContentHash(chi.URLParam(r, "hash"))
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	txID, err := h.content.CommitAudit(ctx, requestcontext.Caller(ctx), hash, req.Ok, req.Score)
	if err != nil {
		h.logError(ctx, "audit commit failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"tx_id": txID})
}

func (h *Handler) handleGetContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, err := h.content.GetContent(ctx, id.ContentHash(chi.URLParam(r, "hash")))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *Handler) handleListContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.content.ListContent(ctx, shared.LimitQuery(r, 100))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for i := range records {
		out = append(out, toRecordResponse(&records[i]))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
