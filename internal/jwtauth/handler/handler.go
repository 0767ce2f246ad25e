package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agentcred/internal/transport/http/shared"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

const tokenTTL = time.Hour

// TokenIssuer mints caller-identity tokens.
type TokenIssuer interface {
	IssueToken(identity id.Identity, expiresIn time.Duration) (string, error)
}

// Handler handles the token endpoint. Identities are self-asserted here;
// what an identity can do is decided by the role grants on the ledgers, so
// minting a token never confers privileges by itself.
type Handler struct {
	issuer TokenIssuer
	logger *slog.Logger
}

func New(issuer TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{issuer: issuer, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/token", h.handleToken)
}

type tokenRequest struct {
	Identity string `json:"identity"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Identity == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "identity is required"))
		return
	}

	token, err := h.issuer.IssueToken(id.Identity(req.Identity), tokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token issuance failed", "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tokenTTL.Seconds()),
	})
}
