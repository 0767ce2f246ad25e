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

// RoleService defines the role grant operations the handler exposes.
type RoleService interface {
	Grant(ctx context.Context, caller, identity id.Identity, role id.Role) error
	Revoke(ctx context.Context, caller, identity id.Identity, role id.Role) error
}

// StakeConfig is the admin-mutable stake ledger configuration.
type StakeConfig interface {
	SetTreasury(ctx context.Context, caller, treasury id.Identity) error
	SetOwnerRegistry(ctx context.Context, caller id.Identity, lookup registry.Lookup) error
}

// Handler handles the admin surface: role management and ledger
// configuration. Authorization happens in the services, not here; the
// handler only carries the caller identity through.
type Handler struct {
	roles    RoleService
	stakeCfg StakeConfig
	registry registry.Lookup
	logger   *slog.Logger
}

func New(roles RoleService, stakeCfg StakeConfig, reg registry.Lookup, logger *slog.Logger) *Handler {
	return &Handler{roles: roles, stakeCfg: stakeCfg, registry: reg, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/roles/grant", h.handleGrant)
	r.Post("/admin/roles/revoke", h.handleRevoke)
	r.Put("/admin/treasury", h.handleSetTreasury)
	r.Put("/admin/registry", h.handleSetRegistry)
}

type roleRequest struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

type treasuryRequest struct {
	Treasury string `json:"treasury"`
}

type registryRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.roles.Grant)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	h.handleRoleChange(w, r, h.roles.Revoke)
}

func (h *Handler) handleRoleChange(w http.ResponseWriter, r *http.Request, change func(context.Context, id.Identity, id.Identity, id.Role) error) {
	ctx := r.Context()
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Identity == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "identity is required"))
		return
	}

	if err := change(ctx, requestcontext.Caller(ctx), id.Identity(req.Identity), id.Role(req.Role)); err != nil {
		h.logError(ctx, "role change failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetTreasury(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req treasuryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.stakeCfg.SetTreasury(ctx, requestcontext.Caller(ctx), id.Identity(req.Treasury)); err != nil {
		h.logError(ctx, "treasury update failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetRegistry toggles the registration requirement for staking.
func (h *Handler) handleSetRegistry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	lookup := h.registry
	if !req.Enabled {
		lookup = nil
	}
	if err := h.stakeCfg.SetOwnerRegistry(ctx, requestcontext.Caller(ctx), lookup); err != nil {
		h.logError(ctx, "registry toggle failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
