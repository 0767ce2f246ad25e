package shared

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

// AgentIDParam parses a positive agent identifier from a chi URL parameter.
func AgentIDParam(r *http.Request, name string) (id.AgentID, error) {
	agentID, err := id.ParseAgentID(chi.URLParam(r, name))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid agent id")
	}
	return agentID, nil
}

// AgentIDField validates a positive agent identifier from a request body.
func AgentIDField(n int64) (id.AgentID, error) {
	if n <= 0 {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "agent id must be positive, got %d", n)
	}
	return id.AgentID(n), nil
}

// LimitQuery parses an optional ?limit= query parameter, applying the
// fallback when absent or invalid.
func LimitQuery(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
