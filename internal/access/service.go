// Package access implements role membership for the engine. Every privileged
// ledger mutation asks this service whether the explicit caller identity
// holds the required capability; there is no ambient authorization state.
package access

import (
	"context"

	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

// Store persists role grants. Membership changes take effect immediately for
// subsequent calls; implementations must not cache.
type Store interface {
	Add(ctx context.Context, identity id.Identity, role id.Role) error
	Remove(ctx context.Context, identity id.Identity, role id.Role) error
	Has(ctx context.Context, identity id.Identity, role id.Role) (bool, error)
}

// Service gates grant/revoke behind the admin capability. The identity that
// initialized the system holds admin implicitly.
type Service struct {
	store          Store
	bootstrapAdmin id.Identity
}

func NewService(store Store, bootstrapAdmin id.Identity) *Service {
	return &Service{store: store, bootstrapAdmin: bootstrapAdmin}
}

// Grant gives identity the role. Only admins may call it.
func (s *Service) Grant(ctx context.Context, caller, identity id.Identity, role id.Role) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if !role.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", role)
	}
	if identity.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "identity is required")
	}
	return s.store.Add(ctx, identity, role)
}

// Revoke removes the role from identity. Only admins may call it.
func (s *Service) Revoke(ctx context.Context, caller, identity id.Identity, role id.Role) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if !role.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", role)
	}
	return s.store.Remove(ctx, identity, role)
}

// HasRole is a pure read; anyone may ask.
func (s *Service) HasRole(ctx context.Context, identity id.Identity, role id.Role) (bool, error) {
	if role == id.RoleAdmin && identity == s.bootstrapAdmin {
		return true, nil
	}
	return s.store.Has(ctx, identity, role)
}

// RequireRole returns Unauthorized unless identity holds the role. Ledgers
// call this as the guard clause at the top of privileged operations.
func (s *Service) RequireRole(ctx context.Context, identity id.Identity, role id.Role) error {
	ok, err := s.HasRole(ctx, identity, role)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "role lookup failed")
	}
	if !ok {
		return dErrors.Newf(dErrors.CodeUnauthorized, "%s requires role %q", identity, role)
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, caller id.Identity) error {
	return s.RequireRole(ctx, caller, id.RoleAdmin)
}
