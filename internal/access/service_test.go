package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

const bootstrapAdmin = id.Identity("deployer")

func newService() *Service {
	return NewService(NewInMemoryStore(), bootstrapAdmin)
}

func TestBootstrapAdminHoldsAdminImplicitly(t *testing.T) {
	svc := newService()
	ok, err := svc.HasRole(context.Background(), bootstrapAdmin, id.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGrantAndRevoke(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	auditor := id.Identity("auditor-1")

	require.NoError(t, svc.Grant(ctx, bootstrapAdmin, auditor, id.RoleAuditor))

	ok, err := svc.HasRole(ctx, auditor, id.RoleAuditor)
	require.NoError(t, err)
	assert.True(t, ok, "grant takes effect immediately")

	require.NoError(t, svc.Revoke(ctx, bootstrapAdmin, auditor, id.RoleAuditor))

	ok, err = svc.HasRole(ctx, auditor, id.RoleAuditor)
	require.NoError(t, err)
	assert.False(t, ok, "revoke takes effect immediately")
}

func TestGrantRequiresAdmin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	err := svc.Grant(ctx, id.Identity("mallory"), id.Identity("mallory"), id.RoleAuditor)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	ok, err := svc.HasRole(ctx, id.Identity("mallory"), id.RoleAuditor)
	require.NoError(t, err)
	assert.False(t, ok, "failed grant must not change membership")
}

func TestRevokeRequiresAdmin(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	auditor := id.Identity("auditor-1")

	require.NoError(t, svc.Grant(ctx, bootstrapAdmin, auditor, id.RoleAuditor))

	err := svc.Revoke(ctx, auditor, auditor, id.RoleAuditor)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	ok, err := svc.HasRole(ctx, auditor, id.RoleAuditor)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGrantRejectsUnknownRole(t *testing.T) {
	svc := newService()
	err := svc.Grant(context.Background(), bootstrapAdmin, id.Identity("x"), id.Role("superuser"))
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestGrantedAdminCanGrant(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	secondAdmin := id.Identity("ops")

	require.NoError(t, svc.Grant(ctx, bootstrapAdmin, secondAdmin, id.RoleAdmin))
	require.NoError(t, svc.Grant(ctx, secondAdmin, id.Identity("auditor-2"), id.RoleAuditor))

	err := svc.RequireRole(ctx, id.Identity("auditor-2"), id.RoleAuditor)
	assert.NoError(t, err)
}

func TestRequireRole(t *testing.T) {
	svc := newService()
	err := svc.RequireRole(context.Background(), id.Identity("nobody"), id.RoleAuditor)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
