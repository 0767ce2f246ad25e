package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New("test-signing-key", "agentcred")

	token, err := svc.IssueToken(id.Identity("alice"), time.Hour)
	require.NoError(t, err)

	caller, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.Identity("alice"), caller)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := New("test-signing-key", "agentcred")

	token, err := svc.IssueToken(id.Identity("alice"), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := New("key-one", "agentcred")
	validator := New("key-two", "agentcred")

	token, err := issuer.IssueToken(id.Identity("alice"), time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := New("test-signing-key", "agentcred")

	_, err := svc.ValidateToken("not-a-jwt")
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
