package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		id, err := ParseAgentID("42")
		require.NoError(t, err)
		assert.Equal(t, AgentID(42), id)
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := ParseAgentID("0")
		assert.Error(t, err)
	})

	t.Run("rejects negative", func(t *testing.T) {
		_, err := ParseAgentID("-3")
		assert.Error(t, err)
	})

	t.Run("rejects non-numeric", func(t *testing.T) {
		_, err := ParseAgentID("abc")
		assert.Error(t, err)
	})
}

func TestHashContent(t *testing.T) {
	h := HashContent("hello world")

	assert.True(t, strings.HasPrefix(h.String(), "0x"))
	assert.Len(t, h.String(), 66, "0x prefix plus 64 hex chars")

	// Same content always digests to the same hash.
	assert.Equal(t, h, HashContent("hello world"))
	assert.NotEqual(t, h, HashContent("hello worlds"))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleAuditor.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
