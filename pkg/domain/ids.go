// Package domain defines the typed identifiers shared across ledgers.
// Keeping them as distinct types prevents accidental cross-wiring of an
// agent ID with a user identity at call sites.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Identity is an account identity: a user, an agent owner, the treasury, or
// a service principal such as the orchestrator's auditor account. The engine
// treats it as an opaque non-empty string.
type Identity string

func (i Identity) String() string { return string(i) }

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool { return i == "" }

// AgentID identifies a registered agent. IDs are allocated sequentially by
// the identity registry starting at 1; zero is never a valid agent.
type AgentID int64

func (a AgentID) String() string { return strconv.FormatInt(int64(a), 10) }

// ParseAgentID parses a decimal agent ID, rejecting zero and negatives.
func ParseAgentID(s string) (AgentID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse agent id %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("agent id must be positive, got %d", n)
	}
	return AgentID(n), nil
}

// ContentHash uniquely identifies a piece of submitted content for the
// lifetime of the ledger. Hashes are hex-encoded SHA-256 digests with a 0x
// prefix; they are never reused or deleted.
type ContentHash string

func (h ContentHash) String() string { return string(h) }

// HashContent derives the canonical content hash for a raw payload.
func HashContent(content string) ContentHash {
	sum := sha256.Sum256([]byte(content))
	return ContentHash("0x" + hex.EncodeToString(sum[:]))
}

// Role is a capability grantable to an identity.
type Role string

const (
	// RoleAdmin may grant and revoke roles and change ledger configuration.
	RoleAdmin Role = "admin"
	// RoleAuditor may commit audits, slash stakes, and adjust reputation.
	RoleAuditor Role = "auditor"
)

// Valid reports whether the role is one the engine knows about.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAuditor
}
