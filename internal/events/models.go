package events

import (
	"time"

	id "agentcred/pkg/domain"
)

// Type names a ledger mutation. Downstream observers replay the event log to
// reconstruct history, so the set is append-only.
type Type string

const (
	TypeStaked            Type = "staked"
	TypeUnstaked          Type = "unstaked"
	TypeSlashed           Type = "slashed"
	TypeContentPublished  Type = "content_published"
	TypeContentAudited    Type = "content_audited"
	TypeReputationUpdated Type = "reputation_updated"
)

// Event is emitted once per mutating ledger operation. The ID doubles as the
// transaction identifier returned to callers. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     id.Identity `json:"actor,omitempty"`

	// Stake fields.
	AgentID id.AgentID `json:"agent_id,omitempty"`
	Amount  uint64     `json:"amount,omitempty"`
	Reason  string     `json:"reason,omitempty"`

	// Content fields.
	ContentHash id.ContentHash `json:"content_hash,omitempty"`
	URI         string         `json:"uri,omitempty"`
	Ok          bool           `json:"ok,omitempty"`
	Score       int            `json:"score,omitempty"`

	// Reputation fields. Subject is either a user identity or an agent ID
	// rendered as a string; the two namespaces never collide because agent
	// subjects carry an "agent:" prefix.
	Subject  string `json:"subject,omitempty"`
	Delta    int64  `json:"delta,omitempty"`
	NewScore int64  `json:"new_score,omitempty"`
}
