package content

import (
	"time"

	id "agentcred/pkg/domain"
)

// Status is the lifecycle state of a content record. The machine is one-shot:
// Pending transitions exactly once to a terminal audited state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusAuditedOk   Status = "audited_ok"
	StatusAuditedFail Status = "audited_fail"
)

// Terminal reports whether the record has been audited.
func (s Status) Terminal() bool {
	return s == StatusAuditedOk || s == StatusAuditedFail
}

// Record is the lifecycle entry for one piece of published content. The
// content hash is globally unique for the lifetime of the ledger; records
// are never deleted and the audit score is set exactly once.
type Record struct {
	ContentHash id.ContentHash
	Author      id.Identity
	AgentID     id.AgentID
	URI         string
	Status      Status
	// AuditScore is undefined until Status is terminal.
	AuditScore int
	CreatedAt  time.Time
	AuditedAt  time.Time
}
