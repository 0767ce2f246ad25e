package stake

import (
	id "agentcred/pkg/domain"
)

// Entry is the collateral record for one agent. The owner is bound on the
// first stake and only the owner may move the balance afterwards; auditors
// may reduce it through Slash.
type Entry struct {
	AgentID      id.AgentID
	Owner        id.Identity
	StakedAmount uint64
}
