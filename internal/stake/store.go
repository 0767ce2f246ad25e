package stake

import (
	"context"

	id "agentcred/pkg/domain"
)

// Store persists stake entries and identity account balances. Reads return
// nil for absent entries. The service serializes mutations per agent, so
// implementations only need individual operations to be atomic.
type Store interface {
	GetEntry(ctx context.Context, agentID id.AgentID) (*Entry, error)
	PutEntry(ctx context.Context, entry *Entry) error

	// Credit adds collateral units to an identity's account. Unstake credits
	// the owner; Slash credits the treasury, conserving total staked value.
	Credit(ctx context.Context, identity id.Identity, amount uint64) error
	Balance(ctx context.Context, identity id.Identity) (uint64, error)
}
