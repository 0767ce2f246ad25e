package orchestrator

// DeltaPolicy maps a verdict to the reputation adjustments applied to the
// submitting user and the authoring agent.
type DeltaPolicy interface {
	DeltaFor(ok bool, score int) (userDelta, agentDelta int64)
}

// BalancedDeltaPolicy is the flat-delta model: small rewards for a pass,
// proportionally heavier penalties for hard failures. Hard failures are
// scores at or below HardFailMax.
type BalancedDeltaPolicy struct {
	HardFailMax int
}

func NewBalancedDeltaPolicy() BalancedDeltaPolicy {
	return BalancedDeltaPolicy{HardFailMax: 20}
}

func (p BalancedDeltaPolicy) DeltaFor(ok bool, score int) (int64, int64) {
	switch {
	case ok:
		return 1, 2
	case score <= p.HardFailMax:
		return -2, -4
	default:
		return -1, -2
	}
}
