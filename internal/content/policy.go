package content

// SlashPolicy maps an audit score to a penalty rate in basis points of the
// agent's current stake. Policies apply only to failed verdicts; a passing
// verdict never slashes regardless of score.
type SlashPolicy interface {
	TierFor(score int) int
}

// ScoreTierPolicy is the canonical tiered penalty table.
type ScoreTierPolicy struct{}

func (ScoreTierPolicy) TierFor(score int) int {
	switch {
	case score >= 51:
		return 0
	case score >= 21:
		return 500
	case score >= 1:
		return 1500
	default:
		return 3000
	}
}

// FlatTierPolicy is the alternative flat model: one rate for soft failures
// and one for hard failures, independent of the exact score. HardFailMax is
// the highest score still counted as a hard failure.
type FlatTierPolicy struct {
	SoftFailBps int
	HardFailBps int
	HardFailMax int
}

// BalancedFlatPolicy mirrors the "balanced" strategy from the reputation
// simulator: 5% soft, 15% hard, hard at score 20 and below.
func BalancedFlatPolicy() FlatTierPolicy {
	return FlatTierPolicy{SoftFailBps: 500, HardFailBps: 1500, HardFailMax: 20}
}

func (p FlatTierPolicy) TierFor(score int) int {
	if score <= p.HardFailMax {
		return p.HardFailBps
	}
	return p.SoftFailBps
}

// SlashAmount converts a penalty rate to collateral units against the
// current staked amount, rounding down.
func SlashAmount(staked uint64, basisPoints int) uint64 {
	if basisPoints <= 0 {
		return 0
	}
	return staked * uint64(basisPoints) / 10000
}
