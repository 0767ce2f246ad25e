package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTierPolicy(t *testing.T) {
	tests := []struct {
		name  string
		score int
		bps   int
	}{
		{"perfect", 100, 0},
		{"top of clean band", 51, 0},
		{"top of soft band", 50, 500},
		{"bottom of soft band", 21, 500},
		{"top of hard band", 20, 1500},
		{"bottom of hard band", 1, 1500},
		{"zero score", 0, 3000},
	}
	policy := ScoreTierPolicy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bps, policy.TierFor(tt.score))
		})
	}
}

func TestSlashAmountRoundsDown(t *testing.T) {
	assert.Equal(t, uint64(0), SlashAmount(1000, 0))
	assert.Equal(t, uint64(50), SlashAmount(1000, 500))
	assert.Equal(t, uint64(150), SlashAmount(1000, 1500))
	assert.Equal(t, uint64(300), SlashAmount(1000, 3000))
	// 33 * 500 / 10000 = 1.65, truncated.
	assert.Equal(t, uint64(1), SlashAmount(33, 500))
	assert.Equal(t, uint64(0), SlashAmount(1, 500))
}

func TestBalancedFlatPolicy(t *testing.T) {
	policy := BalancedFlatPolicy()
	assert.Equal(t, 1500, policy.TierFor(0))
	assert.Equal(t, 1500, policy.TierFor(20))
	assert.Equal(t, 500, policy.TierFor(21))
	assert.Equal(t, 500, policy.TierFor(50))
}
