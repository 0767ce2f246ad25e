package verdict

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// Fallback is the local heuristic used when the verifier is unavailable.
// Content containing the marker token fails with a fixed hard-failure score;
// everything else passes with a score derived deterministically from the
// content, so repeated evaluations of the same bytes always agree.
type Fallback struct {
	marker       string
	failScore    int
	passScoreMin int
	passScoreMax int
}

func NewFallback(marker string, failScore, passScoreMin, passScoreMax int) *Fallback {
	if passScoreMax < passScoreMin {
		passScoreMax = passScoreMin
	}
	return &Fallback{
		marker:       strings.ToLower(marker),
		failScore:    failScore,
		passScoreMin: passScoreMin,
		passScoreMax: passScoreMax,
	}
}

// Evaluate scores raw content. The marker match is case-insensitive.
func (f *Fallback) Evaluate(content string) Verdict {
	if f.marker != "" && strings.Contains(strings.ToLower(content), f.marker) {
		return Verdict{Ok: false, Score: f.failScore}
	}
	sum := sha256.Sum256([]byte(content))
	span := uint64(f.passScoreMax-f.passScoreMin) + 1
	score := f.passScoreMin + int(binary.BigEndian.Uint64(sum[:8])%span)
	return Verdict{Ok: true, Score: score}
}
