package outcome

import "github.com/danielpatrickdp/lotus-engine/internal/state"

// Risk bounds. Nothing is ever certain to fail.
const (
	MinRisk = 0
	MaxRisk = 95

	// GapPenalty is the risk added per point a requirement is missed by.
	GapPenalty = 5
)

// RequirementGap sums how far player falls short of every threshold.
func RequirementGap(reqs map[string]int, player state.PlayerState) int {
	gap := 0
	for stat, threshold := range reqs {
		gap += max(0, threshold-player.Value(stat))
	}
	return gap
}

// ComputeRisk returns base + gap*5 + modifier, clamped to [MinRisk, MaxRisk].
func ComputeRisk(baseRisk int, reqs map[string]int, player state.PlayerState, modifier int) int {
	risk := baseRisk + RequirementGap(reqs, player)*GapPenalty + modifier
	return min(max(risk, MinRisk), MaxRisk)
}
