// Package outcome computes stat deltas and failure risk for generated choices.
package outcome

import (
	"math"

	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// Variance bounds, drawn uniformly once per choice.
const (
	VarianceMin = 0.8
	VarianceMax = 1.2
)

// TierMultiplier grows linearly with tier: (tier+1) * 1.5.
func TierMultiplier(tier int) float64 {
	return float64(tier+1) * 1.5
}

// SeverityMultiplier maps low/medium/high to 0.5/1.0/2.0. Unknown values read as medium.
func SeverityMultiplier(s library.Severity) float64 {
	switch s {
	case library.SeverityLow:
		return 0.5
	case library.SeverityHigh:
		return 2.0
	default:
		return 1.0
	}
}

// Variance draws the shared per-choice scale factor.
func Variance(src rng.Source) float64 {
	return rng.Uniform(src, VarianceMin, VarianceMax)
}

// Scale multiplies every field of base by the tier, severity and variance
// factors and rounds half away from zero.
func Scale(base state.StatProfile, tier int, severity library.Severity, variance float64) state.StatProfile {
	factor := TierMultiplier(tier) * SeverityMultiplier(severity) * variance
	return base.Map(func(v int) int {
		return int(math.Round(float64(v) * factor))
	})
}

// ComputeStats draws one variance and scales base with it.
func ComputeStats(base state.StatProfile, tier int, severity library.Severity, src rng.Source) state.StatProfile {
	return Scale(base, tier, severity, Variance(src))
}
