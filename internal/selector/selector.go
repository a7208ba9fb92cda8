// Package selector picks the situation for the next event and filters its choices.
package selector

import (
	"errors"
	"log/slog"

	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

// ErrSelectionExhausted means no candidate survived filtering.
var ErrSelectionExhausted = errors.New("selector: no eligible situation")

// #region config

// Config tunes selection.
type Config struct {
	// WildcardChance is the probability that the domain-recency filter is skipped.
	WildcardChance float64
	// RecentWindow is how many recorded domains count as recent.
	RecentWindow int
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{WildcardChance: 0.10, RecentWindow: tracker.DefaultRecentWindow}
}

// #endregion config

// #region selector

// Selection is the outcome of one successful draw. Template is a copy owned by
// the caller; changing it never reaches the library.
type Selection struct {
	Template *library.SituationTemplate
	// Wildcard is true when the roll fired and domain recency was ignored.
	Wildcard bool
}

// Selector draws situations from a library.
type Selector struct {
	cfg Config
}

// New returns a selector with the given tuning.
func New(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

type candidate struct {
	tpl   *library.SituationTemplate
	score int
}

// Select filters the library for player and ctx, then draws one template with
// probability proportional to its match score. Templates whose ID is in exclude
// are never returned. The wildcard roll is always drawn first.
func (s *Selector) Select(lib *library.Library, player state.PlayerState, ctx *tracker.Context, src rng.Source, exclude map[string]bool) (Selection, error) {
	wildcard := src.Float64() < s.cfg.WildcardChance

	var candidates []candidate
	total := 0
	for _, domain := range lib.Domains() {
		if !wildcard && ctx.IsDomainRecent(string(domain), s.cfg.RecentWindow) {
			continue
		}
		list := lib.Templates(domain)
		for i := range list {
			tpl := &list[i]
			if exclude[tpl.ID] || ctx.IsEncountered(tpl.ID) {
				continue
			}
			score, ok := Score(tpl, player)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{tpl: tpl, score: score})
			total += score
		}
	}

	if len(candidates) == 0 {
		slog.Debug("no situation survived filtering",
			"component", "selector",
			"tier", player.Tier,
			"life_stage", player.LifeStage,
			"wildcard", wildcard,
		)
		return Selection{}, ErrSelectionExhausted
	}

	roll := src.IntN(total)
	for _, c := range candidates {
		roll -= c.score
		if roll < 0 {
			return Selection{Template: c.tpl, Wildcard: wildcard}, nil
		}
	}
	// Unreachable while every score is positive.
	last := candidates[len(candidates)-1]
	return Selection{Template: last.tpl, Wildcard: wildcard}, nil
}

// #endregion selector

// #region scoring

// Score rates how well tpl fits player. ok is false when the template falls
// outside the tier window [tier-1, tier+1] or covers neither the current nor
// the previous life stage. Exact coverage scores 2 per axis, adjacent 1.
func Score(tpl *library.SituationTemplate, player state.PlayerState) (score int, ok bool) {
	tier, stage := player.Tier, player.LifeStage

	switch {
	case tpl.CoversTier(tier):
		score += 2
	case tpl.TierMin <= tier+1 && tpl.TierMax >= tier-1:
		score++
	default:
		return 0, false
	}

	switch {
	case tpl.CoversLifeStage(stage):
		score += 2
	case tpl.CoversLifeStage(stage - 1):
		score++
	default:
		return 0, false
	}
	return score, true
}

// #endregion scoring
