package replay

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

// #region types

// ChoicePolicy decides which option a simulated player picks.
type ChoicePolicy string

const (
	PolicyFirst  ChoicePolicy = "first"
	PolicySafest ChoicePolicy = "safest"
	PolicyRandom ChoicePolicy = "random"
)

// ActionNoEvent marks a turn where nothing could be served.
const ActionNoEvent = "none"

// ReplayConfig controls a simulated session.
type ReplayConfig struct {
	Turns  int
	Policy ChoicePolicy
	// AdvanceEvery moves the player one tier and life stage up every N turns.
	// Zero keeps the player in place.
	AdvanceEvery int
}

// DefaultReplayConfig plays 50 turns with the first option and no advancement.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{Turns: 50, Policy: PolicyFirst}
}

// ReplayResult captures one simulated turn.
type ReplayResult struct {
	Turn        int
	Action      string // "procedural" | "static" | "none"
	SituationID string
	Domain      string
	Title       string
	Wildcard    bool
	Attempts    int
	Choice      int
	ChoiceText  string
	Risk        int
	Success     bool
	Delta       state.StatProfile
	Player      state.PlayerState // after the turn
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTurns  int
	Procedural  int
	Static      int
	NoEvents    int
	Wildcards   int
	Successes   int
	Violations  []string
	FinalPlayer state.PlayerState
}

// #endregion types

// #region replay

// Replay plays cfg.Turns turns through d, entirely in memory, with a fresh context.
func Replay(d *director.Director, start state.PlayerState, cfg ReplayConfig, src rng.Source) ([]ReplayResult, error) {
	player := start
	ctx := tracker.New()
	results := make([]ReplayResult, 0, cfg.Turns)

	for turn := 1; turn <= cfg.Turns; turn++ {
		if cfg.AdvanceEvery > 0 && turn > 1 && (turn-1)%cfg.AdvanceEvery == 0 {
			player.Tier = min(player.Tier+1, state.MaxTier)
			player.LifeStage = min(player.LifeStage+1, state.MaxLifeStage)
		}

		// 1. Next event
		t, err := d.Next(player, ctx, src)
		if errors.Is(err, director.ErrNoEvent) {
			ctx.Advance()
			results = append(results, ReplayResult{
				Turn:     turn,
				Action:   ActionNoEvent,
				Attempts: len(t.Attempts),
				Player:   player,
			})
			continue
		}
		if err != nil {
			return results, fmt.Errorf("turn %d: %w", turn, err)
		}

		// 2. Choose
		choice := pick(cfg.Policy, t, src)

		// 3. Resolve and record
		res, err := d.Resolve(t, choice, player, ctx, src)
		if err != nil {
			return results, fmt.Errorf("turn %d: %w", turn, err)
		}
		player = res.Player

		results = append(results, ReplayResult{
			Turn:        turn,
			Action:      string(t.Source),
			SituationID: t.Event.SituationID,
			Domain:      string(t.Event.Domain),
			Title:       t.Event.Title,
			Wildcard:    t.Event.Wildcard,
			Attempts:    len(t.Attempts),
			Choice:      choice,
			ChoiceText:  res.Choice.Text,
			Risk:        res.Choice.Risk,
			Success:     res.Success,
			Delta:       res.Delta,
			Player:      player,
		})
	}
	return results, nil
}

func pick(policy ChoicePolicy, t director.Turn, src rng.Source) int {
	switch policy {
	case PolicySafest:
		best := 0
		for i, c := range t.Event.Choices {
			if c.Risk < t.Event.Choices[best].Risk {
				best = i
			}
		}
		return best
	case PolicyRandom:
		return src.IntN(len(t.Event.Choices))
	default:
		return 0
	}
}

// Summarize computes aggregate stats and repetition violations from replay results.
func Summarize(results []ReplayResult, start state.PlayerState) ReplaySummary {
	s := ReplaySummary{
		TotalTurns:  len(results),
		FinalPlayer: start,
		Violations:  Violations(results),
	}
	for _, r := range results {
		switch r.Action {
		case string(director.SourceProcedural):
			s.Procedural++
		case string(director.SourceStatic):
			s.Static++
		case ActionNoEvent:
			s.NoEvents++
		}
		if r.Wildcard {
			s.Wildcards++
		}
		if r.Success {
			s.Successes++
		}
		s.FinalPlayer = r.Player
	}
	return s
}

// #endregion replay

// #region violations

// Violations checks procedural turns for repetition: a situation seen within
// the encounter window, or a recorded domain within the recent window on a
// turn where no wildcard fired. Every turn ages the encounter window; only
// procedural turns enter the domain history.
func Violations(results []ReplayResult) []string {
	var out []string
	var history []ReplayResult
	for _, r := range results {
		if r.Action != string(director.SourceProcedural) {
			continue
		}
		for _, prev := range history {
			if prev.SituationID == r.SituationID && r.Turn-prev.Turn <= tracker.EncounterWindow {
				out = append(out, fmt.Sprintf("turn %d: situation %s repeated from turn %d", r.Turn, r.SituationID, prev.Turn))
			}
		}
		if !r.Wildcard {
			for _, prev := range history[max(0, len(history)-tracker.DefaultRecentWindow):] {
				if prev.Domain == r.Domain {
					out = append(out, fmt.Sprintf("turn %d: domain %s repeated from turn %d", r.Turn, r.Domain, prev.Turn))
				}
			}
		}
		history = append(history, r)
	}
	return out
}

// #endregion violations
