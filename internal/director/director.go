// Package director runs the host-side turn loop: procedural generation first,
// the static catalog second, then choice resolution and context recording.
package director

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielpatrickdp/lotus-engine/internal/catalog"
	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

var (
	// ErrNoEvent means neither the generator nor the catalog produced an event.
	ErrNoEvent = errors.New("director: no event available")
	// ErrInvalidChoice means the choice index is outside the event's choices.
	ErrInvalidChoice = errors.New("director: choice index out of range")
)

// #region types

// Source tells where a turn's event came from.
type Source string

const (
	SourceProcedural Source = "procedural"
	SourceStatic     Source = "static"
)

// Turn is an event ready to present.
type Turn struct {
	Event    *generator.GeneratedEvent
	Source   Source
	Attempts []generator.Attempt
}

// Resolution is the applied outcome of one choice.
type Resolution struct {
	Choice  generator.GeneratedChoice
	Roll    int // 0-99; the choice failed when Roll < Choice.Risk
	Success bool
	Delta   state.StatProfile
	Text    string
	Player  state.PlayerState
}

// Fallback supplies static events by tier and life stage.
type Fallback interface {
	Lookup(tier, stage int, src rng.Source) (catalog.Event, bool, error)
}

// #endregion types

// #region director

// Director wires a generator to an optional fallback catalog.
type Director struct {
	gen      *generator.Generator
	fallback Fallback
}

// New returns a director. fallback may be nil.
func New(gen *generator.Generator, fallback Fallback) *Director {
	return &Director{gen: gen, fallback: fallback}
}

// Next produces the event for player's next turn. It never records into ctx.
func (d *Director) Next(player state.PlayerState, ctx *tracker.Context, src rng.Source) (Turn, error) {
	res := d.gen.Generate(player, ctx, src)
	if res.Generated() {
		return Turn{Event: res.Event, Source: SourceProcedural, Attempts: res.Attempts}, nil
	}

	if d.fallback == nil {
		return Turn{Attempts: res.Attempts}, ErrNoEvent
	}
	static, ok, err := d.fallback.Lookup(player.Tier, player.LifeStage, src)
	if err != nil {
		return Turn{Attempts: res.Attempts}, fmt.Errorf("fallback lookup: %w", err)
	}
	if !ok {
		slog.Warn("no static event for player position",
			"component", "director", "tier", player.Tier, "life_stage", player.LifeStage)
		return Turn{Attempts: res.Attempts}, ErrNoEvent
	}
	return Turn{Event: static.ToGenerated(), Source: SourceStatic, Attempts: res.Attempts}, nil
}

// Resolve rolls the chosen option against its risk, applies the resulting
// delta to player and records procedural events into ctx exactly once.
// Static events only advance the counter.
func (d *Director) Resolve(turn Turn, choice int, player state.PlayerState, ctx *tracker.Context, src rng.Source) (Resolution, error) {
	if turn.Event == nil || choice < 0 || choice >= len(turn.Event.Choices) {
		return Resolution{}, ErrInvalidChoice
	}
	c := turn.Event.Choices[choice]

	roll := src.IntN(100)
	res := Resolution{Choice: c, Roll: roll, Success: roll >= c.Risk}
	if res.Success {
		res.Delta, res.Text = c.SuccessDelta, c.SuccessText
	} else {
		res.Delta, res.Text = c.FailureDelta, c.FailureText
	}
	res.Player = player.Apply(res.Delta)

	if turn.Event.Procedural() {
		ctx.Record(string(turn.Event.Domain), turn.Event.SituationID)
	} else {
		ctx.Advance()
	}

	slog.Debug("turn resolved",
		"component", "director",
		"source", turn.Source,
		"situation", turn.Event.SituationID,
		"choice", choice,
		"risk", c.Risk,
		"roll", roll,
		"success", res.Success,
	)
	return res, nil
}

// #endregion director
