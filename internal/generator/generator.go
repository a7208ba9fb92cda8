// Package generator composes selection, text assembly and outcome math into
// complete events, retrying across candidates and returning nothing when
// every attempt fails.
package generator

// #region imports
import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/madlib"
	"github.com/danielpatrickdp/lotus-engine/internal/outcome"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/selector"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

// #endregion

// #region config

// Config tunes generation.
type Config struct {
	MaxAttempts int
	Selector    selector.Config
}

// DefaultConfig returns three attempts and the default selector tuning.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, Selector: selector.DefaultConfig()}
}

// #endregion

// #region generator-struct

// Generator produces events from an immutable library. It holds no per-player
// state and is safe to share; the context and rng passed to Generate are not.
type Generator struct {
	lib      *library.Library
	selector *selector.Selector
	retry    *RetryPolicy
}

// New wires a generator over lib.
func New(lib *library.Library, cfg Config) *Generator {
	return &Generator{
		lib:      lib,
		selector: selector.New(cfg.Selector),
		retry:    NewRetryPolicy(cfg.MaxAttempts),
	}
}

// Generate runs New(lib, DefaultConfig()).Generate.
func Generate(player state.PlayerState, lib *library.Library, ctx *tracker.Context, src rng.Source) Result {
	return New(lib, DefaultConfig()).Generate(player, ctx, src)
}

// Library returns the library the generator draws from.
func (g *Generator) Library() *library.Library {
	return g.lib
}

// #endregion

// #region generate

// Generate tries up to MaxAttempts times to build an event for player. It never
// records into ctx; the caller does that once the event is resolved. A nil ctx
// generates against an empty history.
func (g *Generator) Generate(player state.PlayerState, ctx *tracker.Context, src rng.Source) Result {
	var attempts []Attempt
	var exclude map[string]bool

	for n := 1; ; n++ {
		event, attempt := g.attempt(n, player, ctx, src, exclude)
		attempts = append(attempts, attempt)
		if event != nil {
			return Result{Event: event, Attempts: attempts}
		}

		slog.Debug("generation attempt failed",
			"component", "generator",
			"attempt", n,
			"situation", attempt.SituationID,
			"failure", attempt.Failure,
			"error", attempt.Err,
		)

		retry, tried := g.retry.ShouldRetry(attempts)
		if !retry {
			break
		}
		exclude = tried
	}

	slog.Info("procedural generation exhausted, falling back",
		"component", "generator",
		"attempts", len(attempts),
		"tier", player.Tier,
		"life_stage", player.LifeStage,
	)
	return Result{Attempts: attempts}
}

func (g *Generator) attempt(n int, player state.PlayerState, ctx *tracker.Context, src rng.Source, exclude map[string]bool) (*GeneratedEvent, Attempt) {
	a := Attempt{Number: n, Failure: FailureNone}

	sel, err := g.selector.Select(g.lib, player, ctx, src, exclude)
	if err != nil {
		a.Failure, a.Err = classify(err), err
		return nil, a
	}
	a.SituationID = sel.Template.ID

	event, err := g.build(sel, player, src)
	if err != nil {
		a.Failure, a.Err = classify(err), err
		return nil, a
	}
	return event, a
}

// #endregion

// #region build

func (g *Generator) build(sel selector.Selection, player state.PlayerState, src rng.Source) (*GeneratedEvent, error) {
	tpl := sel.Template
	vars := g.lib.Variables()

	archetypes, err := selector.AssembleChoices(tpl, player)
	if err != nil {
		return nil, err
	}

	description, err := madlib.AssembleDescription(tpl.Fragments, vars, player.Tier, src)
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}

	choices := make([]GeneratedChoice, 0, len(archetypes))
	for i, c := range archetypes {
		text, err := madlib.AssembleChoiceText(c, vars, player.Tier, src)
		if err != nil {
			return nil, fmt.Errorf("choice %d: %w", i, err)
		}

		variance := outcome.Variance(src)
		success := outcome.Scale(c.Success, player.Tier, tpl.Severity, variance)
		failure := outcome.Scale(c.Failure, player.Tier, tpl.Severity, variance)

		choices = append(choices, GeneratedChoice{
			Text:         text,
			Archetype:    c.Archetype,
			SuccessDelta: success,
			FailureDelta: failure,
			Risk:         outcome.ComputeRisk(tpl.BaseRisk, c.Requirements, player, c.RiskModifier),
			Requirements: c.Requirements,
			SuccessText:  madlib.SuccessText(string(c.Archetype), success.SCS > 0),
			FailureText:  madlib.FailureText(string(c.Archetype)),
		})
	}

	return &GeneratedEvent{
		SituationID: tpl.ID,
		Domain:      tpl.Domain,
		Title:       Title(tpl.Domain, tpl.Severity),
		Description: description,
		Severity:    tpl.Severity,
		TierMin:     tpl.TierMin,
		TierMax:     tpl.TierMax,
		Wildcard:    sel.Wildcard,
		Choices:     choices,
	}, nil
}

// Title renders "Work - Medium Severity".
func Title(d library.Domain, s library.Severity) string {
	return fmt.Sprintf("%s - %s Severity", d.Label(), s.Label())
}

func classify(err error) FailureType {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, selector.ErrSelectionExhausted):
		return FailureSelection
	case errors.Is(err, selector.ErrChoiceSetInvalid):
		return FailureChoiceSet
	case errors.Is(err, madlib.ErrUnresolvedPlaceholder):
		return FailurePlaceholder
	default:
		return FailureAssembly
	}
}

// #endregion
