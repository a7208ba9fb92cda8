// Package catalog holds the pre-authored static events used when procedural
// generation comes up empty.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/madlib"
	"github.com/danielpatrickdp/lotus-engine/internal/outcome"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region types

// Option is one authored answer to a static event.
type Option struct {
	Text           string             `json:"text"`
	Requirements   map[string]int     `json:"requirements,omitempty"`
	RiskChance     int                `json:"risk_chance"`
	SuccessOutcome state.StatProfile  `json:"success_outcome"`
	SuccessResult  string             `json:"success_result,omitempty"`
	FailureOutcome *state.StatProfile `json:"failure_outcome,omitempty"`
	FailureResult  string             `json:"failure_result,omitempty"`
}

// Event is a static, hand-authored event. Generic events ignore life stage.
type Event struct {
	ID          int64    `json:"-"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	MinTier     int      `json:"min_tier"`
	MaxTier     int      `json:"max_tier"`
	IsGeneric   bool     `json:"is_generic"`
	LifeStage   int      `json:"life_stage"`
	Options     []Option `json:"options"`
}

// #endregion types

// #region load

// LoadJSON reads a JSON array of events. Events with fewer than two options
// are rejected since they cannot be played.
func LoadJSON(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, e := range events {
		if len(e.Options) < library.MinChoices {
			return nil, fmt.Errorf("event %d (%q): %d options, need at least %d", i, e.Title, len(e.Options), library.MinChoices)
		}
		if e.MinTier > e.MaxTier {
			return nil, fmt.Errorf("event %d (%q): invalid tier range [%d, %d]", i, e.Title, e.MinTier, e.MaxTier)
		}
	}
	return events, nil
}

// #endregion load

// #region convert

// ToGenerated renders the event in the shape the host consumes. The result has
// no situation ID, so it is never recorded in the context. At most four
// options are kept and risk is clamped like generated risk.
func (e Event) ToGenerated() *generator.GeneratedEvent {
	opts := e.Options
	if len(opts) > library.MaxChoices {
		opts = opts[:library.MaxChoices]
	}

	choices := make([]generator.GeneratedChoice, 0, len(opts))
	for _, o := range opts {
		var failure state.StatProfile
		if o.FailureOutcome != nil {
			failure = *o.FailureOutcome
		}
		success := o.SuccessResult
		if success == "" {
			success = madlib.SuccessText(o.Text, o.SuccessOutcome.SCS > 0)
		}
		failureText := o.FailureResult
		if failureText == "" {
			failureText = madlib.FailureText(o.Text)
		}
		choices = append(choices, generator.GeneratedChoice{
			Text:         o.Text,
			SuccessDelta: o.SuccessOutcome,
			FailureDelta: failure,
			Risk:         min(max(o.RiskChance, outcome.MinRisk), outcome.MaxRisk),
			Requirements: o.Requirements,
			SuccessText:  success,
			FailureText:  failureText,
		})
	}

	return &generator.GeneratedEvent{
		Title:       e.Title,
		Description: e.Description,
		TierMin:     e.MinTier,
		TierMax:     e.MaxTier,
		Choices:     choices,
	}
}

// #endregion convert
