package selector

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// ErrChoiceSetInvalid means fewer than library.MinChoices choices are eligible.
var ErrChoiceSetInvalid = errors.New("selector: too few eligible choices")

// Eligible reports whether player meets every requirement of c.
func Eligible(c library.ChoiceArchetype, player state.PlayerState) bool {
	for stat, threshold := range c.Requirements {
		if player.Value(stat) < threshold {
			return false
		}
	}
	return true
}

// AssembleChoices returns the eligible choices of tpl in authored order,
// truncated to library.MaxChoices.
func AssembleChoices(tpl *library.SituationTemplate, player state.PlayerState) ([]library.ChoiceArchetype, error) {
	out := make([]library.ChoiceArchetype, 0, library.MaxChoices)
	for _, c := range tpl.Choices {
		if !Eligible(c, player) {
			continue
		}
		out = append(out, c)
		if len(out) == library.MaxChoices {
			break
		}
	}
	if len(out) < library.MinChoices {
		return nil, fmt.Errorf("%w: %s has %d", ErrChoiceSetInvalid, tpl.ID, len(out))
	}
	return out, nil
}
