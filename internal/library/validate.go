package library

import (
	"errors"
	"fmt"
)

// Hard bounds on authored numbers.
const (
	MaxBaseRisk = 95
	MinChoices  = 2
	MaxChoices  = 4
)

var errDuplicateID = errors.New("duplicate situation id")

// validate enforces the structural invariants of one template.
func validate(t SituationTemplate) error {
	if t.ID == "" {
		return errors.New("missing id")
	}
	if t.Domain == "" {
		return errors.New("missing domain")
	}
	if t.TierMin < 0 || t.TierMin > t.TierMax {
		return fmt.Errorf("invalid tier range [%d, %d]", t.TierMin, t.TierMax)
	}
	if t.LifeStageMin < 0 || t.LifeStageMin > t.LifeStageMax {
		return fmt.Errorf("invalid life stage range [%d, %d]", t.LifeStageMin, t.LifeStageMax)
	}
	if !t.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", t.Severity)
	}
	if t.BaseRisk < 0 || t.BaseRisk > MaxBaseRisk {
		return fmt.Errorf("base risk %d outside [0, %d]", t.BaseRisk, MaxBaseRisk)
	}
	if len(t.Fragments.Openings) == 0 || len(t.Fragments.Conflicts) == 0 || len(t.Fragments.Stakes) == 0 {
		return errors.New("openings, conflicts and stakes must all be non-empty")
	}
	if len(t.Choices) < MinChoices {
		return fmt.Errorf("%d choices authored, need at least %d", len(t.Choices), MinChoices)
	}
	for i, c := range t.Choices {
		if !c.Archetype.Valid() {
			return fmt.Errorf("choice %d: unknown archetype %q", i, c.Archetype)
		}
		if len(c.TextFragments) == 0 {
			return fmt.Errorf("choice %d: no text fragments", i)
		}
		for stat, threshold := range c.Requirements {
			if threshold < 0 {
				return fmt.Errorf("choice %d: negative requirement %s=%d", i, stat, threshold)
			}
		}
	}
	return nil
}
