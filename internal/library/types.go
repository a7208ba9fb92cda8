package library

import (
	"maps"
	"slices"

	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region domain

// Domain is the thematic category a situation belongs to.
type Domain string

const (
	DomainWork   Domain = "work"
	DomainFamily Domain = "family"
	DomainPublic Domain = "public"
	DomainParty  Domain = "party"
)

// Label returns the display form of the domain ("work" → "Work").
func (d Domain) Label() string {
	if d == "" {
		return ""
	}
	b := []byte(d)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// #endregion domain

// #region severity

// Severity scales the stat impact of a situation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of the three authored severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Label returns "Low", "Medium" or "High".
func (s Severity) Label() string {
	return Domain(s).Label()
}

// #endregion severity

// #region archetype

// Archetype is the behavioral category of a choice.
type Archetype string

const (
	ArchetypeConform    Archetype = "conform"
	ArchetypeResist     Archetype = "resist"
	ArchetypeManipulate Archetype = "manipulate"
	ArchetypeIgnore     Archetype = "ignore"
)

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	switch a {
	case ArchetypeConform, ArchetypeResist, ArchetypeManipulate, ArchetypeIgnore:
		return true
	}
	return false
}

// #endregion archetype

// #region templates

// NarrativeFragments are the three ordered pools a description is built from.
type NarrativeFragments struct {
	Openings  []string `toml:"openings"`
	Conflicts []string `toml:"conflicts"`
	Stakes    []string `toml:"stakes"`
}

// ChoiceArchetype is one authored choice of a situation.
type ChoiceArchetype struct {
	Archetype     Archetype         `toml:"archetype"`
	TextFragments []string          `toml:"text_fragments"`
	Success       state.StatProfile `toml:"success"`
	Failure       state.StatProfile `toml:"failure"`
	RiskModifier  int               `toml:"risk_modifier"`
	Requirements  map[string]int    `toml:"requirements"`
}

// SituationTemplate is an immutable, authored situation.
type SituationTemplate struct {
	ID           string             `toml:"id"`
	Domain       Domain             `toml:"domain"`
	TierMin      int                `toml:"tier_min"`
	TierMax      int                `toml:"tier_max"`
	LifeStageMin int                `toml:"life_stage_min"`
	LifeStageMax int                `toml:"life_stage_max"`
	Severity     Severity           `toml:"severity"`
	BaseRisk     int                `toml:"base_risk"`
	Fragments    NarrativeFragments `toml:"fragments"`
	Choices      []ChoiceArchetype  `toml:"choices"`
}

// Clone returns a deep copy sharing no slices or maps with t.
func (t *SituationTemplate) Clone() SituationTemplate {
	c := *t
	c.Fragments = NarrativeFragments{
		Openings:  slices.Clone(t.Fragments.Openings),
		Conflicts: slices.Clone(t.Fragments.Conflicts),
		Stakes:    slices.Clone(t.Fragments.Stakes),
	}
	c.Choices = make([]ChoiceArchetype, len(t.Choices))
	for i, ch := range t.Choices {
		ch.TextFragments = slices.Clone(ch.TextFragments)
		ch.Requirements = maps.Clone(ch.Requirements)
		c.Choices[i] = ch
	}
	return c
}

// CoversTier reports whether tier lies within the inclusive tier range.
func (t *SituationTemplate) CoversTier(tier int) bool {
	return t.TierMin <= tier && tier <= t.TierMax
}

// CoversLifeStage reports whether stage lies within the inclusive life-stage range.
func (t *SituationTemplate) CoversLifeStage(stage int) bool {
	return t.LifeStageMin <= stage && stage <= t.LifeStageMax
}

// #endregion templates

// #region variables

// Variables holds the madlibs substitution pools.
// Tiered pools map category → tier → entries; flat pools are tier-independent.
type Variables struct {
	Tiered map[string]map[int][]string
	Flat   map[string][]string
}

// #endregion variables
