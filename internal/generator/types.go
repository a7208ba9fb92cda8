package generator

import (
	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region failure-type

// FailureType categorizes why a generation attempt failed.
type FailureType string

const (
	FailureNone        FailureType = "none"
	FailureSelection   FailureType = "selection_exhausted"
	FailureChoiceSet   FailureType = "choice_set_invalid"
	FailurePlaceholder FailureType = "unresolved_placeholder"
	FailureAssembly    FailureType = "assembly"
)

// #endregion

// #region generated-event

// GeneratedChoice is one fully computed option of an event.
type GeneratedChoice struct {
	Text         string            `json:"text"`
	Archetype    library.Archetype `json:"archetype"`
	SuccessDelta state.StatProfile `json:"success_delta"`
	FailureDelta state.StatProfile `json:"failure_delta"`
	Risk         int               `json:"risk"`
	Requirements map[string]int    `json:"requirements,omitempty"`
	SuccessText  string            `json:"success_text"`
	FailureText  string            `json:"failure_text"`
}

// GeneratedEvent is a complete event ready for the host to render.
// SituationID is empty for events that did not come from the library.
type GeneratedEvent struct {
	SituationID string            `json:"situation_id"`
	Domain      library.Domain    `json:"domain"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    library.Severity  `json:"severity"`
	TierMin     int               `json:"tier_min"`
	TierMax     int               `json:"tier_max"`
	Wildcard    bool              `json:"wildcard"`
	Choices     []GeneratedChoice `json:"choices"`
}

// Procedural reports whether the event came from the template library and
// must be recorded in the context once resolved.
func (e *GeneratedEvent) Procedural() bool {
	return e.SituationID != ""
}

// #endregion

// #region result

// Attempt records one pass through select, assemble and compute.
type Attempt struct {
	Number      int
	SituationID string // empty when selection itself failed
	Failure     FailureType
	Err         error
}

// Result is either a generated event or nothing, plus the attempt trail.
// A nil Event is the signal to fall back to the static catalog.
type Result struct {
	Event    *GeneratedEvent
	Attempts []Attempt
}

// Generated reports whether an event was produced.
func (r Result) Generated() bool {
	return r.Event != nil
}

// #endregion
