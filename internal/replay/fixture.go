package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description  string            `json:"description"`
	Seed         uint64            `json:"seed"`
	Start        state.PlayerState `json:"start"`
	Turns        int               `json:"turns"`
	ChoicePolicy ChoicePolicy      `json:"choice_policy"`
	AdvanceEvery int               `json:"advance_every"`
	Expected     FixtureExpected   `json:"expected"`
}

// FixtureExpected holds the bounds a run must stay within.
type FixtureExpected struct {
	MinProcedural int `json:"min_procedural"`
	MaxNoEvents   int `json:"max_no_events"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Turns <= 0 {
		return nil, fmt.Errorf("fixture %s: turns must be positive", path)
	}
	switch f.ChoicePolicy {
	case "":
		f.ChoicePolicy = PolicyFirst
	case PolicyFirst, PolicySafest, PolicyRandom:
	default:
		return nil, fmt.Errorf("fixture %s: unknown choice policy %q", path, f.ChoicePolicy)
	}
	return &f, nil
}

// ToReplayConfig converts the fixture's run settings.
func (f *Fixture) ToReplayConfig() ReplayConfig {
	return ReplayConfig{
		Turns:        f.Turns,
		Policy:       f.ChoicePolicy,
		AdvanceEvery: f.AdvanceEvery,
	}
}

// Run replays f through d with a generator seeded from the fixture.
func Run(d *director.Director, f *Fixture) ([]ReplayResult, ReplaySummary, error) {
	results, err := Replay(d, f.Start, f.ToReplayConfig(), rng.New(f.Seed))
	if err != nil {
		return nil, ReplaySummary{}, err
	}
	return results, Summarize(results, f.Start), nil
}

// Check compares a summary against the fixture's expectations.
func (f *Fixture) Check(s ReplaySummary) []string {
	var problems []string
	problems = append(problems, s.Violations...)
	if s.Procedural < f.Expected.MinProcedural {
		problems = append(problems, fmt.Sprintf("procedural turns %d below expected %d", s.Procedural, f.Expected.MinProcedural))
	}
	if s.NoEvents > f.Expected.MaxNoEvents {
		problems = append(problems, fmt.Sprintf("%d turns without an event, expected at most %d", s.NoEvents, f.Expected.MaxNoEvents))
	}
	return problems
}

// #endregion fixture-loader
