package generator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

func template(id string, domain library.Domain, tierMin, tierMax, stageMin, stageMax int) library.SituationTemplate {
	return library.SituationTemplate{
		ID:           id,
		Domain:       domain,
		TierMin:      tierMin,
		TierMax:      tierMax,
		LifeStageMin: stageMin,
		LifeStageMax: stageMax,
		Severity:     library.SeverityMedium,
		BaseRisk:     20,
		Fragments: library.NarrativeFragments{
			Openings:  []string{"Your manager calls you in on {day}."},
			Conflicts: []string{"There is a problem."},
			Stakes:    []string{"Your record is at risk."},
		},
		Choices: []library.ChoiceArchetype{
			{
				Archetype:     library.ArchetypeConform,
				TextFragments: []string{"Agree."},
				Success:       state.StatProfile{SCS: 15},
				Failure:       state.StatProfile{SCS: -5},
				RiskModifier:  -10,
				Requirements:  map[string]int{state.StatGuanxiNetwork: 2},
			},
			{
				Archetype:     library.ArchetypeResist,
				TextFragments: []string{"Refuse."},
				Success:       state.StatProfile{Finance: 2},
				Failure:       state.StatProfile{SCS: -8},
				RiskModifier:  10,
			},
		},
	}
}

var testVars = library.Variables{Flat: map[string][]string{"day": {"Monday"}}}

func mustLibrary(t *testing.T, templates ...library.SituationTemplate) *library.Library {
	t.Helper()
	lib, err := library.New(templates, testVars)
	if err != nil {
		t.Fatalf("library.New: %v", err)
	}
	return lib
}

func TestGenerate_OutcomeTextNamesArchetype(t *testing.T) {
	tpl := template("fits", library.DomainWork, 1, 3, 2, 4)
	tpl.Choices[0].TextFragments = []string{"I'll stay late again."}
	lib := mustLibrary(t, tpl)
	player := state.PlayerState{Tier: 1, LifeStage: 2, GuanxiNetwork: 2}

	res := Generate(player, lib, tracker.New(), &rng.Scripted{Floats: []float64{0.99, 0.5, 0.5}})
	if !res.Generated() {
		t.Fatalf("expected an event, attempts: %+v", res.Attempts)
	}
	c := res.Event.Choices[0]
	if c.Text != "I'll stay late again." {
		t.Errorf("unexpected display text %q", c.Text)
	}
	if c.SuccessText != "You chose to conform. Things went well." {
		t.Errorf("unexpected success text %q", c.SuccessText)
	}
	if c.FailureText != "You chose to conform, but it backfired. Things didn't go as planned." {
		t.Errorf("unexpected failure text %q", c.FailureText)
	}
}

func TestGenerate_NilContext(t *testing.T) {
	lib := mustLibrary(t, template("fits", library.DomainWork, 1, 3, 2, 4))
	player := state.PlayerState{Tier: 1, LifeStage: 2, GuanxiNetwork: 2}

	res := Generate(player, lib, nil, &rng.Scripted{Floats: []float64{0.99, 0.5, 0.5}})
	if !res.Generated() || res.Event.SituationID != "fits" {
		t.Fatalf("expected fits from an empty history, attempts: %+v", res.Attempts)
	}
}

func TestGenerate_SoleCandidateStatsAndRisk(t *testing.T) {
	lib := mustLibrary(t,
		template("fits", library.DomainWork, 1, 3, 2, 4),
		template("senior", library.DomainParty, 4, 4, 2, 4),
	)
	player := state.PlayerState{Tier: 1, LifeStage: 2, GuanxiNetwork: 2}

	// wildcard miss, then one variance draw of 1.0 per choice
	src := &rng.Scripted{Floats: []float64{0.99, 0.5, 0.5}}
	res := Generate(player, lib, tracker.New(), src)
	if !res.Generated() {
		t.Fatalf("expected an event, attempts: %+v", res.Attempts)
	}

	ev := res.Event
	if ev.SituationID != "fits" || ev.Domain != library.DomainWork {
		t.Errorf("unexpected event origin %s/%s", ev.Domain, ev.SituationID)
	}
	if ev.Title != "Work - Medium Severity" {
		t.Errorf("unexpected title %q", ev.Title)
	}
	if ev.Description != "Your manager calls you in on Monday. There is a problem. Your record is at risk." {
		t.Errorf("unexpected description %q", ev.Description)
	}
	if len(ev.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(ev.Choices))
	}

	conform := ev.Choices[0]
	if conform.SuccessDelta.SCS != 45 {
		t.Errorf("expected success delta 45, got %d", conform.SuccessDelta.SCS)
	}
	if conform.FailureDelta.SCS != -15 {
		t.Errorf("expected failure delta -15, got %d", conform.FailureDelta.SCS)
	}
	if conform.Risk != 10 {
		t.Errorf("expected risk 20 + 0 - 10 = 10, got %d", conform.Risk)
	}
	if conform.SuccessText != "You chose to conform. Things went well." {
		t.Errorf("unexpected success text %q", conform.SuccessText)
	}
	if ev.Choices[1].FailureText != "You chose to resist, but it backfired. Things didn't go as planned." {
		t.Errorf("unexpected failure text %q", ev.Choices[1].FailureText)
	}
	if len(res.Attempts) != 1 || res.Attempts[0].Failure != FailureNone {
		t.Errorf("expected one clean attempt, got %+v", res.Attempts)
	}
}

func TestGenerate_ExhaustedReturnsNothing(t *testing.T) {
	lib := mustLibrary(t, template("senior", library.DomainParty, 4, 4, 0, 4))

	res := Generate(state.PlayerState{Tier: 0, LifeStage: 1}, lib, tracker.New(), rng.New(1))
	if res.Generated() {
		t.Fatal("no template fits tier 0, expected nothing")
	}
	if len(res.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(res.Attempts))
	}
	for _, a := range res.Attempts {
		if a.Failure != FailureSelection {
			t.Errorf("attempt %d: expected selection failure, got %s", a.Number, a.Failure)
		}
	}
}

func TestGenerate_RetriesPastBrokenTemplate(t *testing.T) {
	broken := template("broken", library.DomainWork, 0, 4, 0, 4)
	broken.Fragments.Stakes = []string{"You owe {debt}."}
	good := template("good", library.DomainWork, 0, 4, 0, 4)

	lib := mustLibrary(t, broken, good)
	player := state.PlayerState{GuanxiNetwork: 5}

	// first draw of a two-way tie picks the authored-first template
	res := Generate(player, lib, tracker.New(), &rng.Scripted{})
	if !res.Generated() {
		t.Fatalf("expected retry to succeed, attempts: %+v", res.Attempts)
	}
	if res.Event.SituationID != "good" {
		t.Errorf("expected good, got %s", res.Event.SituationID)
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(res.Attempts))
	}
	if res.Attempts[0].SituationID != "broken" || res.Attempts[0].Failure != FailurePlaceholder {
		t.Errorf("unexpected first attempt %+v", res.Attempts[0])
	}
}

func TestGenerate_ChoiceSetInvalid(t *testing.T) {
	tpl := template("gated", library.DomainFamily, 0, 4, 0, 4)
	tpl.Choices[1].Requirements = map[string]int{state.StatGuanxiParty: 9}
	lib := mustLibrary(t, tpl)

	res := Generate(state.PlayerState{}, lib, tracker.New(), &rng.Scripted{})
	if res.Generated() {
		t.Fatal("expected no event when only one choice is eligible")
	}
	if res.Attempts[0].Failure != FailureChoiceSet {
		t.Errorf("expected choice set failure, got %s", res.Attempts[0].Failure)
	}
	// the failing template is excluded, so later attempts find nothing to select
	if res.Attempts[1].Failure != FailureSelection {
		t.Errorf("expected selection failure on retry, got %s", res.Attempts[1].Failure)
	}
}

func TestGenerate_DoesNotMutateContext(t *testing.T) {
	lib, err := library.Default()
	if err != nil {
		t.Fatalf("library.Default: %v", err)
	}
	ctx := tracker.New()
	Generate(state.PlayerState{Tier: 2, LifeStage: 2}, lib, ctx, rng.New(3))
	if ctx.Counter() != 0 {
		t.Errorf("generation must not record, counter=%d", ctx.Counter())
	}
}

func TestGenerate_SeedDeterministic(t *testing.T) {
	lib, err := library.Default()
	if err != nil {
		t.Fatalf("library.Default: %v", err)
	}
	player := state.PlayerState{Tier: 2, LifeStage: 3, GuanxiNetwork: 3, GuanxiParty: 2}

	render := func() string {
		res := Generate(player, lib, tracker.New(), rng.New(42))
		b, err := json.Marshal(res.Event)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return string(b)
	}

	first := render()
	for i := 0; i < 3; i++ {
		if got := render(); got != first {
			t.Fatalf("same seed produced different output:\n%s\n%s", first, got)
		}
	}
}

func TestGenerate_PropertiesOverLongSession(t *testing.T) {
	lib, err := library.Default()
	if err != nil {
		t.Fatalf("library.Default: %v", err)
	}
	gen := New(lib, DefaultConfig())
	src := rng.New(2024)
	ctx := tracker.New()

	type record struct {
		id       string
		domain   library.Domain
		wildcard bool
	}
	var history []record

	for turn := 0; turn < 300; turn++ {
		player := state.PlayerState{
			Tier:          turn / 60,
			LifeStage:     turn / 60,
			GuanxiNetwork: 2,
			GuanxiFamily:  2,
			GuanxiParty:   2,
		}
		res := gen.Generate(player, ctx, src)
		if !res.Generated() {
			continue
		}
		ev := res.Event

		if n := len(ev.Choices); n < library.MinChoices || n > library.MaxChoices {
			t.Fatalf("turn %d: %d choices", turn, n)
		}
		if library.HasPlaceholder(ev.Description) {
			t.Fatalf("turn %d: unresolved token in %q", turn, ev.Description)
		}
		for _, c := range ev.Choices {
			if c.Risk < 0 || c.Risk > 95 {
				t.Fatalf("turn %d: risk %d out of range", turn, c.Risk)
			}
			if library.HasPlaceholder(c.Text) || strings.TrimSpace(c.Text) == "" {
				t.Fatalf("turn %d: bad choice text %q", turn, c.Text)
			}
		}

		start := max(0, len(history)-30)
		for _, prev := range history[start:] {
			if prev.id == ev.SituationID {
				t.Fatalf("turn %d: %s repeated within 30 events", turn, ev.SituationID)
			}
		}
		if !ev.Wildcard {
			for _, prev := range history[max(0, len(history)-2):] {
				if prev.domain == ev.Domain {
					t.Fatalf("turn %d: domain %s repeated within 2 events", turn, ev.Domain)
				}
			}
		}

		history = append(history, record{id: ev.SituationID, domain: ev.Domain, wildcard: ev.Wildcard})
		ctx.Record(string(ev.Domain), ev.SituationID)
	}

	if len(history) == 0 {
		t.Fatal("expected at least some generated events")
	}
}
