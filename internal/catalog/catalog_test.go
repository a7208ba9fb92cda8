package catalog

import (
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/storage"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func loadFixture(t *testing.T) []Event {
	t.Helper()
	f, err := os.Open("testdata/events.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	events, err := LoadJSON(f)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	return events
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(newTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Import(loadFixture(t)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	return s
}

func TestLoadJSON_Fixture(t *testing.T) {
	events := loadFixture(t)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	exam := events[0]
	if exam.Options[1].FailureOutcome == nil || exam.Options[1].FailureOutcome.GuanxiFamily != -2 {
		t.Errorf("expected failure outcome decoded, got %+v", exam.Options[1].FailureOutcome)
	}
	if exam.Options[0].FailureOutcome != nil {
		t.Error("option without failure_outcome should decode to nil")
	}
}

func TestLoadJSON_RejectsSingleOption(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`[{"title":"x","min_tier":0,"max_tier":1,"options":[{"text":"only"}]}]`))
	if err == nil {
		t.Fatal("expected error for single-option event")
	}
}

func TestLoadJSON_RejectsInvertedTiers(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`[{"title":"x","min_tier":3,"max_tier":1,"options":[{"text":"a"},{"text":"b"}]}]`))
	if err == nil {
		t.Fatal("expected error for inverted tier range")
	}
}

func TestStore_ImportReplaces(t *testing.T) {
	s := newTestStore(t)
	if err := s.Import(loadFixture(t)[:1]); err != nil {
		t.Fatalf("Import: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected import to replace, got %d rows", n)
	}
}

func TestStore_CandidatesByTierAndStage(t *testing.T) {
	s := newTestStore(t)

	cases := []struct {
		tier, stage int
		want        []string
	}{
		{0, 0, []string{"School Entrance Exam", "Neighborhood Clean-Up"}},
		{0, 2, []string{"Neighborhood Clean-Up"}},
		{3, 3, []string{"Neighborhood Clean-Up", "Promotion Banquet"}},
		{2, 0, []string{"Neighborhood Clean-Up"}},
	}
	for _, c := range cases {
		got, err := s.Candidates(c.tier, c.stage)
		if err != nil {
			t.Fatalf("Candidates: %v", err)
		}
		if len(got) != len(c.want) {
			t.Errorf("tier %d stage %d: expected %d candidates, got %d", c.tier, c.stage, len(c.want), len(got))
			continue
		}
		for i := range got {
			if got[i].Title != c.want[i] {
				t.Errorf("tier %d stage %d: candidate %d expected %q, got %q", c.tier, c.stage, i, c.want[i], got[i].Title)
			}
		}
	}
}

func TestStore_LookupRoundTripsOptions(t *testing.T) {
	s := newTestStore(t)

	e, ok, err := s.Lookup(3, 3, &rng.Scripted{Ints: []int{1}})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a candidate")
	}
	if e.Title != "Promotion Banquet" {
		t.Fatalf("expected Promotion Banquet, got %q", e.Title)
	}
	if e.Options[0].Requirements["guanxi_network"] != 2 {
		t.Errorf("requirements lost in storage: %+v", e.Options[0].Requirements)
	}
}

func TestStore_LookupEmpty(t *testing.T) {
	s, err := NewStore(newTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.Lookup(0, 0, rng.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("empty catalog should yield nothing")
	}
}

func TestEvent_ToGenerated(t *testing.T) {
	exam := loadFixture(t)[0]
	ev := exam.ToGenerated()

	if ev.Procedural() {
		t.Error("static events must not carry a situation id")
	}
	if len(ev.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(ev.Choices))
	}
	study := ev.Choices[0]
	if study.SuccessText != "Your scores improve and your parents are pleased." {
		t.Errorf("authored result text should be kept, got %q", study.SuccessText)
	}
	if !study.FailureDelta.IsZero() {
		t.Error("missing failure outcome should convert to a zero delta")
	}
	alone := ev.Choices[1]
	if alone.Risk != 30 || alone.FailureDelta.SCS != -2 {
		t.Errorf("unexpected converted choice %+v", alone)
	}
	if alone.SuccessText != "You chose to study alone your own way. Things went well." {
		t.Errorf("unexpected default success text %q", alone.SuccessText)
	}
}
