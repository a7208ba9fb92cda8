package state

import "testing"

func TestPlayerState_ValueUnknownIsZero(t *testing.T) {
	p := PlayerState{GuanxiParty: 4}
	if got := p.Value("guanxi_party"); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if got := p.Value("charisma"); got != 0 {
		t.Errorf("expected 0 for unknown stat, got %d", got)
	}
}

func TestPlayerState_WithStatRoundTrip(t *testing.T) {
	p := PlayerState{}
	for i, name := range StatNames {
		p = p.WithStat(name, i+1)
	}
	for i, name := range StatNames {
		if got := p.Value(name); got != i+1 {
			t.Errorf("%s: expected %d, got %d", name, i+1, got)
		}
	}
}

func TestPlayerState_ApplyFloorsRelationships(t *testing.T) {
	p := PlayerState{SCS: 500, GuanxiFamily: 1, CareerLevel: 2}
	next := p.Apply(StatProfile{SCS: -600, GuanxiFamily: -3, CareerLevel: 1})

	if next.SCS != -100 {
		t.Errorf("SCS is unbounded, expected -100, got %d", next.SCS)
	}
	if next.GuanxiFamily != 0 {
		t.Errorf("expected guanxi floor 0, got %d", next.GuanxiFamily)
	}
	if next.CareerLevel != 3 {
		t.Errorf("expected career 3, got %d", next.CareerLevel)
	}
	if p.SCS != 500 {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestStatProfile_Map(t *testing.T) {
	s := StatProfile{SCS: 2, Finance: -3}
	got := s.Map(func(v int) int { return v * 10 })
	if got.SCS != 20 || got.Finance != -30 || got.GuanxiParty != 0 {
		t.Errorf("unexpected map result: %+v", got)
	}
	if !(StatProfile{}).IsZero() {
		t.Error("zero profile should report IsZero")
	}
}

func TestStatProfile_Add(t *testing.T) {
	a := StatProfile{SCS: 3, Finance: -2, GuanxiParty: 1}
	b := StatProfile{SCS: -3, Finance: 5, CareerLevel: 1}
	got := a.Add(b)
	want := StatProfile{Finance: 3, CareerLevel: 1, GuanxiParty: 1}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
