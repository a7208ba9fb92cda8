package state

// #region stat-names

// Stat names usable as requirement keys.
const (
	StatSCS           = "scs"
	StatFinance       = "finance"
	StatCareerLevel   = "career_level"
	StatGuanxiFamily  = "guanxi_family"
	StatGuanxiNetwork = "guanxi_network"
	StatGuanxiParty   = "guanxi_party"
)

// StatNames lists every tracked stat in a fixed order.
var StatNames = []string{
	StatSCS, StatFinance, StatCareerLevel,
	StatGuanxiFamily, StatGuanxiNetwork, StatGuanxiParty,
}

// Progression bounds.
const (
	MaxTier      = 4
	MaxLifeStage = 4
)

// #endregion stat-names

// #region player-state

// PlayerState is the read-only snapshot the engine generates against.
type PlayerState struct {
	Tier          int `json:"tier"`
	LifeStage     int `json:"life_stage"`
	SCS           int `json:"scs"`
	Finance       int `json:"finance"`
	CareerLevel   int `json:"career_level"`
	GuanxiFamily  int `json:"guanxi_family"`
	GuanxiNetwork int `json:"guanxi_network"`
	GuanxiParty   int `json:"guanxi_party"`
}

// Value returns the named stat. Unknown names read as 0.
func (p PlayerState) Value(stat string) int {
	switch stat {
	case StatSCS:
		return p.SCS
	case StatFinance:
		return p.Finance
	case StatCareerLevel:
		return p.CareerLevel
	case StatGuanxiFamily:
		return p.GuanxiFamily
	case StatGuanxiNetwork:
		return p.GuanxiNetwork
	case StatGuanxiParty:
		return p.GuanxiParty
	default:
		return 0
	}
}

// Stats returns every tracked stat keyed by name.
func (p PlayerState) Stats() map[string]int {
	out := make(map[string]int, len(StatNames))
	for _, name := range StatNames {
		out[name] = p.Value(name)
	}
	return out
}

// WithStat returns a copy with the named stat set. Unknown names are ignored.
func (p PlayerState) WithStat(stat string, v int) PlayerState {
	switch stat {
	case StatSCS:
		p.SCS = v
	case StatFinance:
		p.Finance = v
	case StatCareerLevel:
		p.CareerLevel = v
	case StatGuanxiFamily:
		p.GuanxiFamily = v
	case StatGuanxiNetwork:
		p.GuanxiNetwork = v
	case StatGuanxiParty:
		p.GuanxiParty = v
	}
	return p
}

// Apply returns the state after adding delta to every stat.
// Relationship and career stats never drop below zero.
func (p PlayerState) Apply(delta StatProfile) PlayerState {
	p.SCS += delta.SCS
	p.Finance += delta.Finance
	p.CareerLevel = max(p.CareerLevel+delta.CareerLevel, 0)
	p.GuanxiFamily = max(p.GuanxiFamily+delta.GuanxiFamily, 0)
	p.GuanxiNetwork = max(p.GuanxiNetwork+delta.GuanxiNetwork, 0)
	p.GuanxiParty = max(p.GuanxiParty+delta.GuanxiParty, 0)
	return p
}

// #endregion player-state

// #region stat-profile

// StatProfile holds one signed delta per tracked stat.
type StatProfile struct {
	SCS           int `toml:"scs_change" json:"scs_change"`
	Finance       int `toml:"finance_change" json:"finance_change"`
	CareerLevel   int `toml:"career_level_change" json:"career_level_change"`
	GuanxiFamily  int `toml:"guanxi_family_change" json:"guanxi_family_change"`
	GuanxiNetwork int `toml:"guanxi_network_change" json:"guanxi_network_change"`
	GuanxiParty   int `toml:"guanxi_party_change" json:"guanxi_party_change"`
}

// Map applies fn to every field and returns the result.
func (s StatProfile) Map(fn func(int) int) StatProfile {
	return StatProfile{
		SCS:           fn(s.SCS),
		Finance:       fn(s.Finance),
		CareerLevel:   fn(s.CareerLevel),
		GuanxiFamily:  fn(s.GuanxiFamily),
		GuanxiNetwork: fn(s.GuanxiNetwork),
		GuanxiParty:   fn(s.GuanxiParty),
	}
}

// Add sums two profiles field by field.
func (s StatProfile) Add(o StatProfile) StatProfile {
	return StatProfile{
		SCS:           s.SCS + o.SCS,
		Finance:       s.Finance + o.Finance,
		CareerLevel:   s.CareerLevel + o.CareerLevel,
		GuanxiFamily:  s.GuanxiFamily + o.GuanxiFamily,
		GuanxiNetwork: s.GuanxiNetwork + o.GuanxiNetwork,
		GuanxiParty:   s.GuanxiParty + o.GuanxiParty,
	}
}

// IsZero reports whether every delta is zero.
func (s StatProfile) IsZero() bool {
	return s == StatProfile{}
}

// #endregion stat-profile
