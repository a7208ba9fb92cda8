package eventsvc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region messages

// GenerateRequest asks for the next event of a session. Seed is read only
// when the session is first seen.
type GenerateRequest struct {
	Session   string `json:"session"`
	Seed      Seed   `json:"seed"`
	Tier      int    `json:"tier"`
	LifeStage int    `json:"life_stage"`
	Stats     Stats  `json:"stats"`
}

// Seed travels as a decimal string so every uint64 survives the double that
// Struct uses for numbers. Plain numbers are still accepted and clamped to the
// uint64 range.
type Seed uint64

func (s Seed) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(s), 10))
}

func (s *Seed) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return fmt.Errorf("seed %q: %w", text, err)
		}
		*s = Seed(v)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	switch {
	case f <= 0:
		*s = 0
	case f >= math.MaxUint64:
		*s = math.MaxUint64
	default:
		*s = Seed(f)
	}
	return nil
}

// Stats carries the non-progression half of a PlayerState.
type Stats struct {
	SCS           int `json:"scs"`
	Finance       int `json:"finance"`
	CareerLevel   int `json:"career_level"`
	GuanxiFamily  int `json:"guanxi_family"`
	GuanxiNetwork int `json:"guanxi_network"`
	GuanxiParty   int `json:"guanxi_party"`
}

// Player assembles the full snapshot.
func (r GenerateRequest) Player() state.PlayerState {
	return state.PlayerState{
		Tier:          r.Tier,
		LifeStage:     r.LifeStage,
		SCS:           r.Stats.SCS,
		Finance:       r.Stats.Finance,
		CareerLevel:   r.Stats.CareerLevel,
		GuanxiFamily:  r.Stats.GuanxiFamily,
		GuanxiNetwork: r.Stats.GuanxiNetwork,
		GuanxiParty:   r.Stats.GuanxiParty,
	}
}

// NewGenerateRequest fills a request from a player snapshot.
func NewGenerateRequest(session string, seed uint64, p state.PlayerState) GenerateRequest {
	return GenerateRequest{
		Session:   session,
		Seed:      Seed(seed),
		Tier:      p.Tier,
		LifeStage: p.LifeStage,
		Stats: Stats{
			SCS:           p.SCS,
			Finance:       p.Finance,
			CareerLevel:   p.CareerLevel,
			GuanxiFamily:  p.GuanxiFamily,
			GuanxiNetwork: p.GuanxiNetwork,
			GuanxiParty:   p.GuanxiParty,
		},
	}
}

// GenerateResponse wraps the event with where it came from.
type GenerateResponse struct {
	Source   string                    `json:"source"`
	Attempts int                       `json:"attempts"`
	Event    *generator.GeneratedEvent `json:"event"`
}

// RecordRequest marks a resolved event. An empty SituationID only advances
// the session's counter.
type RecordRequest struct {
	Session     string `json:"session"`
	Domain      string `json:"domain"`
	SituationID string `json:"situation_id"`
}

// RecordResponse reports the session counter after recording.
type RecordResponse struct {
	Counter uint64 `json:"counter"`
}

// #endregion messages

// #region conversion

// toStruct encodes v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return out, nil
}

// fromStruct decodes s into v through its JSON form.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

// #endregion conversion
