package library

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region sources

// Source is one raw TOML document. Template sources carry the domain their
// entries default to; the variables source leaves Domain empty.
type Source struct {
	Name   string
	Domain Domain
	Data   []byte
}

//go:embed content/*.toml
var embedded embed.FS

const (
	eventsSuffix  = "_events.toml"
	variablesFile = "variables.toml"
)

// #endregion sources

// #region load

// Load parses every template source and the variables source independently.
// Malformed entries are skipped and recorded as warnings; only a total absence
// of templates is an error.
func Load(templates []Source, variables Source) (*Library, error) {
	lib := &Library{
		byDomain: make(map[Domain][]SituationTemplate),
		byID:     make(map[string]*SituationTemplate),
	}
	for _, src := range templates {
		lib.loadTemplates(src)
	}
	lib.variables = lib.loadVariables(variables)
	return lib.finish()
}

// LoadFS reads "<domain>_events.toml" files and "variables.toml" from fsys.
func LoadFS(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var templates []Source
	variables := Source{Name: variablesFile}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		switch {
		case name == variablesFile:
			variables.Data = data
		case strings.HasSuffix(name, eventsSuffix):
			templates = append(templates, Source{
				Name:   name,
				Domain: Domain(strings.TrimSuffix(name, eventsSuffix)),
				Data:   data,
			})
		}
	}
	return Load(templates, variables)
}

// Default loads the content compiled into the binary.
func Default() (*Library, error) {
	return LoadFS(embedded, "content")
}

// #endregion load

// #region templates

// choiceEntry mirrors ChoiceArchetype but keeps Failure optional so a missing
// failure profile can be told apart from an all-zero one.
type choiceEntry struct {
	Archetype     Archetype          `toml:"archetype"`
	TextFragments []string           `toml:"text_fragments"`
	Success       state.StatProfile  `toml:"success"`
	Failure       *state.StatProfile `toml:"failure"`
	RiskModifier  int                `toml:"risk_modifier"`
	Requirements  map[string]int     `toml:"requirements"`
}

type situationEntry struct {
	ID           string             `toml:"id"`
	Domain       Domain             `toml:"domain"`
	TierMin      int                `toml:"tier_min"`
	TierMax      int                `toml:"tier_max"`
	LifeStageMin int                `toml:"life_stage_min"`
	LifeStageMax int                `toml:"life_stage_max"`
	Severity     Severity           `toml:"severity"`
	BaseRisk     int                `toml:"base_risk"`
	Fragments    NarrativeFragments `toml:"fragments"`
	Choices      []choiceEntry      `toml:"choices"`
}

func (l *Library) loadTemplates(src Source) {
	var doc map[string]any
	if err := toml.Unmarshal(src.Data, &doc); err != nil {
		l.warn(src.Name, "", fmt.Errorf("parse: %w", err))
		return
	}
	raw, ok := doc["situations"].([]any)
	if !ok {
		l.warn(src.Name, "", errors.New("no [[situations]] array"))
		return
	}
	for i, item := range raw {
		t, err := decodeSituation(item, src.Domain)
		if err != nil {
			l.warn(src.Name, entryName(item, i), err)
			continue
		}
		l.add(src.Name, t)
	}
}

// decodeSituation re-encodes one raw entry and decodes it strictly, so a bad
// field only costs that entry.
func decodeSituation(item any, domain Domain) (SituationTemplate, error) {
	table, ok := item.(map[string]any)
	if !ok {
		return SituationTemplate{}, errors.New("entry is not a table")
	}
	buf, err := toml.Marshal(table)
	if err != nil {
		return SituationTemplate{}, fmt.Errorf("re-encode: %w", err)
	}
	var e situationEntry
	dec := toml.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		return SituationTemplate{}, fmt.Errorf("decode: %w", err)
	}

	switch {
	case e.Domain == "":
		e.Domain = domain
	case domain != "" && e.Domain != domain:
		return SituationTemplate{}, fmt.Errorf("domain %q does not match source domain %q", e.Domain, domain)
	}

	t := SituationTemplate{
		ID:           e.ID,
		Domain:       e.Domain,
		TierMin:      e.TierMin,
		TierMax:      e.TierMax,
		LifeStageMin: e.LifeStageMin,
		LifeStageMax: e.LifeStageMax,
		Severity:     e.Severity,
		BaseRisk:     e.BaseRisk,
		Fragments:    e.Fragments,
		Choices:      make([]ChoiceArchetype, 0, len(e.Choices)),
	}
	for i, c := range e.Choices {
		if c.Failure == nil {
			return SituationTemplate{}, fmt.Errorf("choice %d: missing failure profile", i)
		}
		t.Choices = append(t.Choices, ChoiceArchetype{
			Archetype:     c.Archetype,
			TextFragments: c.TextFragments,
			Success:       c.Success,
			Failure:       *c.Failure,
			RiskModifier:  c.RiskModifier,
			Requirements:  c.Requirements,
		})
	}
	return t, nil
}

func entryName(item any, idx int) string {
	if table, ok := item.(map[string]any); ok {
		if id, ok := table["id"].(string); ok && id != "" {
			return id
		}
	}
	return fmt.Sprintf("situations[%d]", idx)
}

// #endregion templates

// #region variables

func (l *Library) loadVariables(src Source) Variables {
	vars := Variables{
		Tiered: make(map[string]map[int][]string),
		Flat:   make(map[string][]string),
	}
	if len(src.Data) == 0 {
		l.warn(src.Name, "", errors.New("variables source is empty"))
		return vars
	}
	var doc map[string]any
	if err := toml.Unmarshal(src.Data, &doc); err != nil {
		l.warn(src.Name, "", fmt.Errorf("parse: %w", err))
		return vars
	}

	for _, key := range sortedKeys(doc) {
		switch key {
		case "pools":
			section, ok := doc[key].(map[string]any)
			if !ok {
				l.warn(src.Name, key, errors.New("[pools] is not a table"))
				continue
			}
			for _, category := range sortedKeys(section) {
				entries, err := stringList(section[category])
				if err != nil {
					l.warn(src.Name, "pools."+category, err)
					continue
				}
				vars.Flat[category] = entries
			}
		case "tiered":
			section, ok := doc[key].(map[string]any)
			if !ok {
				l.warn(src.Name, key, errors.New("[tiered] is not a table"))
				continue
			}
			for _, category := range sortedKeys(section) {
				byTier, err := tierPools(section[category])
				if err != nil {
					l.warn(src.Name, "tiered."+category, err)
					continue
				}
				vars.Tiered[category] = byTier
			}
		default:
			l.warn(src.Name, key, errors.New("unknown top-level key"))
		}
	}
	return vars
}

func tierPools(v any) (map[int][]string, error) {
	table, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("tiered category is not a table")
	}
	out := make(map[int][]string, len(table))
	for key, raw := range table {
		tier, err := strconv.Atoi(key)
		if err != nil || tier < 0 {
			return nil, fmt.Errorf("tier key %q is not a non-negative integer", key)
		}
		entries, err := stringList(raw)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", tier, err)
		}
		out[tier] = entries
	}
	return out, nil
}

func stringList(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, errors.New("expected an array of strings")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d is not a string", i)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errors.New("empty pool")
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion variables
