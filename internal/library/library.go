// Package library loads and indexes the immutable situation catalog.
package library

import (
	"log/slog"
	"regexp"
	"slices"
	"sort"
)

// #region library-struct

// Library is the loaded, read-only catalog of situations and substitution pools.
// It is built once and shared by reference. Template accessors hand out copies;
// the pools returned by Variables are shared and must be treated as read-only.
type Library struct {
	byDomain  map[Domain][]SituationTemplate
	domains   []Domain
	byID      map[string]*SituationTemplate
	variables Variables
	warnings  []*ParseError
}

// #endregion library-struct

// #region constructor

// New validates templates and builds the domain index. Invalid templates are
// skipped and reported through Warnings. Returns ErrLibraryEmpty if none survive.
func New(templates []SituationTemplate, vars Variables) (*Library, error) {
	lib := &Library{
		byDomain:  make(map[Domain][]SituationTemplate),
		byID:      make(map[string]*SituationTemplate),
		variables: vars,
	}
	for _, t := range templates {
		lib.add("inline", t)
	}
	return lib.finish()
}

func (l *Library) add(source string, t SituationTemplate) {
	if err := validate(t); err != nil {
		l.warn(source, t.ID, err)
		return
	}
	if _, dup := l.byID[t.ID]; dup {
		l.warn(source, t.ID, errDuplicateID)
		return
	}
	l.byDomain[t.Domain] = append(l.byDomain[t.Domain], t)
	l.byID[t.ID] = nil
}

func (l *Library) warn(source, entry string, err error) {
	pe := &ParseError{Source: source, Entry: entry, Err: err}
	l.warnings = append(l.warnings, pe)
	slog.Warn("skipping content entry", "component", "library", "error", pe)
}

// finish freezes the index. Pointers are taken only once slices stop growing.
func (l *Library) finish() (*Library, error) {
	total := 0
	for d, list := range l.byDomain {
		l.domains = append(l.domains, d)
		for i := range list {
			l.byID[list[i].ID] = &list[i]
		}
		total += len(list)
	}
	sort.Slice(l.domains, func(i, j int) bool { return l.domains[i] < l.domains[j] })

	if total == 0 {
		return nil, ErrLibraryEmpty
	}
	l.lintPlaceholders()

	slog.Info("situation library loaded",
		"component", "library",
		"domains", len(l.domains),
		"templates", total,
		"warnings", len(l.warnings),
	)
	return l, nil
}

// #endregion constructor

// #region accessors

// Domains returns every domain with at least one template, sorted.
func (l *Library) Domains() []Domain {
	return slices.Clone(l.domains)
}

// Templates returns copies of the templates of one domain in authored order.
func (l *Library) Templates(d Domain) []SituationTemplate {
	list := l.byDomain[d]
	out := make([]SituationTemplate, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}

// All returns copies of every template, grouped by sorted domain, in authored order.
func (l *Library) All() []*SituationTemplate {
	out := make([]*SituationTemplate, 0, len(l.byID))
	for _, d := range l.domains {
		for _, t := range l.Templates(d) {
			out = append(out, &t)
		}
	}
	return out
}

// Template returns a copy of the template with the given identifier.
func (l *Library) Template(id string) (*SituationTemplate, bool) {
	t, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	c := t.Clone()
	return &c, true
}

// Len returns the number of loaded templates.
func (l *Library) Len() int {
	return len(l.byID)
}

// Variables returns the substitution pools.
func (l *Library) Variables() Variables {
	return l.variables
}

// Warnings returns every entry skipped while loading.
func (l *Library) Warnings() []*ParseError {
	return l.warnings
}

// #endregion accessors

// #region placeholders

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Placeholders returns the distinct placeholder names in s, in order of first appearance.
func Placeholders(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// HasPlaceholder reports whether s still contains a {token}.
func HasPlaceholder(s string) bool {
	return placeholderPattern.MatchString(s)
}

// HasPool reports whether any tiered or flat pool exists for category.
func (v Variables) HasPool(category string) bool {
	for _, entries := range v.Tiered[category] {
		if len(entries) > 0 {
			return true
		}
	}
	return len(v.Flat[category]) > 0
}

// lintPlaceholders warns about tokens no pool can satisfy. Such fragments fail
// assembly at generation time, so they are reported but not removed.
func (l *Library) lintPlaceholders() {
	for _, t := range l.All() {
		var texts []string
		texts = append(texts, t.Fragments.Openings...)
		texts = append(texts, t.Fragments.Conflicts...)
		texts = append(texts, t.Fragments.Stakes...)
		for _, c := range t.Choices {
			texts = append(texts, c.TextFragments...)
		}
		for _, s := range texts {
			for _, name := range Placeholders(s) {
				if !l.variables.HasPool(name) {
					slog.Warn("placeholder has no substitution pool",
						"component", "library", "situation", t.ID, "placeholder", name)
				}
			}
		}
	}
}

// #endregion placeholders
