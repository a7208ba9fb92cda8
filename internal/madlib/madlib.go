// Package madlib builds event prose from fragments and substitution pools.
package madlib

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
)

// ErrUnresolvedPlaceholder means a {token} had no pool to draw from.
var ErrUnresolvedPlaceholder = errors.New("madlib: unresolved placeholder")

var errEmptyFragments = errors.New("madlib: empty fragment list")

// #region pools

// Pool returns the entries for category at tier: the exact tier's pool, else
// the nearest lower tier's, else the flat pool.
func Pool(vars library.Variables, category string, tier int) ([]string, bool) {
	if byTier, ok := vars.Tiered[category]; ok {
		for t := tier; t >= 0; t-- {
			if entries := byTier[t]; len(entries) > 0 {
				return entries, true
			}
		}
	}
	entries := vars.Flat[category]
	return entries, len(entries) > 0
}

// #endregion pools

// #region assembly

// Substitute replaces every {token} in text. Each distinct token is drawn once,
// in order of first appearance, and all its occurrences get the same value.
func Substitute(text string, vars library.Variables, tier int, src rng.Source) (string, error) {
	for _, name := range library.Placeholders(text) {
		entries, ok := Pool(vars, name, tier)
		if !ok {
			return "", fmt.Errorf("%w: {%s}", ErrUnresolvedPlaceholder, name)
		}
		value, _ := rng.Pick(src, entries)
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	if library.HasPlaceholder(text) {
		return "", fmt.Errorf("%w: %q", ErrUnresolvedPlaceholder, text)
	}
	return text, nil
}

// AssembleDescription draws one opening, conflict and stake, joins them with
// spaces and substitutes the result.
func AssembleDescription(frags library.NarrativeFragments, vars library.Variables, tier int, src rng.Source) (string, error) {
	parts := make([]string, 0, 3)
	for _, pool := range [][]string{frags.Openings, frags.Conflicts, frags.Stakes} {
		part, ok := rng.Pick(src, pool)
		if !ok {
			return "", errEmptyFragments
		}
		parts = append(parts, part)
	}
	return Substitute(strings.Join(parts, " "), vars, tier, src)
}

// AssembleChoiceText draws one of the choice's text fragments and substitutes it.
func AssembleChoiceText(c library.ChoiceArchetype, vars library.Variables, tier int, src rng.Source) (string, error) {
	text, ok := rng.Pick(src, c.TextFragments)
	if !ok {
		return "", errEmptyFragments
	}
	return Substitute(text, vars, tier, src)
}

// #endregion assembly

// #region outcome-text

// SuccessText renders the line shown when a choice succeeds. action is the
// archetype name or, for authored events, the choice text. positive picks the
// upbeat ending; callers pass whether social credit went up.
func SuccessText(action string, positive bool) string {
	verb := actionPhrase(action)
	if positive {
		return fmt.Sprintf("You chose to %s. Things went well.", verb)
	}
	return fmt.Sprintf("You chose to %s. There were consequences.", verb)
}

// FailureText renders the line shown when a choice backfires.
func FailureText(action string) string {
	return fmt.Sprintf("You chose to %s, but it backfired. Things didn't go as planned.", actionPhrase(action))
}

// actionPhrase drops the trailing period and lowercases a leading capital,
// except for the pronoun I.
func actionPhrase(s string) string {
	s = strings.TrimSuffix(s, ".")
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	if s[0] == 'I' && (len(s) == 1 || s[1] == ' ' || s[1] == '\'') {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// #endregion outcome-text
