package location

import (
	"errors"
	"strings"

	"github.com/kivanctezoren/sanalkiwobot/internal/text"
)

// ErrUnrecognizedWords is returned when a message still contains phrases
// that neither matched a location nor belong to a known trigger set.
var ErrUnrecognizedWords = errors.New("unrecognized words in message")

// SuffixRule strips a grammatical case suffix from a candidate phrase to
// produce an additional lookup form.
type SuffixRule struct {
	Suffix string
	Strip  int
}

// DefaultSuffixRules covers the Turkish locative and genitive endings seen
// in practice. The list is ordered; each matching rule contributes one
// stripped candidate.
var DefaultSuffixRules = []SuffixRule{
	{Suffix: "da", Strip: 2},
	{Suffix: "de", Strip: 2},
	{Suffix: "ın", Strip: 2},
	{Suffix: "in", Strip: 2},
	{Suffix: "nda", Strip: 3},
	{Suffix: "nde", Strip: 3},
	{Suffix: "nın", Strip: 3},
	{Suffix: "nin", Strip: 3},
}

// Resolver extracts canonical location keys from a residual phrase set.
type Resolver struct {
	table    *Table
	rules    []SuffixRule
	fallback string
}

// NewResolver builds a resolver over the given alias table. The fallback
// location is used when a message is fully explained but names no location.
func NewResolver(table *Table, rules []SuffixRule, fallback string) *Resolver {
	if rules == nil {
		rules = DefaultSuffixRules
	}
	return &Resolver{table: table, rules: rules, fallback: fallback}
}

// candidates returns the phrase itself plus every suffix-stripped variant.
func (r *Resolver) candidates(phrase string) []string {
	c := []string{phrase}
	for _, rule := range r.rules {
		if strings.HasSuffix(phrase, rule.Suffix) && len([]rune(phrase)) > rule.Strip {
			runes := []rune(phrase)
			c = append(c, string(runes[:len(runes)-rule.Strip]))
		}
	}
	return c
}

// Resolve tests every phrase of the set against the alias table and returns
// the distinct canonical keys found. The seed set holds phrases already
// explained by trigger word sets; any phrase matched here additionally
// explains all of its sub-phrases. If unexplained phrases remain, the error
// is ErrUnrecognizedWords; locations found so far are still returned so the
// caller can warn and serve them anyway. A fully explained message with no
// location yields the fallback.
//
// A multi-word canonical name and one of its single-word substrings can both
// match independently, producing duplicate lookups for one mention. That
// ambiguity is inherited from the matching scheme and left as is.
func (r *Resolver) Resolve(phrases text.Set, seed text.Set) ([]string, error) {
	var locations []string
	resolved := make(map[string]struct{})

	exclude := make(text.Set, len(seed))
	exclude.Union(seed)

	addLocation := func(canonical string) {
		if _, ok := resolved[canonical]; !ok {
			resolved[canonical] = struct{}{}
			locations = append(locations, canonical)
		}
	}

	for phrase := range phrases {
		for _, candidate := range r.candidates(phrase) {
			// No break on a match: several candidates of one phrase may
			// hit different table entries.
			if canonical, ok := r.table.Canonical(candidate); ok {
				addLocation(canonical)
				exclude.Union(text.Phrases(strings.Fields(phrase)))
			} else if r.table.IsCanonical(candidate) {
				addLocation(candidate)
				exclude.Union(text.Phrases(strings.Fields(phrase)))
			}
		}
	}

	// A phrase containing any excluded single word is excluded too. Must run
	// after the matching pass is complete.
	for phrase := range phrases {
		if exclude.Contains(phrase) {
			continue
		}
		for _, word := range strings.Fields(phrase) {
			if exclude.Contains(word) {
				exclude.Add(phrase)
				break
			}
		}
	}

	if len(phrases.Difference(exclude)) > 0 {
		return locations, ErrUnrecognizedWords
	}

	if len(locations) == 0 {
		return []string{r.fallback}, nil
	}
	return locations, nil
}
