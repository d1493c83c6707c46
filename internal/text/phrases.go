package text

import "strings"

// maxPhraseTokens caps lattice generation so that an overlong message cannot
// produce a quadratic number of phrases.
const maxPhraseTokens = 50

// Set is an unordered set of strings, used for phrase and word-set algebra.
type Set map[string]struct{}

// NewSet builds a set from the given members.
func NewSet(members ...string) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

func (s Set) Add(member string) {
	s[member] = struct{}{}
}

func (s Set) Contains(member string) bool {
	_, ok := s[member]
	return ok
}

// Intersects reports whether the two sets share at least one member.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for m := range small {
		if _, ok := large[m]; ok {
			return true
		}
	}
	return false
}

// Union adds every member of other to s.
func (s Set) Union(other Set) {
	for m := range other {
		s[m] = struct{}{}
	}
}

// Difference returns the members of s not present in other.
func (s Set) Difference(other Set) Set {
	r := make(Set)
	for m := range s {
		if _, ok := other[m]; !ok {
			r[m] = struct{}{}
		}
	}
	return r
}

// Phrases returns every phrase obtained by joining consecutive tokens in the
// given order without skipping any. For n tokens the result has n(n+1)/2
// members. Only the first 50 tokens are considered.
func Phrases(tokens []string) Set {
	if len(tokens) > maxPhraseTokens {
		tokens = tokens[:maxPhraseTokens]
	}

	r := make(Set, len(tokens)*(len(tokens)+1)/2)
	for i := range tokens {
		var phrase strings.Builder
		for j := i; j < len(tokens); j++ {
			if j != i {
				phrase.WriteByte(' ')
			}
			phrase.WriteString(tokens[j])
			r.Add(phrase.String())
		}
	}

	return r
}

// PhraseSet normalizes raw message text and returns its full phrase set:
// the token lattice plus each distinct emoji as an atomic member.
func PhraseSet(s string) Set {
	tokens, emojis := Normalize(s)
	r := Phrases(tokens)
	for _, e := range emojis {
		r.Add(e)
	}
	return r
}
