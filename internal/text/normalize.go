package text

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ASCII punctuation characters removed before tokenization.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var turkishLower = cases.Lower(language.Turkish)

// Fold lowercases a string using Turkish casing rules, so that "I" becomes
// "ı" rather than the ASCII "i".
func Fold(s string) string {
	return turkishLower.String(s)
}

// Normalize reduces raw message text to a token list: Turkish lowercase,
// punctuation stripped, emoji removed, split on whitespace. The distinct
// emoji found in the original text are returned separately, in order of
// first appearance.
func Normalize(s string) (tokens []string, emojis []string) {
	emojis = DistinctEmoji(s)

	reduced := Fold(s)
	reduced = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, reduced)

	for _, e := range emojis {
		reduced = strings.ReplaceAll(reduced, e, "")
	}

	return strings.Fields(reduced), emojis
}
