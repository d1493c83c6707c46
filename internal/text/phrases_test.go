package text

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhrasesLatticeSize(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 10, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			tokens := make([]string, n)
			for i := range tokens {
				tokens[i] = fmt.Sprintf("w%d", i)
			}

			got := Phrases(tokens)
			assert.Len(t, got, n*(n+1)/2)

			// Every member must preserve the original token order with no gaps.
			for phrase := range got {
				words := strings.Fields(phrase)
				first := -1
				for i, tok := range tokens {
					if tok == words[0] {
						first = i
						break
					}
				}
				require.GreaterOrEqual(t, first, 0, "phrase %q starts with unknown token", phrase)
				require.LessOrEqual(t, first+len(words), n)
				assert.Equal(t, tokens[first:first+len(words)], words)
			}
		})
	}
}

func TestPhrasesContents(t *testing.T) {
	got := Phrases([]string{"a", "b", "c"})
	want := NewSet("a", "b", "c", "a b", "b c", "a b c")
	assert.Equal(t, want, got)
}

func TestPhrasesCappedAtFiftyTokens(t *testing.T) {
	tokens := make([]string, 80)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("w%d", i)
	}
	got := Phrases(tokens)
	assert.Len(t, got, 50*51/2)
	assert.False(t, got.Contains("w50"))
}

func TestPhraseSetIdempotent(t *testing.T) {
	const msg = "Selam kiwo, İstanbul'da durumlar nasıl? 😂👍"
	first := PhraseSet(msg)
	second := PhraseSet(msg)
	assert.Equal(t, first, second)
}

func TestPhraseSetEmptyInput(t *testing.T) {
	assert.Empty(t, PhraseSet(""))
	assert.Empty(t, PhraseSet("   \t\n"))

	tokens, emojis := Normalize(" ")
	assert.Empty(t, tokens)
	assert.Empty(t, emojis)
}

func TestPhraseSetIncludesEmoji(t *testing.T) {
	got := PhraseSet("naber 😂 naber 😂 🤔")
	assert.True(t, got.Contains("😂"))
	assert.True(t, got.Contains("🤔"))
	assert.True(t, got.Contains("naber naber"))
	// Emoji are atomic members, not tokens.
	assert.False(t, got.Contains("naber 😂"))
}

func TestFoldTurkishDotlessI(t *testing.T) {
	assert.Equal(t, "ışık", Fold("IŞIK"))
	assert.Equal(t, "kıvanç", Fold("KIVANÇ"))
	// The dotted capital folds to a plain dotted i.
	assert.Equal(t, "istanbul", Fold("İstanbul"))
	// Position independence.
	assert.Equal(t, "ı ı ı", Fold("I I I"))
}

func TestNormalizeStripsPunctuation(t *testing.T) {
	tokens, _ := Normalize("Selam, kiwo! (naber?)")
	assert.Equal(t, []string{"selam", "kiwo", "naber"}, tokens)
}

func TestSetAlgebra(t *testing.T) {
	a := NewSet("x", "y")
	b := NewSet("y", "z")

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(NewSet("q")))
	assert.False(t, a.Intersects(Set{}))

	assert.Equal(t, NewSet("x"), a.Difference(b))

	a.Union(b)
	assert.Equal(t, NewSet("x", "y", "z"), a)
}
