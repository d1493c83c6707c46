package location

import "strings"

var (
	hardeningConsonants = "fstkçşhp"
	backVowels          = "aıou"
	frontVowels         = "eiöü"
)

// Preposition appends the Turkish locative suffix ("de/da/te/ta") to the
// given lowercased name, following vowel harmony and consonant hardening.
// An apostrophe separates the suffix unless apos is false.
func Preposition(name string, apos bool) string {
	// Exceptional cases first.
	switch {
	case name == "abd":
		if apos {
			return "abd'de"
		}
		return "abdde"
	case strings.HasSuffix(name, "ları"), strings.HasSuffix(name, "lari"):
		if apos {
			return name + "'nda"
		}
		return name + "nda"
	case strings.HasSuffix(name, "leri"):
		if apos {
			return name + "'nde"
		}
		return name + "nde"
	}

	suffix := ""
	if apos {
		suffix = "'"
	}

	harden := false
	runes := []rune(name)
	for i := len(runes) - 1; i >= 0; i-- {
		r := runes[i]
		switch {
		case strings.ContainsRune(hardeningConsonants, r):
			harden = true
		case strings.ContainsRune(backVowels, r):
			if harden {
				return name + suffix + "ta"
			}
			return name + suffix + "da"
		case strings.ContainsRune(frontVowels, r):
			if harden {
				return name + suffix + "te"
			}
			return name + suffix + "de"
		}
	}

	// No vowels at all.
	return name + suffix + "da"
}
