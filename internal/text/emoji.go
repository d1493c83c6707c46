package text

// Unicode ranges covering the common emoji blocks. Multi-codepoint ZWJ
// sequences are treated as their component emoji.
var emojiRanges = [][2]rune{
	{0x1F300, 0x1F5FF}, // symbols & pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport & map
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA70, 0x1FAFF}, // symbols extended-A
	{0x2600, 0x26FF},   // miscellaneous symbols
	{0x2700, 0x27BF},   // dingbats
	{0x1F1E6, 0x1F1FF}, // regional indicators
}

func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// DistinctEmoji returns each distinct emoji rune in s as a string, in order
// of first appearance.
func DistinctEmoji(s string) []string {
	var found []string
	seen := make(map[rune]struct{})

	for _, r := range s {
		if !isEmoji(r) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		found = append(found, string(r))
	}

	return found
}
