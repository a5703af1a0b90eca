package text

const ellipsis = "..."

// TruncateRunes caps s at max runes. Longer input is cut to max-3 runes and
// suffixed with "...", so the result is exactly max runes long.
func TruncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string(r[:max])
	}
	return string(r[:max-len(ellipsis)]) + ellipsis
}

// TruncateAtSentence caps s at max runes, preferring to end on a full sentence.
//
// When s is too long, the first max-3 runes are inspected. If the last '.'
// in that window sits at rune index minCut or later, the text is cut right
// after it. Otherwise the window is suffixed with "...".
func TruncateAtSentence(s string, max, minCut int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	window := r[:max-len(ellipsis)]
	for i := len(window) - 1; i >= minCut; i-- {
		if window[i] == '.' {
			return string(window[:i+1])
		}
	}
	return string(window) + ellipsis
}
