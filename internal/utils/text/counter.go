// Package text provides small rune-aware helpers shared by the drafting and
// content services: counting, truncation and slug generation.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Accented French letters and emoji count as one character each.
//
// Examples:
//
//	CountRunes("hello")  // returns 5
//	CountRunes("été")    // returns 3
//	CountRunes("")       // returns 0
func CountRunes(text string) int {
	return len([]rune(text))
}
