package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that carry no combining mark under NFD and would otherwise be dropped.
var extraLetters = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
)

// Slugify derives a URL-safe slug from a title.
//
// The result only contains [a-z0-9] runs joined by single hyphens, with no
// hyphen at either end. Slugify is deterministic and idempotent:
// Slugify(Slugify(s)) == Slugify(s). Empty or symbol-only input yields "".
//
//	Slugify("Fête de la Musique 2024 !") // "fete-de-la-musique-2024"
func Slugify(s string) string {
	folded := foldAccents(strings.ToLower(s))
	folded = extraLetters.Replace(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
