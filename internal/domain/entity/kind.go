package entity

import "fmt"

// Kind selects one of the two editable record types.
type Kind string

const (
	KindNews        Kind = "news"
	KindPartnership Kind = "partnership"
)

// ParseKind accepts the wire names, including the plural forms used in URLs.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "news":
		return KindNews, nil
	case "partnership", "partnerships":
		return KindPartnership, nil
	}
	return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown record kind %q", s)}
}

func (k Kind) String() string { return string(k) }

// IsSlug reports whether s is already a canonical slug: non-empty runs of
// [a-z0-9] separated by single hyphens.
func IsSlug(s string) bool {
	if s == "" {
		return false
	}
	prevHyphen := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevHyphen = false
		case c == '-':
			if prevHyphen {
				return false
			}
			prevHyphen = true
		default:
			return false
		}
	}
	return !prevHyphen
}
