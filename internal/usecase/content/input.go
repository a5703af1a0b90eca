package content

import "strings"

// NewsInput is the editable part of a news article.
// Blank optional text is stored as NULL.
type NewsInput struct {
	Title         string
	Slug          string // empty: derived from Title
	Excerpt       *string
	Content       *string
	CoverImageURL *string
	Gallery       []string
	Published     bool
}

// PartnershipInput is the editable part of a partnership entry.
type PartnershipInput struct {
	Name        string
	Slug        string // empty: derived from Name
	Description *string
	LogoURL     *string
	WebsiteURL  *string
	Category    *string
	// DisplayOrder nil means: append on create, keep on update.
	DisplayOrder *int
	// Active nil means true.
	Active *bool
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func cleanGallery(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
