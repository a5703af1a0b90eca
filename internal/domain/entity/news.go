package entity

import "time"

// NewsArticle is an editorial news item shown on the public site once published.
type NewsArticle struct {
	ID            int64
	Title         string
	Slug          string
	Excerpt       *string
	Content       *string // raw markup, rendered verbatim by the site
	CoverImageURL *string
	Gallery       []string
	Published     bool
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the fields the store requires.
func (n *NewsArticle) Validate() error {
	if n.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if n.Slug == "" {
		return &ValidationError{Field: "slug", Message: "slug is required"}
	}
	if !IsSlug(n.Slug) {
		return &ValidationError{Field: "slug", Message: "slug may only contain a-z, 0-9 and single hyphens"}
	}
	return nil
}

// MarkPublished applies the publish transition rules.
// PublishedAt is stamped only when the article goes from unpublished to published
// and is kept when it is later unpublished.
func (n *NewsArticle) MarkPublished(published bool, wasPublished bool, now time.Time) {
	if published && !wasPublished {
		t := now
		n.PublishedAt = &t
	}
	n.Published = published
}
