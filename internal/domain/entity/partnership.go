package entity

import "time"

// PartnershipEntry is a partner organisation listed on the public site.
type PartnershipEntry struct {
	ID           int64
	Name         string
	Slug         string
	Description  *string
	LogoURL      *string
	WebsiteURL   *string
	Category     *string
	DisplayOrder int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the fields the store requires.
func (p *PartnershipEntry) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if p.Slug == "" {
		return &ValidationError{Field: "slug", Message: "slug is required"}
	}
	if !IsSlug(p.Slug) {
		return &ValidationError{Field: "slug", Message: "slug may only contain a-z, 0-9 and single hyphens"}
	}
	return nil
}
