// Package public serves the read-only API consumed by the public site.
package public

import (
	"time"

	"sitecms/internal/domain/entity"
)

// NewsDTO is a published article as the site renders it.
type NewsDTO struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       *string    `json:"excerpt"`
	Content       *string    `json:"content"`
	CoverImageURL *string    `json:"cover_image_url"`
	Gallery       []string   `json:"gallery"`
	PublishedAt   *time.Time `json:"published_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PartnershipDTO is an active partner entry.
type PartnershipDTO struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  *string `json:"description"`
	LogoURL      *string `json:"logo_url"`
	WebsiteURL   *string `json:"website_url"`
	Category     *string `json:"category"`
	DisplayOrder int     `json:"display_order"`
}

func newsDTO(n *entity.NewsArticle) NewsDTO {
	gallery := n.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	return NewsDTO{
		ID:            n.ID,
		Title:         n.Title,
		Slug:          n.Slug,
		Excerpt:       n.Excerpt,
		Content:       n.Content,
		CoverImageURL: n.CoverImageURL,
		Gallery:       gallery,
		PublishedAt:   n.PublishedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

func partnershipDTO(p *entity.PartnershipEntry) PartnershipDTO {
	return PartnershipDTO{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		LogoURL:      p.LogoURL,
		WebsiteURL:   p.WebsiteURL,
		Category:     p.Category,
		DisplayOrder: p.DisplayOrder,
	}
}
