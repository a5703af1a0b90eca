// Package admin exposes the editor session state machine over JSON.
//
// Every editor session owns one controller; requests carry the session's
// bearer token and are applied to that controller. Responses echo the
// resulting screen state so a client can render it without a second call.
package admin

import (
	"time"

	"sitecms/internal/domain/entity"
	adminuc "sitecms/internal/usecase/admin"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	State     StateDTO  `json:"state"`
}

type viewRequest struct {
	Kind string `json:"kind"`
	Mode string `json:"mode"`
	ID   int64  `json:"id,omitempty"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// DraftPatch carries the form fields to change; absent fields stay as they are.
type DraftPatch struct {
	Title         *string   `json:"title,omitempty"`
	Slug          *string   `json:"slug,omitempty"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	Content       *string   `json:"content,omitempty"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	Gallery       *[]string `json:"gallery,omitempty"`
	Published     *bool     `json:"published,omitempty"`

	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`
	WebsiteURL   *string `json:"website_url,omitempty"`
	Category     *string `json:"category,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Apply copies the present fields onto d.
func (p DraftPatch) Apply(d *adminuc.Draft) {
	setIf(&d.Title, p.Title)
	setIf(&d.Slug, p.Slug)
	setIf(&d.Excerpt, p.Excerpt)
	setIf(&d.Content, p.Content)
	setIf(&d.CoverImageURL, p.CoverImageURL)
	if p.Gallery != nil {
		d.Gallery = append([]string(nil), (*p.Gallery)...)
	}
	setIf(&d.Published, p.Published)

	setIf(&d.Name, p.Name)
	setIf(&d.Description, p.Description)
	setIf(&d.LogoURL, p.LogoURL)
	setIf(&d.WebsiteURL, p.WebsiteURL)
	setIf(&d.Category, p.Category)
	setIf(&d.DisplayOrder, p.DisplayOrder)
	setIf(&d.Active, p.Active)
}

// DraftDTO is the form as the admin screen renders it.
type DraftDTO struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id,omitempty"`

	Title         string   `json:"title,omitempty"`
	Slug          string   `json:"slug"`
	Excerpt       string   `json:"excerpt,omitempty"`
	Content       string   `json:"content,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	Gallery       []string `json:"gallery,omitempty"`
	Published     bool     `json:"published"`

	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	WebsiteURL   string `json:"website_url,omitempty"`
	Category     string `json:"category,omitempty"`
	DisplayOrder int    `json:"display_order"`
	Active       bool   `json:"active"`
}

// NewsRow is one line of the admin news list, drafts included.
type NewsRow struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PartnershipRow is one line of the admin partnership list.
type PartnershipRow struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Category     *string   `json:"category"`
	DisplayOrder int       `json:"display_order"`
	Active       bool      `json:"active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StateDTO mirrors the controller state.
type StateDTO struct {
	Auth  string    `json:"auth"`
	Email string    `json:"email,omitempty"`
	Kind  string    `json:"kind,omitempty"`
	Mode  string    `json:"mode,omitempty"`
	Draft *DraftDTO `json:"draft"`

	News         []NewsRow        `json:"news"`
	Partnerships []PartnershipRow `json:"partnerships"`

	Saving     bool `json:"saving"`
	Deleting   bool `json:"deleting"`
	Uploading  bool `json:"uploading"`
	Generating bool `json:"generating"`

	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

func stateDTO(s adminuc.State) StateDTO {
	out := StateDTO{
		Auth:         string(s.Auth),
		Email:        s.Email,
		Kind:         string(s.Kind),
		Mode:         string(s.Mode),
		News:         make([]NewsRow, 0, len(s.News)),
		Partnerships: make([]PartnershipRow, 0, len(s.Partnerships)),
		Saving:       s.Saving,
		Deleting:     s.Deleting,
		Uploading:    s.Uploads > 0,
		Generating:   s.Generating,
		Error:        s.Error,
		Success:      s.Success,
	}
	if d := s.Draft; d != nil {
		out.Draft = &DraftDTO{
			Kind: string(d.Kind), ID: d.ID,
			Title: d.Title, Slug: d.Slug, Excerpt: d.Excerpt, Content: d.Content,
			CoverImageURL: d.CoverImageURL, Gallery: d.Gallery, Published: d.Published,
			Name: d.Name, Description: d.Description, LogoURL: d.LogoURL,
			WebsiteURL: d.WebsiteURL, Category: d.Category,
			DisplayOrder: d.DisplayOrder, Active: d.Active,
		}
	}
	for _, n := range s.News {
		out.News = append(out.News, newsRow(n))
	}
	for _, p := range s.Partnerships {
		out.Partnerships = append(out.Partnerships, PartnershipRow{
			ID: p.ID, Name: p.Name, Slug: p.Slug, Category: p.Category,
			DisplayOrder: p.DisplayOrder, Active: p.Active, UpdatedAt: p.UpdatedAt,
		})
	}
	return out
}

func newsRow(n *entity.NewsArticle) NewsRow {
	return NewsRow{
		ID: n.ID, Title: n.Title, Slug: n.Slug,
		Published: n.Published, PublishedAt: n.PublishedAt, UpdatedAt: n.UpdatedAt,
	}
}
