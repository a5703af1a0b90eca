package admin

import (
	"time"

	"sitecms/internal/domain/entity"
)

// AuthState is the sign-in phase of a controller.
type AuthState string

const (
	Unauthenticated AuthState = "unauthenticated"
	Loading         AuthState = "loading"
	Authenticated   AuthState = "authenticated"
)

// Mode is what the editor is looking at once signed in.
type Mode string

const (
	ModeList   Mode = "list"
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ImageTarget names the draft field an upload fills.
type ImageTarget string

const (
	TargetCover   ImageTarget = "cover"
	TargetGallery ImageTarget = "gallery"
	TargetLogo    ImageTarget = "logo"
)

// Draft is the form being edited. News fields and partnership fields share
// one struct; Kind says which half is meaningful. ID is zero for a new record.
type Draft struct {
	Kind entity.Kind
	ID   int64

	// news
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CoverImageURL string
	Gallery       []string
	Published     bool

	// partnership
	Name         string
	Description  string
	LogoURL      string
	WebsiteURL   string
	Category     string
	DisplayOrder int
	Active       bool
}

func (d *Draft) clone() *Draft {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Gallery = append([]string(nil), d.Gallery...)
	return &cp
}

// State is everything the admin screen renders.
type State struct {
	Auth  AuthState
	Email string

	Kind  entity.Kind
	Mode  Mode
	Draft *Draft

	News         []*entity.NewsArticle
	Partnerships []*entity.PartnershipEntry

	Saving     bool
	Deleting   bool
	Uploads    int
	Generating bool

	Error   string
	Success string
}

func (s State) clone() State {
	cp := s
	cp.Draft = s.Draft.clone()
	if s.News != nil {
		cp.News = make([]*entity.NewsArticle, len(s.News))
		for i, n := range s.News {
			cp.News[i] = cloneNews(n)
		}
	}
	if s.Partnerships != nil {
		cp.Partnerships = make([]*entity.PartnershipEntry, len(s.Partnerships))
		for i, p := range s.Partnerships {
			cp.Partnerships[i] = clonePartnership(p)
		}
	}
	return cp
}

func cloneNews(n *entity.NewsArticle) *entity.NewsArticle {
	cp := *n
	cp.Excerpt = cloneStr(n.Excerpt)
	cp.Content = cloneStr(n.Content)
	cp.CoverImageURL = cloneStr(n.CoverImageURL)
	cp.Gallery = append([]string(nil), n.Gallery...)
	if n.PublishedAt != nil {
		t := *n.PublishedAt
		cp.PublishedAt = &t
	}
	return &cp
}

func clonePartnership(p *entity.PartnershipEntry) *entity.PartnershipEntry {
	cp := *p
	cp.Description = cloneStr(p.Description)
	cp.LogoURL = cloneStr(p.LogoURL)
	cp.WebsiteURL = cloneStr(p.WebsiteURL)
	cp.Category = cloneStr(p.Category)
	return &cp
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DefaultSuccessDelay is how long the success banner stays before the
// controller returns to the list.
const DefaultSuccessDelay = time.Second

func newDraft(kind entity.Kind, partnershipCount int) *Draft {
	d := &Draft{Kind: kind}
	if kind == entity.KindPartnership {
		d.Active = true
		d.DisplayOrder = partnershipCount
	}
	return d
}

func draftFromNews(n *entity.NewsArticle) *Draft {
	return &Draft{
		Kind:          entity.KindNews,
		ID:            n.ID,
		Title:         n.Title,
		Slug:          n.Slug,
		Excerpt:       deref(n.Excerpt),
		Content:       deref(n.Content),
		CoverImageURL: deref(n.CoverImageURL),
		Gallery:       append([]string(nil), n.Gallery...),
		Published:     n.Published,
	}
}

func draftFromPartnership(p *entity.PartnershipEntry) *Draft {
	return &Draft{
		Kind:         entity.KindPartnership,
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  deref(p.Description),
		LogoURL:      deref(p.LogoURL),
		WebsiteURL:   deref(p.WebsiteURL),
		Category:     deref(p.Category),
		DisplayOrder: p.DisplayOrder,
		Active:       p.Active,
	}
}
