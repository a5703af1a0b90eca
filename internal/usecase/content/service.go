// Package content implements create, update, delete and list operations for
// news articles and partnership entries, plus the cached public read path.
package content

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sitecms/internal/domain/entity"
	"sitecms/internal/observability/metrics"
	"sitecms/internal/observability/tracing"
	"sitecms/internal/repository"
	"sitecms/internal/utils/text"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Service is the content record service. Writes are last-write-wins and
// never retried.
type Service struct {
	News         repository.NewsRepository
	Partnerships repository.PartnershipRepository

	// Now is replaceable for tests.
	Now func() time.Time

	cache *publicCache
}

// NewService returns a service whose public reads are cached for cacheTTL.
// A zero TTL disables the cache.
func NewService(news repository.NewsRepository, partnerships repository.PartnershipRepository, cacheTTL time.Duration) *Service {
	s := &Service{News: news, Partnerships: partnerships, Now: time.Now}
	s.cache = newPublicCache(cacheTTL)
	return s
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func startSpan(ctx context.Context, name string, kind entity.Kind) (context.Context, trace.Span) {
	ctx, span := tracing.GetTracer().Start(ctx, "content."+name)
	span.SetAttributes(attribute.String("kind", kind.String()))
	return ctx, span
}

// finishMutation records the outcome and drops cached public reads on success.
func (s *Service) finishMutation(span trace.Span, kind entity.Kind, op string, err error) {
	tracing.RecordError(span, err)
	metrics.RecordContentMutation(kind.String(), op, err)
	if err == nil {
		s.cache.invalidate(kind)
	}
}

// resolveSlug uses the explicit slug when given, otherwise slugifies source.
func resolveSlug(explicit, source string) (string, error) {
	slug := strings.TrimSpace(explicit)
	if slug == "" {
		slug = text.Slugify(source)
	}
	if slug == "" {
		return "", &entity.ValidationError{Field: "slug", Message: "slug could not be derived; enter one manually"}
	}
	return slug, nil
}

/* ──────────────────────────────── news ──────────────────────────────── */

// ListNews returns all articles, newest first.
func (s *Service) ListNews(ctx context.Context) ([]*entity.NewsArticle, error) {
	ctx, span := startSpan(ctx, "ListNews", entity.KindNews)
	defer span.End()

	items, err := s.News.List(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("list news: %w", err)
	}
	metrics.UpdateContentRecords(entity.KindNews.String(), len(items))
	return items, nil
}

func (s *Service) buildNews(in NewsInput) (*entity.NewsArticle, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &entity.ValidationError{Field: "title", Message: "title is required"}
	}
	slug, err := resolveSlug(in.Slug, title)
	if err != nil {
		return nil, err
	}
	n := &entity.NewsArticle{
		Title:         title,
		Slug:          slug,
		Excerpt:       optional(in.Excerpt),
		Content:       optional(in.Content),
		CoverImageURL: optional(in.CoverImageURL),
		Gallery:       cleanGallery(in.Gallery),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// CreateNews stores a new article. Publishing on create stamps PublishedAt.
func (s *Service) CreateNews(ctx context.Context, in NewsInput) (n *entity.NewsArticle, err error) {
	ctx, span := startSpan(ctx, "CreateNews", entity.KindNews)
	defer span.End()
	defer func() { s.finishMutation(span, entity.KindNews, "create", err) }()

	n, err = s.buildNews(in)
	if err != nil {
		return nil, err
	}
	n.MarkPublished(in.Published, false, s.now())

	if err = s.News.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}
	return n, nil
}

// UpdateNews overwrites every editable field of article id.
func (s *Service) UpdateNews(ctx context.Context, id int64, in NewsInput) (n *entity.NewsArticle, err error) {
	ctx, span := startSpan(ctx, "UpdateNews", entity.KindNews)
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))
	defer func() { s.finishMutation(span, entity.KindNews, "update", err) }()

	n, err = s.buildNews(in)
	if err != nil {
		return nil, err
	}

	current, err := s.News.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}
	if current == nil {
		return nil, entity.NewNotFoundError("update news")
	}

	n.ID = id
	n.CreatedAt = current.CreatedAt
	n.PublishedAt = current.PublishedAt
	n.MarkPublished(in.Published, current.Published, s.now())

	if err = s.News.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update news: %w", err)
	}
	return n, nil
}

/* ──────────────────────────────── partnerships ──────────────────────────────── */

// ListPartnerships returns all entries by display order.
func (s *Service) ListPartnerships(ctx context.Context) ([]*entity.PartnershipEntry, error) {
	ctx, span := startSpan(ctx, "ListPartnerships", entity.KindPartnership)
	defer span.End()

	items, err := s.Partnerships.List(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("list partnerships: %w", err)
	}
	metrics.UpdateContentRecords(entity.KindPartnership.String(), len(items))
	return items, nil
}

func (s *Service) buildPartnership(in PartnershipInput) (*entity.PartnershipEntry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &entity.ValidationError{Field: "name", Message: "name is required"}
	}
	slug, err := resolveSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return &entity.PartnershipEntry{
		Name:        name,
		Slug:        slug,
		Description: optional(in.Description),
		LogoURL:     optional(in.LogoURL),
		WebsiteURL:  optional(in.WebsiteURL),
		Category:    optional(in.Category),
		Active:      active,
	}, nil
}

// CreatePartnership stores a new entry. Without an explicit display order it
// is placed after the existing entries.
func (s *Service) CreatePartnership(ctx context.Context, in PartnershipInput) (p *entity.PartnershipEntry, err error) {
	ctx, span := startSpan(ctx, "CreatePartnership", entity.KindPartnership)
	defer span.End()
	defer func() { s.finishMutation(span, entity.KindPartnership, "create", err) }()

	p, err = s.buildPartnership(in)
	if err != nil {
		return nil, err
	}
	if in.DisplayOrder != nil {
		p.DisplayOrder = *in.DisplayOrder
	} else {
		count, cerr := s.Partnerships.Count(ctx)
		if cerr != nil {
			err = fmt.Errorf("count partnerships: %w", cerr)
			return nil, err
		}
		p.DisplayOrder = count
	}
	if err = p.Validate(); err != nil {
		return nil, err
	}

	if err = s.Partnerships.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create partnership: %w", err)
	}
	return p, nil
}

// UpdatePartnership overwrites every editable field of entry id.
func (s *Service) UpdatePartnership(ctx context.Context, id int64, in PartnershipInput) (p *entity.PartnershipEntry, err error) {
	ctx, span := startSpan(ctx, "UpdatePartnership", entity.KindPartnership)
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))
	defer func() { s.finishMutation(span, entity.KindPartnership, "update", err) }()

	p, err = s.buildPartnership(in)
	if err != nil {
		return nil, err
	}

	current, err := s.Partnerships.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get partnership: %w", err)
	}
	if current == nil {
		return nil, entity.NewNotFoundError("update partnership")
	}

	p.ID = id
	p.CreatedAt = current.CreatedAt
	p.DisplayOrder = current.DisplayOrder
	if in.DisplayOrder != nil {
		p.DisplayOrder = *in.DisplayOrder
	}
	if err = p.Validate(); err != nil {
		return nil, err
	}

	if err = s.Partnerships.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update partnership: %w", err)
	}
	return p, nil
}

/* ──────────────────────────────── delete ──────────────────────────────── */

// Delete removes the record immediately. A missing id is a not-found
// PersistenceError.
func (s *Service) Delete(ctx context.Context, kind entity.Kind, id int64) (err error) {
	ctx, span := startSpan(ctx, "Delete", kind)
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))
	defer func() { s.finishMutation(span, kind, "delete", err) }()

	switch kind {
	case entity.KindNews:
		err = s.News.Delete(ctx, id)
	case entity.KindPartnership:
		err = s.Partnerships.Delete(ctx, id)
	default:
		return &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown record kind %q", kind)}
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

/* ──────────────────────────────── public reads ──────────────────────────────── */

// PublishedNews returns up to limit published articles, latest first.
func (s *Service) PublishedNews(ctx context.Context, limit int) ([]*entity.NewsArticle, error) {
	key := "list:" + strconv.Itoa(limit)
	v, gen, ok := s.cache.get(entity.KindNews, key)
	if ok {
		return v.([]*entity.NewsArticle), nil
	}

	ctx, span := startSpan(ctx, "PublishedNews", entity.KindNews)
	defer span.End()

	items, err := s.News.ListPublished(ctx, limit)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("list published news: %w", err)
	}
	s.cache.set(entity.KindNews, key, items, gen)
	return items, nil
}

// NewsBySlug returns a published article or entity.ErrNotFound.
func (s *Service) NewsBySlug(ctx context.Context, slug string) (*entity.NewsArticle, error) {
	key := "slug:" + slug
	v, gen, ok := s.cache.get(entity.KindNews, key)
	if ok {
		return v.(*entity.NewsArticle), nil
	}

	ctx, span := startSpan(ctx, "NewsBySlug", entity.KindNews)
	defer span.End()

	n, err := s.News.GetPublishedBySlug(ctx, slug)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("get news by slug: %w", err)
	}
	if n == nil {
		return nil, entity.ErrNotFound
	}
	s.cache.set(entity.KindNews, key, n, gen)
	return n, nil
}

// ActivePartnerships returns up to limit active entries by display order.
func (s *Service) ActivePartnerships(ctx context.Context, limit int) ([]*entity.PartnershipEntry, error) {
	key := "list:" + strconv.Itoa(limit)
	v, gen, ok := s.cache.get(entity.KindPartnership, key)
	if ok {
		return v.([]*entity.PartnershipEntry), nil
	}

	ctx, span := startSpan(ctx, "ActivePartnerships", entity.KindPartnership)
	defer span.End()

	items, err := s.Partnerships.ListActive(ctx, limit)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("list active partnerships: %w", err)
	}
	s.cache.set(entity.KindPartnership, key, items, gen)
	return items, nil
}

// PartnershipBySlug returns an active entry or entity.ErrNotFound.
func (s *Service) PartnershipBySlug(ctx context.Context, slug string) (*entity.PartnershipEntry, error) {
	key := "slug:" + slug
	v, gen, ok := s.cache.get(entity.KindPartnership, key)
	if ok {
		return v.(*entity.PartnershipEntry), nil
	}

	ctx, span := startSpan(ctx, "PartnershipBySlug", entity.KindPartnership)
	defer span.End()

	p, err := s.Partnerships.GetActiveBySlug(ctx, slug)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("get partnership by slug: %w", err)
	}
	if p == nil {
		return nil, entity.ErrNotFound
	}
	s.cache.set(entity.KindPartnership, key, p, gen)
	return p, nil
}
