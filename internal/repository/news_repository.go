package repository

import (
	"context"

	"sitecms/internal/domain/entity"
)

type NewsRepository interface {
	// List returns every article, newest first (created_at DESC).
	List(ctx context.Context) ([]*entity.NewsArticle, error)
	// ListPublished returns at most limit published articles ordered by published_at DESC.
	// A limit <= 0 means no limit.
	ListPublished(ctx context.Context, limit int) ([]*entity.NewsArticle, error)
	// Get returns (nil, nil) when no row matches.
	Get(ctx context.Context, id int64) (*entity.NewsArticle, error)
	// GetPublishedBySlug returns (nil, nil) when no published article has the slug.
	GetPublishedBySlug(ctx context.Context, slug string) (*entity.NewsArticle, error)
	// Create inserts the article and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, article *entity.NewsArticle) error
	Update(ctx context.Context, article *entity.NewsArticle) error
	Delete(ctx context.Context, id int64) error
}
