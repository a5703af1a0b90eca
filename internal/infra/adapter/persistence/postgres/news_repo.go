package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sitecms/internal/domain/entity"
	"sitecms/internal/repository"
)

type NewsRepo struct{ db DBTX }

func NewNewsRepo(db DBTX) repository.NewsRepository {
	return &NewsRepo{db: db}
}

const newsColumns = `id, title, slug, excerpt, content, cover_image_url, gallery,
       published, published_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNews(row rowScanner) (*entity.NewsArticle, error) {
	var n entity.NewsArticle
	var galleryJSON []byte
	if err := row.Scan(
		&n.ID, &n.Title, &n.Slug, &n.Excerpt, &n.Content, &n.CoverImageURL, &galleryJSON,
		&n.Published, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	n.Gallery = []string{}
	if len(galleryJSON) > 0 {
		if err := json.Unmarshal(galleryJSON, &n.Gallery); err != nil {
			return nil, fmt.Errorf("unmarshal gallery: %w", err)
		}
	}
	return &n, nil
}

func marshalGallery(gallery []string) ([]byte, error) {
	if gallery == nil {
		gallery = []string{}
	}
	return json.Marshal(gallery)
}

func (repo *NewsRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.NewsArticle, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.NewsArticle, 0, 32)
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, storeError(op, err)
		}
		articles = append(articles, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return articles, nil
}

func (repo *NewsRepo) List(ctx context.Context) ([]*entity.NewsArticle, error) {
	const query = `
SELECT ` + newsColumns + `
FROM news
ORDER BY created_at DESC, id DESC`
	return repo.queryList(ctx, "List", query)
}

func (repo *NewsRepo) ListPublished(ctx context.Context, limit int) ([]*entity.NewsArticle, error) {
	const query = `
SELECT ` + newsColumns + `
FROM news
WHERE published = TRUE
ORDER BY published_at DESC NULLS LAST, id DESC
LIMIT $1`
	return repo.queryList(ctx, "ListPublished", query, limitArg(limit))
}

func (repo *NewsRepo) Get(ctx context.Context, id int64) (*entity.NewsArticle, error) {
	const query = `
SELECT ` + newsColumns + `
FROM news
WHERE id = $1
LIMIT 1`
	n, err := scanNews(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("Get", err)
	}
	return n, nil
}

func (repo *NewsRepo) GetPublishedBySlug(ctx context.Context, slug string) (*entity.NewsArticle, error) {
	const query = `
SELECT ` + newsColumns + `
FROM news
WHERE slug = $1 AND published = TRUE
LIMIT 1`
	n, err := scanNews(repo.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("GetPublishedBySlug", err)
	}
	return n, nil
}

func (repo *NewsRepo) Create(ctx context.Context, n *entity.NewsArticle) error {
	gallery, err := marshalGallery(n.Gallery)
	if err != nil {
		return fmt.Errorf("Create: marshal gallery: %w", err)
	}

	const query = `
INSERT INTO news (title, slug, excerpt, content, cover_image_url, gallery, published, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	err = repo.db.QueryRowContext(ctx, query,
		n.Title, n.Slug, n.Excerpt, n.Content, n.CoverImageURL,
		gallery, n.Published, n.PublishedAt,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return storeError("Create", err)
	}
	return nil
}

func (repo *NewsRepo) Update(ctx context.Context, n *entity.NewsArticle) error {
	gallery, err := marshalGallery(n.Gallery)
	if err != nil {
		return fmt.Errorf("Update: marshal gallery: %w", err)
	}

	const query = `
UPDATE news SET
       title           = $1,
       slug            = $2,
       excerpt         = $3,
       content         = $4,
       cover_image_url = $5,
       gallery         = $6,
       published       = $7,
       published_at    = $8,
       updated_at      = now()
WHERE id = $9
RETURNING updated_at`
	err = repo.db.QueryRowContext(ctx, query,
		n.Title, n.Slug, n.Excerpt, n.Content, n.CoverImageURL,
		gallery, n.Published, n.PublishedAt, n.ID,
	).Scan(&n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NewNotFoundError("Update")
	}
	if err != nil {
		return storeError("Update", err)
	}
	return nil
}

func (repo *NewsRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM news WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeError("Delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.NewNotFoundError("Delete")
	}
	return nil
}
