package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sitecms/internal/domain/entity"
	"sitecms/internal/repository"
)

type PartnershipRepo struct{ db DBTX }

func NewPartnershipRepo(db DBTX) repository.PartnershipRepository {
	return &PartnershipRepo{db: db}
}

const partnershipColumns = `id, name, slug, description, logo_url, website_url, category,
       display_order, active, created_at, updated_at`

func scanPartnership(row rowScanner) (*entity.PartnershipEntry, error) {
	var p entity.PartnershipEntry
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.LogoURL, &p.WebsiteURL, &p.Category,
		&p.DisplayOrder, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (repo *PartnershipRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.PartnershipEntry, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.PartnershipEntry, 0, 32)
	for rows.Next() {
		p, err := scanPartnership(rows)
		if err != nil {
			return nil, storeError(op, err)
		}
		entries = append(entries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return entries, nil
}

func (repo *PartnershipRepo) List(ctx context.Context) ([]*entity.PartnershipEntry, error) {
	const query = `
SELECT ` + partnershipColumns + `
FROM partnerships
ORDER BY display_order ASC, id ASC`
	return repo.queryList(ctx, "List", query)
}

func (repo *PartnershipRepo) ListActive(ctx context.Context, limit int) ([]*entity.PartnershipEntry, error) {
	const query = `
SELECT ` + partnershipColumns + `
FROM partnerships
WHERE active = TRUE
ORDER BY display_order ASC, id ASC
LIMIT $1`
	return repo.queryList(ctx, "ListActive", query, limitArg(limit))
}

func (repo *PartnershipRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM partnerships`
	var n int
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, storeError("Count", err)
	}
	return n, nil
}

func (repo *PartnershipRepo) Get(ctx context.Context, id int64) (*entity.PartnershipEntry, error) {
	const query = `
SELECT ` + partnershipColumns + `
FROM partnerships
WHERE id = $1
LIMIT 1`
	p, err := scanPartnership(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("Get", err)
	}
	return p, nil
}

func (repo *PartnershipRepo) GetActiveBySlug(ctx context.Context, slug string) (*entity.PartnershipEntry, error) {
	const query = `
SELECT ` + partnershipColumns + `
FROM partnerships
WHERE slug = $1 AND active = TRUE
LIMIT 1`
	p, err := scanPartnership(repo.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("GetActiveBySlug", err)
	}
	return p, nil
}

func (repo *PartnershipRepo) Create(ctx context.Context, p *entity.PartnershipEntry) error {
	const query = `
INSERT INTO partnerships (name, slug, description, logo_url, website_url, category, display_order, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.Description, p.LogoURL, p.WebsiteURL, p.Category,
		p.DisplayOrder, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return storeError("Create", err)
	}
	return nil
}

func (repo *PartnershipRepo) Update(ctx context.Context, p *entity.PartnershipEntry) error {
	const query = `
UPDATE partnerships SET
       name          = $1,
       slug          = $2,
       description   = $3,
       logo_url      = $4,
       website_url   = $5,
       category      = $6,
       display_order = $7,
       active        = $8,
       updated_at    = now()
WHERE id = $9
RETURNING updated_at`
	err := repo.db.QueryRowContext(ctx, query,
		p.Name, p.Slug, p.Description, p.LogoURL, p.WebsiteURL, p.Category,
		p.DisplayOrder, p.Active, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.NewNotFoundError("Update")
	}
	if err != nil {
		return storeError("Update", err)
	}
	return nil
}

func (repo *PartnershipRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM partnerships WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeError("Delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.NewNotFoundError("Delete")
	}
	return nil
}
