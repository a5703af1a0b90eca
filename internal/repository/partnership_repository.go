package repository

import (
	"context"

	"sitecms/internal/domain/entity"
)

type PartnershipRepository interface {
	// List returns every entry ordered by display_order ASC, id ASC.
	List(ctx context.Context) ([]*entity.PartnershipEntry, error)
	ListActive(ctx context.Context, limit int) ([]*entity.PartnershipEntry, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (*entity.PartnershipEntry, error)
	GetActiveBySlug(ctx context.Context, slug string) (*entity.PartnershipEntry, error)
	Create(ctx context.Context, entry *entity.PartnershipEntry) error
	Update(ctx context.Context, entry *entity.PartnershipEntry) error
	Delete(ctx context.Context, id int64) error
}
