package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"sitecms/internal/domain/entity"
)

func duplicateSlug(table string) error {
	return &entity.PersistenceError{
		Op:      "create",
		Code:    "23505",
		Message: `duplicate key value violates unique constraint "` + table + `_slug_key"`,
	}
}

/* ──────────────────────────────── news ──────────────────────────────── */

type fakeNewsRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]entity.NewsArticle
	calls   map[string]int
	listErr error
	clock   func() time.Time

	// afterListPublished runs between the store read and the return.
	afterListPublished func()
}

func newFakeNewsRepo(clock func() time.Time) *fakeNewsRepo {
	return &fakeNewsRepo{rows: map[int64]entity.NewsArticle{}, calls: map[string]int{}, clock: clock}
}

func (r *fakeNewsRepo) List(context.Context) ([]*entity.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["List"]++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.NewsArticle, 0, len(r.rows))
	for _, n := range r.rows {
		n := n
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeNewsRepo) ListPublished(ctx context.Context, limit int) ([]*entity.NewsArticle, error) {
	r.mu.Lock()
	r.calls["ListPublished"]++
	r.mu.Unlock()
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*entity.NewsArticle
	for _, n := range all {
		if n.Published && (limit <= 0 || len(out) < limit) {
			out = append(out, n)
		}
	}
	if r.afterListPublished != nil {
		r.afterListPublished()
	}
	return out, nil
}

func (r *fakeNewsRepo) Get(_ context.Context, id int64) (*entity.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r *fakeNewsRepo) GetPublishedBySlug(_ context.Context, slug string) (*entity.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["GetPublishedBySlug"]++
	for _, n := range r.rows {
		if n.Slug == slug && n.Published {
			return &n, nil
		}
	}
	return nil, nil
}

func (r *fakeNewsRepo) Create(_ context.Context, a *entity.NewsArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.Slug == a.Slug {
			return duplicateSlug("news")
		}
	}
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = r.clock()
	a.UpdatedAt = a.CreatedAt
	r.rows[a.ID] = *a
	return nil
}

func (r *fakeNewsRepo) Update(_ context.Context, a *entity.NewsArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return entity.NewNotFoundError("update")
	}
	a.UpdatedAt = r.clock()
	r.rows[a.ID] = *a
	return nil
}

func (r *fakeNewsRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return entity.NewNotFoundError("delete")
	}
	delete(r.rows, id)
	return nil
}

/* ──────────────────────────────── partnerships ──────────────────────────────── */

type fakePartnershipRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]entity.PartnershipEntry
	calls  map[string]int
}

func newFakePartnershipRepo() *fakePartnershipRepo {
	return &fakePartnershipRepo{rows: map[int64]entity.PartnershipEntry{}, calls: map[string]int{}}
}

func (r *fakePartnershipRepo) List(context.Context) ([]*entity.PartnershipEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.PartnershipEntry, 0, len(r.rows))
	for _, p := range r.rows {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder == out[j].DisplayOrder {
			return out[i].ID < out[j].ID
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out, nil
}

func (r *fakePartnershipRepo) ListActive(ctx context.Context, limit int) ([]*entity.PartnershipEntry, error) {
	r.mu.Lock()
	r.calls["ListActive"]++
	r.mu.Unlock()
	all, _ := r.List(ctx)
	var out []*entity.PartnershipEntry
	for _, p := range all {
		if p.Active && (limit <= 0 || len(out) < limit) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePartnershipRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

func (r *fakePartnershipRepo) Get(_ context.Context, id int64) (*entity.PartnershipEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePartnershipRepo) GetActiveBySlug(_ context.Context, slug string) (*entity.PartnershipEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.Slug == slug && p.Active {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakePartnershipRepo) Create(_ context.Context, p *entity.PartnershipEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.Slug == p.Slug {
			return duplicateSlug("partnerships")
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.rows[p.ID] = *p
	return nil
}

func (r *fakePartnershipRepo) Update(_ context.Context, p *entity.PartnershipEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return entity.NewNotFoundError("update")
	}
	r.rows[p.ID] = *p
	return nil
}

func (r *fakePartnershipRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return entity.NewNotFoundError("delete")
	}
	delete(r.rows, id)
	return nil
}
