package public

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"sitecms/internal/domain/entity"
	"sitecms/internal/handler/http/respond"
)

// MaxLimit caps the limit query parameter.
const MaxLimit = 100

// Reader is the public read side of the content service.
type Reader interface {
	PublishedNews(ctx context.Context, limit int) ([]*entity.NewsArticle, error)
	NewsBySlug(ctx context.Context, slug string) (*entity.NewsArticle, error)
	ActivePartnerships(ctx context.Context, limit int) ([]*entity.PartnershipEntry, error)
	PartnershipBySlug(ctx context.Context, slug string) (*entity.PartnershipEntry, error)
}

var errBadLimit = errors.New("limit must be an integer between 1 and 100")

// parseLimit returns 0, meaning no limit, when the parameter is absent.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, errBadLimit
	}
	return n, nil
}

func setCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "public, max-age=60")
}

// ListNewsHandler serves GET /news.
type ListNewsHandler struct{ Svc Reader }

func (h ListNewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := h.Svc.PublishedNews(r.Context(), limit)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	out := make([]NewsDTO, 0, len(items))
	for _, n := range items {
		out = append(out, newsDTO(n))
	}
	setCacheHeaders(w)
	respond.JSON(w, http.StatusOK, out)
}

// GetNewsHandler serves GET /news/{slug}.
type GetNewsHandler struct{ Svc Reader }

func (h GetNewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.NewsBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	setCacheHeaders(w)
	respond.JSON(w, http.StatusOK, newsDTO(n))
}

// ListPartnershipsHandler serves GET /partnerships.
type ListPartnershipsHandler struct{ Svc Reader }

func (h ListPartnershipsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	items, err := h.Svc.ActivePartnerships(r.Context(), limit)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	out := make([]PartnershipDTO, 0, len(items))
	for _, p := range items {
		out = append(out, partnershipDTO(p))
	}
	setCacheHeaders(w)
	respond.JSON(w, http.StatusOK, out)
}

// GetPartnershipHandler serves GET /partnerships/{slug}.
type GetPartnershipHandler struct{ Svc Reader }

func (h GetPartnershipHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.PartnershipBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	setCacheHeaders(w)
	respond.JSON(w, http.StatusOK, partnershipDTO(p))
}
