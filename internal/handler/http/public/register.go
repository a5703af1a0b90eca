package public

import "net/http"

// Register mounts the public routes on mux, each wrapped by wrap when it
// is not nil (the per-IP rate limiter in production).
func Register(mux *http.ServeMux, svc Reader, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(h http.Handler) http.Handler { return h }
	}
	mux.Handle("GET /news", wrap(ListNewsHandler{svc}))
	mux.Handle("GET /news/{slug}", wrap(GetNewsHandler{svc}))
	mux.Handle("GET /partnerships", wrap(ListPartnershipsHandler{svc}))
	mux.Handle("GET /partnerships/{slug}", wrap(GetPartnershipHandler{svc}))
}
