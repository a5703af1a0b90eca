package http

import (
	"net/http"
	"strconv"

	"sitecms/internal/handler/http/respond"
)

// ObjectReader reads stored objects back by bucket and name.
type ObjectReader interface {
	Get(bucket, name string) ([]byte, string, bool)
}

// MediaHandler serves uploaded images when the object store keeps them in
// process memory. Mount it on "GET /media/{bucket}/{name...}".
type MediaHandler struct {
	Store ObjectReader
}

func (h MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := h.Store.Get(r.PathValue("bucket"), r.PathValue("name"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(data)
}
