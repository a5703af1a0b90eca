// Package middleware holds cross-cutting HTTP middleware configured from
// application settings.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORSConfig is the cross-origin policy for browser clients such as the
// public site and the admin screen.
type CORSConfig struct {
	// AllowedOrigins may contain one "*" wildcard per entry, as in
	// "https://*.example.org". A lone "*" allows every origin.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds

	// Logger receives debug lines about rejected preflights when set.
	Logger *slog.Logger
}

// DefaultCORSConfig allows the methods and headers the admin and public
// APIs use.
func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// CORS returns the middleware for cfg. Preflight requests are answered
// without reaching the wrapped handler. With no origins configured no CORS
// headers are ever added.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
	if cfg.Logger != nil {
		c.Log = slogPrintf{cfg.Logger.With(slog.String("component", "cors"))}
	}
	return c.Handler
}

type slogPrintf struct{ l *slog.Logger }

func (p slogPrintf) Printf(format string, args ...interface{}) {
	p.l.Debug(fmt.Sprintf(format, args...))
}
