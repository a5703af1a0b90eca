// Package http holds the HTTP server plumbing shared by the admin and public
// APIs: middleware, metrics and health probes.
package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"sitecms/internal/handler/http/respond"
	"sitecms/internal/observability/metrics"

	"github.com/sony/gobreaker"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Breaker is a circuit breaker whose state is reported by the health check.
type Breaker interface {
	Name() string
	State() gobreaker.State
}

// HealthHandler reports database connectivity, pool usage and the state of
// the circuit breakers guarding the store, the object store and the AI
// provider. An open breaker degrades the report without failing it.
type HealthHandler struct {
	DB       *sql.DB
	Breakers []Breaker
	Version  string

	// AIConfigured is false when no provider key was supplied; drafts then
	// fail with a configuration error.
	AIConfigured bool
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	overall := statusHealthy

	db := h.checkDatabase(ctx)
	checks["database"] = db
	overall = worst(overall, db.Status)

	if len(h.Breakers) > 0 {
		cb := h.checkBreakers()
		checks["circuit_breakers"] = cb
		overall = worst(overall, cb.Status)
	}

	ai := CheckStatus{Status: statusHealthy}
	if !h.AIConfigured {
		ai = CheckStatus{Status: statusDegraded, Message: "no AI provider configured"}
	}
	checks["ai_provider"] = ai
	overall = worst(overall, ai.Status)

	code := http.StatusOK
	if overall == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: statusDegraded, Message: "connection pool max connections not configured", Details: details}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80 {
		return CheckStatus{Status: statusDegraded, Message: "connection pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkBreakers() CheckStatus {
	details := make(map[string]any, len(h.Breakers))
	status := statusHealthy
	for _, b := range h.Breakers {
		st := b.State()
		details[b.Name()] = st.String()
		if st != gobreaker.StateClosed {
			status = statusDegraded
		}
	}
	return CheckStatus{Status: status, Details: details}
}

func worst(a, b string) string {
	rank := map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// ReadyHandler answers 200 once the database accepts queries.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		respond.Error(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		respond.Error(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// LiveHandler always answers 200 while the process can serve requests.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
