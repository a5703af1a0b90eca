package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBreaker struct {
	name  string
	state gobreaker.State
}

func (b fakeBreaker) Name() string           { return b.name }
func (b fakeBreaker) State() gobreaker.State { return b.state }

func serveHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	return rec.Code, body
}

func TestHealthHandler_Healthy(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(10)
	mock.ExpectPing()

	code, body := serveHealth(t, &HealthHandler{
		DB:           db,
		Version:      "1.2.3",
		AIConfigured: true,
		Breakers:     []Breaker{fakeBreaker{"database", gobreaker.StateClosed}},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.EqualValues(t, 10, body.Checks["database"].Details["max_open_connections"])
	assert.Equal(t, "closed", body.Checks["circuit_breakers"].Details["database"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("dial tcp: connection refused"))

	code, body := serveHealth(t, &HealthHandler{DB: db, AIConfigured: true})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "dial tcp: connection refused", body.Checks["database"].Message)
}

func TestHealthHandler_DegradedStaysOK(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(10)
	mock.ExpectPing()

	code, body := serveHealth(t, &HealthHandler{
		DB:       db,
		Breakers: []Breaker{fakeBreaker{"object-store", gobreaker.StateOpen}},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "degraded", body.Checks["circuit_breakers"].Status)
	assert.Equal(t, "open", body.Checks["circuit_breakers"].Details["object-store"])
	assert.Equal(t, "degraded", body.Checks["ai_provider"].Status)
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	code, body := serveHealth(t, &HealthHandler{AIConfigured: true})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not configured", body.Checks["database"].Message)
}

func TestReadyAndLive(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	rec := httptest.NewRecorder()
	(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
