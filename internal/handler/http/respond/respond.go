// Package respond writes JSON responses and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sitecms/internal/domain/entity"
	"sitecms/internal/infra/objectstore"

	"github.com/sony/gobreaker"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  string `json:"code,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes msg as an error body without inspecting it.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// SafeError writes an error whose message is only exposed for 4xx codes.
// 5xx details are logged with secrets masked and replaced by a generic text.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < 500 {
		JSON(w, code, ErrorBody{Error: err.Error()})
		return
	}
	slog.Default().Error("internal server error",
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: "internal server error"})
}

// StatusFor maps the domain error taxonomy to an HTTP status.
func StatusFor(err error) int {
	var (
		ve *entity.ValidationError
		fe *entity.FormatError
		ae *entity.AuthError
		pe *entity.PersistenceError
		ue *entity.UploadError
		ce *entity.ConfigurationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ae), errors.Is(err, entity.ErrInvalidCredentials), errors.Is(err, entity.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &pe):
		if isUnavailable(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusConflict
	case errors.As(err, &ue):
		return http.StatusBadGateway
	case errors.As(err, &ce):
		return http.StatusServiceUnavailable
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// isUnavailable reports a store failure caused by an open circuit rather
// than by the statement itself.
func isUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// DomainError writes err using StatusFor. Messages of known domain errors
// are passed through so editors see the store's or provider's own text.
func DomainError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		SafeError(w, code, err)
		return
	}

	body := ErrorBody{Error: err.Error()}
	var (
		ve *entity.ValidationError
		pe *entity.PersistenceError
		ue *entity.UploadError
		se *objectstore.Error
	)
	switch {
	case errors.As(err, &ve):
		body.Error, body.Field = ve.Message, ve.Field
	case errors.Is(err, entity.ErrNotFound) && !errors.As(err, &pe):
		body.Error = "not found"
	case errors.As(err, &pe):
		body.Error, body.Code = pe.Message, pe.Code
	case errors.As(err, &ue):
		body.Error = ue.Message
		if errors.As(err, &se) {
			body.Code = se.Code
		}
	}
	JSON(w, code, body)
}
