package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_RecordsStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	assert.Equal(t, http.StatusOK, w.StatusCode())
	assert.False(t, w.Written())

	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusTeapot) // ignored
	n, err := w.Write([]byte("hello"))

	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusCreated, w.StatusCode())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 5, w.BytesWritten())
	assert.True(t, w.Written())
}

func TestWrap_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)
	_, _ = w.Write([]byte("x"))
	assert.Equal(t, http.StatusOK, w.StatusCode())
}

func TestWrap_Idempotent(t *testing.T) {
	w := Wrap(httptest.NewRecorder())
	assert.Same(t, w, Wrap(w))
	assert.NotNil(t, w.Unwrap())
}
