package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 accepts path-style PutObject requests and honours If-None-Match: *.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.objects[r.URL.Path]; exists && r.Header.Get("If-None-Match") == "*" {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>PreconditionFailed</Code><Message>At least one of the pre-conditions you specified did not hold</Message></Error>`)
		return
	}
	f.objects[r.URL.Path] = body
	f.headers[r.URL.Path] = r.Header.Clone()
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(http.StatusOK)
}

func newTestS3Store(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent/credentials")

	fake := &fakeS3{objects: map[string][]byte{}, headers: map[string]http.Header{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Config{
		Region:          "eu-west-3",
		Bucket:          "site-media",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
		PublicBaseURL:   "https://cdn.example.com",
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3Store_Upload(t *testing.T) {
	store, fake := newTestS3Store(t)
	payload := []byte("\x89PNG fake")

	path, err := store.Upload(context.Background(), "covers", "1700-abcd.png",
		bytes.NewReader(payload), int64(len(payload)), PutOptions{ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "1700-abcd.png", path)
	assert.Equal(t, "https://cdn.example.com/covers/1700-abcd.png", store.PublicURL("covers", path))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, payload, fake.objects["/site-media/covers/1700-abcd.png"])
	h := fake.headers["/site-media/covers/1700-abcd.png"]
	assert.Equal(t, "image/png", h.Get("Content-Type"))
	assert.Equal(t, "*", h.Get("If-None-Match"))
}

func TestS3Store_UploadConflict(t *testing.T) {
	store, _ := newTestS3Store(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, "logos", "dup.png", bytes.NewReader([]byte("a")), 1, PutOptions{ContentType: "image/png"})
	require.NoError(t, err)

	_, err = store.Upload(ctx, "logos", "dup.png", bytes.NewReader([]byte("b")), 1, PutOptions{ContentType: "image/png"})
	var se *Error
	require.True(t, errors.As(err, &se), "got %T %v", err, err)
	assert.Equal(t, ErrCodeAlreadyExists, se.Code)
}

func TestNewS3Store_Validation(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{PublicBaseURL: "https://x"})
	assert.Error(t, err)

	_, err = NewS3Store(context.Background(), S3Config{Bucket: "b"})
	assert.Error(t, err)
}
