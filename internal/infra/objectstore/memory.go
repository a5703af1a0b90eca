package objectstore

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps objects in process memory. It backs local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore returns an empty store whose public URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
	}
}

func (s *MemoryStore) Upload(ctx context.Context, bucket, name string, body io.Reader, _ int64, opts PutOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	key := bucket + "/" + name

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; exists && !opts.Overwrite {
		return "", &Error{Code: ErrCodeAlreadyExists, Message: "The resource already exists"}
	}
	s.objects[key] = memoryObject{data: data, contentType: opts.ContentType}
	return name, nil
}

func (s *MemoryStore) PublicURL(bucket, path string) string {
	return joinURL(s.baseURL, bucket, path)
}

// Get returns a stored object and its content type.
func (s *MemoryStore) Get(bucket, path string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[bucket+"/"+path]
	return obj.data, obj.contentType, ok
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
