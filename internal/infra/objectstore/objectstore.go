// Package objectstore holds the binary object store capability used for
// cover images, gallery images and partner logos.
package objectstore

import (
	"context"
	"io"
	"strings"
)

// PutOptions control a single upload.
type PutOptions struct {
	ContentType  string
	CacheControl string
	// Overwrite allows replacing an existing object. When false an existing
	// object with the same name makes the upload fail.
	Overwrite bool
}

// Store uploads objects and resolves their public address.
// Buckets are logical names such as "covers" or "logos".
type Store interface {
	// Upload stores body under name in bucket and returns the stored path.
	Upload(ctx context.Context, bucket, name string, body io.Reader, size int64, opts PutOptions) (string, error)
	// PublicURL never fails; it only formats an address.
	PublicURL(bucket, path string) string
}

// Error is a failure reported by the backend. Message is the backend's own text.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// ErrCodeAlreadyExists is used when Overwrite is false and the object exists.
const ErrCodeAlreadyExists = "AlreadyExists"

func joinURL(base string, parts ...string) string {
	u := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		u += "/" + p
	}
	return u
}
