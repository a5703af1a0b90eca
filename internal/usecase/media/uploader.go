// Package media validates editor image uploads and stores them in the object store.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"sitecms/internal/domain/entity"
	"sitecms/internal/infra/objectstore"
	"sitecms/internal/observability/metrics"
	"sitecms/internal/observability/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Logical buckets.
const (
	BucketCovers = "covers"
	BucketLogos  = "logos"
)

// DefaultMaxSize is the largest accepted image, in bytes.
const DefaultMaxSize int64 = 5 * 1024 * 1024

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// File is an image chosen by the editor.
type File struct {
	Name        string
	ContentType string
	// Size is the declared size; Body is still capped at MaxSize while reading.
	Size int64
	Body io.Reader
}

// Uploader stores images and returns their public address.
type Uploader struct {
	Store   objectstore.Store
	MaxSize int64

	// Now and Token are replaceable for tests.
	Now   func() time.Time
	Token func() string
}

// NewUploader returns an uploader with the default size limit.
func NewUploader(store objectstore.Store) *Uploader {
	return &Uploader{Store: store, MaxSize: DefaultMaxSize}
}

// Upload validates f, stores it under a fresh unique name in bucket and
// returns the public URL. Invalid files never reach the store.
func (u *Uploader) Upload(ctx context.Context, f File, bucket string) (string, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "media.Upload")
	defer span.End()
	span.SetAttributes(attribute.String("bucket", bucket), attribute.Int64("size", f.Size))

	maxSize := u.maxSize()
	if err := validate(f, maxSize); err != nil {
		metrics.RecordUpload(bucket, metrics.StatusInvalid, 0)
		return "", err
	}

	// Buffer the body so the store gets a seekable reader and an exact length.
	data, err := io.ReadAll(io.LimitReader(f.Body, maxSize+1))
	if err != nil {
		metrics.RecordUpload(bucket, metrics.StatusFailure, 0)
		return "", &entity.UploadError{Bucket: bucket, Message: fmt.Sprintf("read file: %v", err), Err: err}
	}
	if int64(len(data)) > maxSize {
		metrics.RecordUpload(bucket, metrics.StatusInvalid, 0)
		return "", tooLarge(maxSize)
	}
	if len(data) == 0 {
		metrics.RecordUpload(bucket, metrics.StatusInvalid, 0)
		return "", &entity.ValidationError{Field: "file", Message: "file is empty"}
	}

	name := u.objectName(f)
	stored, err := u.Store.Upload(ctx, bucket, name, bytes.NewReader(data), int64(len(data)), objectstore.PutOptions{
		ContentType:  normalizeType(f.ContentType),
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordUpload(bucket, metrics.StatusFailure, 0)
		slog.Warn("image upload failed",
			slog.String("bucket", bucket),
			slog.String("name", name),
			slog.Any("error", err))
		return "", &entity.UploadError{Bucket: bucket, Message: storeMessage(err), Err: err}
	}

	metrics.RecordUpload(bucket, metrics.StatusSuccess, int64(len(data)))
	return u.Store.PublicURL(bucket, stored), nil
}

func (u *Uploader) maxSize() int64 {
	if u.MaxSize > 0 {
		return u.MaxSize
	}
	return DefaultMaxSize
}

// objectName is "<unix-millis>-<8 hex chars><ext>".
func (u *Uploader) objectName(f File) string {
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	token := u.Token
	if token == nil {
		token = randomToken
	}
	return fmt.Sprintf("%d-%s%s", now().UnixMilli(), token(), extension(f))
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func validate(f File, maxSize int64) error {
	if f.Body == nil || f.Size == 0 {
		return &entity.ValidationError{Field: "file", Message: "file is empty"}
	}
	if f.Size > maxSize {
		return tooLarge(maxSize)
	}
	ct := normalizeType(f.ContentType)
	if _, ok := allowedTypes[ct]; !ok {
		return &entity.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported image type %q; use JPEG, PNG, WebP or GIF", f.ContentType),
		}
	}
	return nil
}

func tooLarge(maxSize int64) error {
	return &entity.ValidationError{
		Field:   "file",
		Message: fmt.Sprintf("image exceeds the %d MB limit", maxSize/(1024*1024)),
	}
}

// normalizeType drops parameters such as "; charset=binary".
func normalizeType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// extension prefers the original file's extension and falls back to the MIME type.
func extension(f File) string {
	if ext := strings.ToLower(path.Ext(f.Name)); ext != "" && len(ext) <= 6 && !strings.ContainsAny(ext, "/\\ ") {
		return ext
	}
	return allowedTypes[normalizeType(f.ContentType)]
}

func storeMessage(err error) string {
	var se *objectstore.Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
