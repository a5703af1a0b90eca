package objectstore

import (
	"context"
	"errors"
	"io"

	"sitecms/internal/resilience/circuitbreaker"
)

// Guarded puts a circuit breaker in front of another Store.
type Guarded struct {
	next Store
	cb   *circuitbreaker.CircuitBreaker
}

// NewGuarded wraps next. Name conflicts and cancelled uploads do not count
// as store failures.
func NewGuarded(next Store, cfg circuitbreaker.Config) *Guarded {
	cfg.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) {
			return true
		}
		var se *Error
		return errors.As(err, &se) && se.Code == ErrCodeAlreadyExists
	}
	return &Guarded{next: next, cb: circuitbreaker.New(cfg)}
}

func (g *Guarded) Upload(ctx context.Context, bucket, name string, body io.Reader, size int64, opts PutOptions) (string, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Upload(ctx, bucket, name, body, size, opts)
	})
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return "", &Error{Code: "Unavailable", Message: "object store unavailable, try again shortly", Err: err}
	}
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (g *Guarded) PublicURL(bucket, path string) string {
	return g.next.PublicURL(bucket, path)
}

// Breaker exposes the breaker for health reporting.
func (g *Guarded) Breaker() *circuitbreaker.CircuitBreaker { return g.cb }
