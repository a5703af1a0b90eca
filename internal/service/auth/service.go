// Package auth issues and verifies editor sessions.
//
// Sessions are HS256 JWTs carrying the editor email, a session id and the
// role. Sign-out revokes the session id until the token would have expired.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sitecms/internal/domain/entity"
	"sitecms/internal/observability/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Session is an authenticated editor session.
type Session struct {
	ID        string
	Email     string
	Role      string
	Token     string
	ExpiresAt time.Time
}

// Config tunes token lifetime and sign-in throttling.
type Config struct {
	Secret      []byte
	TTL         time.Duration
	SignInRate  rate.Limit // attempts per second per email
	SignInBurst int
}

const (
	defaultTTL         = 8 * time.Hour
	defaultSignInRate  = rate.Limit(1.0 / 12) // 5 per minute
	defaultSignInBurst = 5
	limiterIdle        = 15 * time.Minute
)

var errThrottled = &entity.AuthError{Message: "Too many sign-in attempts. Please wait a moment and try again."}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Service authenticates editors and manages their tokens.
type Service struct {
	provider Provider
	cfg      Config
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	revoked  map[string]time.Time // session id -> token expiry
}

func NewService(provider Provider, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.SignInRate <= 0 {
		cfg.SignInRate = defaultSignInRate
	}
	if cfg.SignInBurst <= 0 {
		cfg.SignInBurst = defaultSignInBurst
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
		revoked:  make(map[string]time.Time),
	}
}

// SignIn checks the credentials and returns a fresh session. Wrong
// credentials give an AuthError wrapping entity.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !s.allow(email) {
		metrics.RecordSignIn("throttled")
		slog.Warn("sign-in throttled", slog.String("email", email))
		return nil, errThrottled
	}

	role, err := s.provider.Authenticate(ctx, Credentials{Email: email, Password: password})
	if err != nil {
		metrics.RecordSignIn(metrics.StatusInvalid)
		slog.Warn("sign-in failed", slog.String("email", email))
		if errors.Is(err, entity.ErrInvalidCredentials) {
			return nil, &entity.AuthError{Err: entity.ErrInvalidCredentials}
		}
		return nil, &entity.AuthError{Message: err.Error(), Err: err}
	}

	sess, err := s.issue(email, role)
	if err != nil {
		metrics.RecordSignIn(metrics.StatusFailure)
		return nil, err
	}
	metrics.RecordSignIn(metrics.StatusSuccess)
	slog.Info("editor signed in", slog.String("email", email), slog.String("session_id", sess.ID))
	return sess, nil
}

func (s *Service) issue(email, role string) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		ExpiresAt: now.Add(s.cfg.TTL).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sess.Email,
		"sid":  sess.ID,
		"role": sess.Role,
		"iat":  now.Unix(),
		"exp":  sess.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	sess.Token = signed
	return sess, nil
}

// Verify parses a bearer token and returns its session. Expired or revoked
// sessions give an AuthError wrapping entity.ErrSessionExpired.
func (s *Service) Verify(token string) (*Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &entity.AuthError{Message: "Your session has expired. Please sign in again.", Err: entity.ErrSessionExpired}
		}
		return nil, &entity.AuthError{Message: "invalid session token", Err: err}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &entity.AuthError{Message: "invalid session claims"}
	}
	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	role, _ := claims["role"].(string)
	exp, err := claims.GetExpirationTime()
	if sub == "" || sid == "" || role == "" || err != nil || exp == nil {
		return nil, &entity.AuthError{Message: "invalid session claims"}
	}

	if s.isRevoked(sid) {
		return nil, &entity.AuthError{Message: "Your session has ended. Please sign in again.", Err: entity.ErrSessionExpired}
	}

	return &Session{ID: sid, Email: sub, Role: role, Token: token, ExpiresAt: exp.Time}, nil
}

// Revoke ends a session before its token expires.
func (s *Service) Revoke(sess *Session) {
	if sess == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[sess.ID] = sess.ExpiresAt
}

func (s *Service) isRevoked(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[sid]
	return ok
}

// allow applies the per-email sign-in limiter.
func (s *Service) allow(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.limiters[email]
	if !ok {
		for k, old := range s.limiters {
			if now.Sub(old.lastSeen) > limiterIdle {
				delete(s.limiters, k)
			}
		}
		e = &limiterEntry{limiter: rate.NewLimiter(s.cfg.SignInRate, s.cfg.SignInBurst)}
		s.limiters[email] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
