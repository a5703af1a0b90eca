package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"sitecms/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestService(t *testing.T) *Service {
	t.Helper()
	provider := NewAccountProvider([]Account{
		{Email: "Redaction@Example.org", Password: "correct horse battery"},
		{Email: "admin@example.org", Password: "another long secret", Role: RoleAdmin},
	})
	return NewService(provider, Config{Secret: testSecret, TTL: time.Hour})
}

/* ──────────────────────────────── AccountProvider ──────────────────────────────── */

func TestAccountProvider_Authenticate(t *testing.T) {
	p := NewAccountProvider([]Account{
		{Email: "a@example.org", Password: "pw-a"},
		{Email: "b@example.org", Password: "pw-b", Role: RoleAdmin},
	})

	tests := []struct {
		name    string
		creds   Credentials
		role    string
		wantErr bool
	}{
		{"editor", Credentials{"a@example.org", "pw-a"}, RoleEditor, false},
		{"admin with caps and spaces", Credentials{" B@Example.org ", "pw-b"}, RoleAdmin, false},
		{"wrong password", Credentials{"a@example.org", "pw-b"}, "", true},
		{"unknown email", Credentials{"c@example.org", "pw-a"}, "", true},
		{"empty", Credentials{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := p.Authenticate(context.Background(), tt.creds)
			if tt.wantErr {
				assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, role)
		})
	}
}

/* ──────────────────────────────── SignIn / Verify ──────────────────────────────── */

func TestSignIn_IssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t)

	sess, err := svc.SignIn(context.Background(), "redaction@example.org", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "redaction@example.org", sess.Email)
	assert.Equal(t, RoleEditor, sess.Role)
	assert.NotEmpty(t, sess.ID)

	got, err := svc.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Email, got.Email)
	assert.True(t, got.ExpiresAt.Equal(sess.ExpiresAt))
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SignIn(context.Background(), "redaction@example.org", "nope")

	var ae *entity.AuthError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestSignIn_Throttled(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < defaultSignInBurst; i++ {
		_, err := svc.SignIn(ctx, "redaction@example.org", "wrong")
		require.ErrorIs(t, err, entity.ErrInvalidCredentials)
	}

	_, err := svc.SignIn(ctx, "redaction@example.org", "correct horse battery")
	var ae *entity.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Error(), "Too many sign-in attempts")

	// other emails are unaffected
	_, err = svc.SignIn(ctx, "admin@example.org", "another long secret")
	assert.NoError(t, err)
}

func TestVerify_Expired(t *testing.T) {
	svc := newTestService(t)
	sess, err := svc.SignIn(context.Background(), "admin@example.org", "another long secret")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(sess.Token)
	assert.ErrorIs(t, err, entity.ErrSessionExpired)
}

func TestVerify_Revoked(t *testing.T) {
	svc := newTestService(t)
	sess, err := svc.SignIn(context.Background(), "admin@example.org", "another long secret")
	require.NoError(t, err)

	svc.Revoke(sess)
	_, err = svc.Verify(sess.Token)
	assert.ErrorIs(t, err, entity.ErrSessionExpired)
}

func TestVerify_RejectsForeignTokens(t *testing.T) {
	svc := newTestService(t)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "x@example.org", "sid": "s", "role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := other.SignedString([]byte(strings.Repeat("z", 32)))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	var ae *entity.AuthError
	require.ErrorAs(t, err, &ae)
	assert.NotErrorIs(t, err, entity.ErrSessionExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "sid": "s", "role": "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(unsigned)
	require.ErrorAs(t, err, &ae)

	missingSID := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "x@example.org", "role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err = missingSID.SignedString(testSecret)
	require.NoError(t, err)
	_, err = svc.Verify(signed)
	require.ErrorAs(t, err, &ae)
}
