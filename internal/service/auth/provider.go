package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"sitecms/internal/domain/entity"
)

// Roles carried in session tokens.
const (
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// Account is a configured editor login.
type Account struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Credentials represents sign-in input.
type Credentials struct {
	Email    string
	Password string
}

// Provider checks credentials and returns the account's role.
type Provider interface {
	Authenticate(ctx context.Context, creds Credentials) (role string, err error)
}

// AccountProvider authenticates against a fixed list of accounts.
type AccountProvider struct {
	accounts []Account
}

// NewAccountProvider copies accounts; emails are matched case-insensitively.
func NewAccountProvider(accounts []Account) *AccountProvider {
	cp := make([]Account, len(accounts))
	for i, a := range accounts {
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		if a.Role == "" {
			a.Role = RoleEditor
		}
		cp[i] = a
	}
	return &AccountProvider{accounts: cp}
}

// Authenticate compares against every account with constant-time
// comparisons so timing does not reveal which emails exist.
func (p *AccountProvider) Authenticate(_ context.Context, creds Credentials) (string, error) {
	email := []byte(strings.ToLower(strings.TrimSpace(creds.Email)))
	pass := []byte(creds.Password)

	role := ""
	for _, a := range p.accounts {
		emailMatch := subtle.ConstantTimeCompare(email, []byte(a.Email))
		passMatch := subtle.ConstantTimeCompare(pass, []byte(a.Password))
		if emailMatch&passMatch == 1 && role == "" {
			role = a.Role
		}
	}
	if role == "" || len(pass) == 0 {
		return "", entity.ErrInvalidCredentials
	}
	return role, nil
}
