package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated account
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	IdentityFromToken(ctx context.Context, token string) (Identity, error)
	Logout(ctx context.Context, token string) (bool, error)
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenIssuer mints and validates opaque bearer session tokens
type TokenIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID, name string) (string, error)
	Validate(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, userID uuid.UUID, scope RevocationScope, presented string) error
}

// RevocationScope selects which sessions a logout destroys
type RevocationScope string

const (
	// RevokeCurrent destroys only the token presented with the request
	RevokeCurrent RevocationScope = "current"
	// RevokeAll destroys every token owned by the account
	RevokeAll RevocationScope = "all"
)

// Config holds auth options
type Config interface {
	GetEncryptionKey() string
	GetVerifyTokenMode() VerifyTokenMode
	GetVerifyTokenTTL() time.Duration
	GetResetTokenTTL() time.Duration
	GetResetThrottleWindow() time.Duration
	GetBcryptCost() int
	GetRevocationScope() RevocationScope
	GetRevokeOnPasswordReset() bool
}

// Clock lets tests control time-dependent token checks
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
