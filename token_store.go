package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// TokenStore issues, validates, and revokes opaque bearer sessions.
// Handles look like "<row id>|<secret>"; only the sha256 of the full
// handle is persisted, so a leaked table does not leak usable tokens.
// Many sessions may coexist per account.
type TokenStore struct {
	repo   RepositoryManager
	logger Logger
}

var _ TokenIssuer = (*TokenStore)(nil)

// NewTokenStore creates a store over the shared repositories.
func NewTokenStore(repo RepositoryManager) *TokenStore {
	return &TokenStore{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the store.
func (s *TokenStore) WithLogger(logger Logger) *TokenStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Issue mints a session for the account and returns the plaintext
// handle. The handle is shown exactly once; afterwards only its hash
// exists server side.
func (s *TokenStore) Issue(ctx context.Context, userID uuid.UUID, name string) (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate session secret")
	}

	id := uuid.New()
	handle := id.String() + "|" + base64.RawURLEncoding.EncodeToString(secret)

	record := &AuthToken{
		ID:        id,
		UserID:    userID,
		Name:      name,
		TokenHash: HashTokenSecret(handle),
	}

	if _, err := s.repo.AuthTokens().Create(ctx, record); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session token")
	}

	return handle, nil
}

// Validate resolves a presented handle to the owning account id.
// Malformed or unknown handles resolve to ErrIdentityNotFound so the
// transport can treat the request as anonymous instead of failing it.
func (s *TokenStore) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	if !looksLikeTokenHandle(token) {
		return uuid.Nil, ErrIdentityNotFound
	}

	record, err := s.repo.AuthTokens().GetByHash(ctx, HashTokenSecret(token))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return uuid.Nil, ErrIdentityNotFound
		}
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up session token")
	}

	if err := s.repo.AuthTokens().Touch(ctx, record.ID, time.Now()); err != nil {
		// a stale last_used_at is not worth failing the request over
		s.logger.Warn("failed to touch session token: %v", err)
	}

	return record.UserID, nil
}

// Revoke destroys sessions for the account. RevokeCurrent removes only
// the presented handle; RevokeAll removes every session the account owns.
func (s *TokenStore) Revoke(ctx context.Context, userID uuid.UUID, scope RevocationScope, presented string) error {
	switch scope {
	case RevokeAll:
		if err := s.repo.AuthTokens().DeleteAllForUser(ctx, userID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke account sessions")
		}
		return nil
	case RevokeCurrent, "":
		record, err := s.repo.AuthTokens().GetByHash(ctx, HashTokenSecret(presented))
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up session token")
		}

		if record.UserID != userID {
			return ErrActionUnauthorized
		}

		if err := s.repo.AuthTokens().DeleteByID(ctx, record.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke session token")
		}
		return nil
	default:
		return goerrors.New("unknown revocation scope", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"scope": string(scope)})
	}
}

// HashTokenSecret is the at-rest form of any opaque token in this
// package: session handles and password reset tokens alike.
func HashTokenSecret(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateResetToken mints the high-entropy opaque string handed to the
// reset notification.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func looksLikeTokenHandle(token string) bool {
	before, after, found := strings.Cut(token, "|")
	if !found || after == "" {
		return false
	}
	_, err := uuid.Parse(before)
	return err == nil
}
