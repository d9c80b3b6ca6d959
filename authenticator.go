package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionName is recorded on every minted token row. The forum's
// original API clients know sessions under this label.
var SessionName = "oexchanger"

// Auther implements Authenticator over an IdentityProvider and a
// TokenIssuer. Login failures are uniform: the caller can never tell an
// unknown email from a wrong password.
type Auther struct {
	provider     IdentityProvider
	tokens       TokenIssuer
	scope        RevocationScope
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, tokens TokenIssuer, cfg Config) *Auther {
	return &Auther{
		provider:     provider,
		tokens:       tokens,
		scope:        cfg.GetRevocationScope(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Login verifies credentials and mints an opaque bearer session.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Debug("login verify identity error: %v", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
		})
		return "", err
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "identity carries an invalid id")
	}

	token, err := s.tokens.Issue(ctx, userID, SessionName)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
		})
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return token, nil
}

// IdentityFromToken resolves a bearer handle back to its identity.
// Unknown or malformed handles return ErrIdentityNotFound; callers on
// read paths should map that to anonymous, not to a failure.
func (s *Auther) IdentityFromToken(ctx context.Context, token string) (Identity, error) {
	userID, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.provider.FindIdentityByIdentifier(ctx, userID.String())
}

// Logout revokes sessions for the token's owner using the configured
// scope. An unknown token is not an error: it reports false the way the
// original logout mutation did for anonymous callers.
func (s *Auther) Logout(ctx context.Context, token string) (bool, error) {
	userID, err := s.tokens.Validate(ctx, token)
	if err != nil {
		if goerrors.Is(err, ErrIdentityNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.tokens.Revoke(ctx, userID, s.scope, token); err != nil {
		return false, err
	}

	s.emitAuthEvent(ctx, ActivityEventLogout, ActorRef{ID: userID.String(), Type: "user"}, userID.String(), map[string]any{
		"scope": string(s.scope),
	})

	return true, nil
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	return ActorRef{ID: identity.ID(), Type: "user"}
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink error for %s: %v", string(eventType), err)
	}
}
