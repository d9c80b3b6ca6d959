package auth

import (
	"context"

	"github.com/google/uuid"
)

// ModerationProvider answers whether a user may moderate a community.
// The answer is authoritative at call time only; membership and role
// changes take effect on the next check, not retroactively.
type ModerationProvider interface {
	CanModerate(ctx context.Context, userID, communityID uuid.UUID) (bool, error)
}

// ModerationProviderFunc adapts a function to ModerationProvider.
type ModerationProviderFunc func(ctx context.Context, userID, communityID uuid.UUID) (bool, error)

func (f ModerationProviderFunc) CanModerate(ctx context.Context, userID, communityID uuid.UUID) (bool, error) {
	return f(ctx, userID, communityID)
}

// denyAllModeration is the closed default: no one moderates anything
// until the host application wires a real provider.
type denyAllModeration struct{}

func (denyAllModeration) CanModerate(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func normalizeModerationProvider(p ModerationProvider) ModerationProvider {
	if p == nil {
		return denyAllModeration{}
	}
	return p
}

// RequireModerator wraps a provider check into the uniform authorization
// failure so callers do not leak why the check failed.
func RequireModerator(ctx context.Context, provider ModerationProvider, userID, communityID uuid.UUID) error {
	ok, err := normalizeModerationProvider(provider).CanModerate(ctx, userID, communityID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrActionUnauthorized
	}
	return nil
}
