package auth_test

import (
	"context"
	"strings"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/oexchanger/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreIssue(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepositoryManager()
	store := auth.NewTokenStore(repo).WithLogger(testLogger{})

	userID := uuid.New()
	var stored *auth.AuthToken

	repo.TokensRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *auth.AuthToken) bool {
		stored = rec
		return rec.UserID == userID && rec.Name == auth.SessionName
	})).Return(&auth.AuthToken{}, nil).Once()

	handle, err := store.Issue(ctx, userID, auth.SessionName)
	require.NoError(t, err)

	// "<row id>|<secret>", with the row id a parseable uuid
	before, after, found := strings.Cut(handle, "|")
	require.True(t, found)
	_, err = uuid.Parse(before)
	require.NoError(t, err)
	assert.NotEmpty(t, after)

	// only the hash of the full handle hits the store
	require.NotNil(t, stored)
	assert.NotEqual(t, handle, stored.TokenHash)
	assert.Equal(t, auth.HashTokenSecret(handle), stored.TokenHash)

	repo.TokensRepo.AssertExpectations(t)
}

func TestTokenStoreValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid handle resolves the owner and touches the row", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		userID := uuid.New()
		rowID := uuid.New()
		handle := rowID.String() + "|some-secret"

		repo.TokensRepo.On("GetByHash", ctx, auth.HashTokenSecret(handle)).
			Return(&auth.AuthToken{ID: rowID, UserID: userID}, nil).Once()
		repo.TokensRepo.On("Touch", ctx, rowID, mock.Anything).Return(nil).Once()

		got, err := store.Validate(ctx, handle)

		require.NoError(t, err)
		assert.Equal(t, userID, got)

		repo.TokensRepo.AssertExpectations(t)
	})

	t.Run("malformed handle never reaches the store", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		for _, handle := range []string{"", "no-separator", "not-a-uuid|secret", uuid.NewString() + "|"} {
			_, err := store.Validate(ctx, handle)
			assert.ErrorIs(t, err, auth.ErrIdentityNotFound, "handle %q", handle)
		}

		repo.TokensRepo.AssertNotCalled(t, "GetByHash", mock.Anything, mock.Anything)
	})

	t.Run("unknown handle resolves to identity not found", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		handle := uuid.NewString() + "|unknown-secret"

		repo.TokensRepo.On("GetByHash", ctx, auth.HashTokenSecret(handle)).
			Return(nil, repository.NewRecordNotFound()).Once()

		_, err := store.Validate(ctx, handle)

		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		repo.TokensRepo.AssertExpectations(t)
	})

	t.Run("a stale touch does not fail validation", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		userID := uuid.New()
		rowID := uuid.New()
		handle := rowID.String() + "|some-secret"

		repo.TokensRepo.On("GetByHash", ctx, auth.HashTokenSecret(handle)).
			Return(&auth.AuthToken{ID: rowID, UserID: userID}, nil).Once()
		repo.TokensRepo.On("Touch", ctx, rowID, mock.Anything).Return(assert.AnError).Once()

		got, err := store.Validate(ctx, handle)

		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})
}

func TestTokenStoreRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("current scope removes only the presented session", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		userID := uuid.New()
		rowID := uuid.New()
		handle := rowID.String() + "|secret"

		repo.TokensRepo.On("GetByHash", ctx, auth.HashTokenSecret(handle)).
			Return(&auth.AuthToken{ID: rowID, UserID: userID}, nil).Once()
		repo.TokensRepo.On("DeleteByID", ctx, rowID).Return(nil).Once()

		err := store.Revoke(ctx, userID, auth.RevokeCurrent, handle)

		require.NoError(t, err)
		repo.TokensRepo.AssertExpectations(t)
		repo.TokensRepo.AssertNotCalled(t, "DeleteAllForUser", mock.Anything, mock.Anything)
	})

	t.Run("all scope removes every session for the account", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		userID := uuid.New()

		repo.TokensRepo.On("DeleteAllForUser", ctx, userID).Return(nil).Once()

		err := store.Revoke(ctx, userID, auth.RevokeAll, "")

		require.NoError(t, err)
		repo.TokensRepo.AssertExpectations(t)
	})

	t.Run("someone else's token cannot be revoked", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		rowID := uuid.New()
		handle := rowID.String() + "|secret"

		repo.TokensRepo.On("GetByHash", ctx, auth.HashTokenSecret(handle)).
			Return(&auth.AuthToken{ID: rowID, UserID: uuid.New()}, nil).Once()

		err := store.Revoke(ctx, uuid.New(), auth.RevokeCurrent, handle)

		assert.ErrorIs(t, err, auth.ErrActionUnauthorized)
		repo.TokensRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown scope is rejected", func(t *testing.T) {
		repo := newMockRepositoryManager()
		store := auth.NewTokenStore(repo).WithLogger(testLogger{})

		err := store.Revoke(ctx, uuid.New(), auth.RevocationScope("everything"), "")
		assert.Error(t, err)
	})
}

func TestHashTokenSecret(t *testing.T) {
	a := auth.HashTokenSecret("some-token")
	b := auth.HashTokenSecret("some-token")
	c := auth.HashTokenSecret("other-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, "some-token")
}

func TestGenerateResetToken(t *testing.T) {
	a, err := auth.GenerateResetToken()
	require.NoError(t, err)
	b, err := auth.GenerateResetToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
