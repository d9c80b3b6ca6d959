package auth_test

import (
	"context"
	"database/sql"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/oexchanger/auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenIssuer implements auth.TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(ctx context.Context, userID uuid.UUID, name string) (string, error) {
	args := m.Called(ctx, userID, name)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	if id, ok := args.Get(0).(uuid.UUID); ok {
		return id, args.Error(1)
	}
	return uuid.Nil, args.Error(1)
}

func (m *MockTokenIssuer) Revoke(ctx context.Context, userID uuid.UUID, scope auth.RevocationScope, presented string) error {
	args := m.Called(ctx, userID, scope, presented)
	return args.Error(0)
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, user *auth.User, kind auth.NotificationKind, payload string) error {
	args := m.Called(ctx, user, kind, payload)
	return args.Error(0)
}

// MockActivitySink implements auth.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockUsers mocks the subset of auth.Users the handlers exercise; the
// embedded interface covers the rest.
type MockUsers struct {
	mock.Mock
	auth.Users
}

func (m *MockUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, identifier)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, record)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, when time.Time) error {
	args := m.Called(ctx, tx, id, when)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

// MockPasswordResets mocks the ledger operations
type MockPasswordResets struct {
	mock.Mock
	auth.PasswordResets
}

func (m *MockPasswordResets) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.PasswordReset, error) {
	args := m.Called(ctx, tx, email)
	if record, ok := args.Get(0).(*auth.PasswordReset); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) ReplaceTx(ctx context.Context, tx bun.IDB, record *auth.PasswordReset) (*auth.PasswordReset, error) {
	args := m.Called(ctx, tx, record)
	if created, ok := args.Get(0).(*auth.PasswordReset); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockAuthTokens mocks the session rows
type MockAuthTokens struct {
	mock.Mock
	auth.AuthTokens
}

func (m *MockAuthTokens) Create(ctx context.Context, record *auth.AuthToken, criteria ...repository.InsertCriteria) (*auth.AuthToken, error) {
	args := m.Called(ctx, record)
	if created, ok := args.Get(0).(*auth.AuthToken); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthTokens) GetByHash(ctx context.Context, hash string) (*auth.AuthToken, error) {
	args := m.Called(ctx, hash)
	if record, ok := args.Get(0).(*auth.AuthToken); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthTokens) Touch(ctx context.Context, id uuid.UUID, when time.Time) error {
	args := m.Called(ctx, id, when)
	return args.Error(0)
}

func (m *MockAuthTokens) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAuthTokens) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthTokens) DeleteAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

// MockRepositoryManager wires the mocked repositories together. RunInTx
// runs the callback against a zero bun.Tx and reports its error, counting
// invocations so tests can assert nothing touched the store.
type MockRepositoryManager struct {
	UsersRepo  *MockUsers
	ResetsRepo *MockPasswordResets
	TokensRepo *MockAuthTokens
	TxCalls    int
}

func newMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{
		UsersRepo:  &MockUsers{},
		ResetsRepo: &MockPasswordResets{},
		TokensRepo: &MockAuthTokens{},
	}
}

func (m *MockRepositoryManager) Validate() error {
	return nil
}

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	m.TxCalls++
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Users() auth.Users {
	return m.UsersRepo
}

func (m *MockRepositoryManager) PasswordResets() auth.PasswordResets {
	return m.ResetsRepo
}

func (m *MockRepositoryManager) AuthTokens() auth.AuthTokens {
	return m.TokensRepo
}
