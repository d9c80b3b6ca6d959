package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	PasswordResets() PasswordResets
	AuthTokens() AuthTokens
}

// PasswordResets is the reset ledger. One row per email: Replace swaps
// any prior unconsumed record for a new one, Delete consumes it.
type PasswordResets interface {
	repository.Repository[*PasswordReset]

	GetByEmail(ctx context.Context, email string) (*PasswordReset, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PasswordReset, error)
	ReplaceTx(ctx context.Context, tx bun.IDB, record *PasswordReset) (*PasswordReset, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	DeleteAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

// AuthTokens persists bearer sessions. Lookups are always by token hash;
// the plaintext handle never reaches this layer.
type AuthTokens interface {
	repository.Repository[*AuthToken]

	GetByHash(ctx context.Context, hash string) (*AuthToken, error)
	Touch(ctx context.Context, id uuid.UUID, when time.Time) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return &passwordResets{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

type passwordResets struct {
	repository.Repository[*PasswordReset]
	db *bun.DB
}

func (r *passwordResets) GetByEmail(ctx context.Context, email string) (*PasswordReset, error) {
	return r.GetByEmailTx(ctx, r.db, email)
}

func (r *passwordResets) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PasswordReset, error) {
	record := &PasswordReset{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

func (r *passwordResets) ReplaceTx(ctx context.Context, tx bun.IDB, record *PasswordReset) (*PasswordReset, error) {
	if _, err := tx.NewDelete().
		Model((*PasswordReset)(nil)).
		Where("email = ?", record.Email).
		Exec(ctx); err != nil {
		return nil, err
	}

	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *passwordResets) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*PasswordReset)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *passwordResets) DeleteAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*PasswordReset)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func NewAuthTokensRepository(db *bun.DB) AuthTokens {
	handlers := repository.ModelHandlers[*AuthToken]{
		NewRecord: func() *AuthToken {
			return &AuthToken{}
		},
		GetID: func(record *AuthToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *AuthToken, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "token_hash"
		},
	}
	return &authTokens{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

type authTokens struct {
	repository.Repository[*AuthToken]
	db *bun.DB
}

func (r *authTokens) GetByHash(ctx context.Context, hash string) (*AuthToken, error) {
	record := &AuthToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token_hash = ?", hash).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *authTokens) Touch(ctx context.Context, id uuid.UUID, when time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*AuthToken)(nil)).
		Set("last_used_at = ?", when).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *authTokens) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.DeleteByIDTx(ctx, r.db, id)
}

func (r *authTokens) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*AuthToken)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *authTokens) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.DeleteAllForUserTx(ctx, r.db, userID)
}

func (r *authTokens) DeleteAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*AuthToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

type mngr struct {
	db             *bun.DB
	users          Users
	passwordResets PasswordResets
	authTokens     AuthTokens
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		users:          NewUsersRepository(db),
		passwordResets: NewPasswordResetsRepository(db),
		authTokens:     NewAuthTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}

	if m.authTokens == nil {
		return errors.New("repository authTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) PasswordResets() PasswordResets {
	return m.passwordResets
}

func (m mngr) AuthTokens() AuthTokens {
	return m.authTokens
}
