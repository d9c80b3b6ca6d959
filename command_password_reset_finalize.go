package auth

import (
	"context"
	"crypto/hmac"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// FinalizePasswordResetMessage consumes a reset token. Email and token
// travel together, matching the original reset link shape.
type FinalizePasswordResetMessage struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	Password   string `json:"password"`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

// FinalizePasswordResetResponse reports the accepted reset. SessionToken
// is a freshly minted bearer session for the account: a successful reset
// logs the user in the same way a successful login does.
type FinalizePasswordResetResponse struct {
	User         *User
	SessionToken string
}

type FinalizePasswordResetHandler struct {
	repo     RepositoryManager
	tokens   TokenIssuer
	notifier Notifier
	activity ActivitySink
	logger   Logger
	ttl      time.Duration
	cost     int
	revoke   bool
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(repo RepositoryManager, tokens TokenIssuer, cfg Config) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:     repo,
		tokens:   tokens,
		notifier: noopNotifier{},
		activity: noopActivitySink{},
		logger:   defLogger{},
		ttl:      cfg.GetResetTokenTTL(),
		cost:     cfg.GetBcryptCost(),
		revoke:   cfg.GetRevokeOnPasswordReset(),
	}
}

// WithNotifier sets the transport for the password-changed notice.
func (h *FinalizePasswordResetHandler) WithNotifier(n Notifier) *FinalizePasswordResetHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err = h.repo.Users().GetByIdentifierTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user for password reset")
		}

		reset, err := h.repo.PasswordResets().GetByEmailTx(ctx, tx, user.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrTokenInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset request")
		}

		if reset.CreatedAt == nil {
			return goerrors.New("password reset record is missing creation date", goerrors.CategoryInternal)
		}

		// expiry and hash mismatch share one failure; the record stays
		// untouched either way so a later valid attempt still works
		if IsOutsideThresholdPeriod(*reset.CreatedAt, h.ttl) {
			return ErrTokenInvalid
		}

		if !hmac.Equal([]byte(HashTokenSecret(event.Token)), []byte(reset.TokenHash)) {
			return ErrTokenInvalid
		}

		passwordHash, err := HashPasswordCost(event.Password, h.cost)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if err := h.repo.PasswordResets().DeleteByIDTx(ctx, tx, reset.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume password reset record")
		}

		if err := h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, passwordHash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password in database")
		}

		if h.revoke {
			if err := h.repo.AuthTokens().DeleteAllForUserTx(ctx, tx, user.ID); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke outstanding sessions")
			}
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	// an accepted reset logs the account in, same as a fresh login
	session, err := h.tokens.Issue(ctx, user.ID, SessionName)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint session after password reset")
	}

	if err := h.notifier.Send(ctx, user, NotificationPasswordChanged, ""); err != nil {
		h.logger.Warn("failed to send password-changed notice to %s: %v", user.Email, err)
	}

	h.recordActivity(ctx, user)

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{
			User:         user,
			SessionToken: session,
		})
	}

	return nil
}

func (h *FinalizePasswordResetHandler) recordActivity(ctx context.Context, user *User) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID:     user.ID.String(),
		OccurredAt: time.Now(),
	}

	if err := h.activity.Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password reset: %v", err)
	}
}
