package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// InitializePasswordResetMessage starts the forgot-password flow.
// OnToken, when set, receives the plaintext token instead of the
// handler's Notifier; either way the token leaves the core exactly once.
type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnToken    func(user *User, token string)
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// Validate will run validation rules
func (p InitializePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(
			&p.Email,
			validation.Required,
			is.Email,
		),
	)
}

type InitializePasswordResetResponse struct {
	Reset   *PasswordReset
	Success bool
}

// InitializePasswordResetHandler mints reset tokens into the ledger.
//
// A miss on the email lookup returns ErrIdentityNotFound, so this flow
// does reveal whether an address is registered. That mirrors the
// original INVALID_USER behavior and is a recorded decision; flip to a
// uniform response at the API adapter if enumeration becomes a concern.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	activity ActivitySink
	logger   Logger
	throttle time.Duration
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager, cfg Config) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		notifier: noopNotifier{},
		activity: noopActivitySink{},
		logger:   defLogger{},
		throttle: cfg.GetResetThrottleWindow(),
	}
}

// WithNotifier sets the transport that receives the reset token.
func (h *InitializePasswordResetHandler) WithNotifier(n Notifier) *InitializePasswordResetHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

// WithActivitySink sets the sink used to emit reset events.
func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}

	user := &User{}
	resp := &InitializePasswordResetResponse{}
	var token string

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err = h.repo.Users().GetByIdentifierTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		// ledger lookups are by the exact email as stored
		prior, err := h.repo.PasswordResets().GetByEmailTx(ctx, tx, user.Email)
		if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check prior reset request")
		}

		if prior != nil && prior.CreatedAt != nil && IsWithinThresholdPeriod(*prior.CreatedAt, h.throttle) {
			return ErrResetThrottled
		}

		if token, err = GenerateResetToken(); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint reset token")
		}

		reset := &PasswordReset{
			UserID:    &user.ID,
			Email:     user.Email,
			TokenHash: HashTokenSecret(token),
		}

		created, err := h.repo.PasswordResets().ReplaceTx(ctx, tx, reset)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset record")
		}

		resp.Reset = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if event.OnToken != nil {
		event.OnToken(user, token)
	} else if err := h.notifier.Send(ctx, user, NotificationPasswordReset, token); err != nil {
		h.logger.Warn("failed to send reset notification to %s: %v", user.Email, err)
	}

	h.recordActivity(ctx, user)

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, user *User) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetRequest,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID:     user.ID.String(),
		OccurredAt: time.Now(),
	}

	if err := h.activity.Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during reset request: %v", err)
	}
}
