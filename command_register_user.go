package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterUserMessage carries the registration payload. Confirmation is
// checked before anything touches the store: a mismatch persists nothing
// and notifies nobody.
type RegisterUserMessage struct {
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Role                 string `json:"role"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	// UseHashid derives the account id deterministically from the email
	UseHashid  bool
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(
			&e.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&e.Password,
			validation.Required,
			validation.Length(6, 128),
		),
		validation.Field(
			&e.Phone,
			validation.By(validPhoneNumber),
		),
	)
}

// RegisterUserResponse acknowledges the account creation. Success here
// is distinct from verification: the account exists but stays unverified
// until the emailed token comes back through VerifyEmailHandler.
type RegisterUserResponse struct {
	User    *User
	Message string
}

type RegisterUserHandler struct {
	repo     RepositoryManager
	codec    *VerifyTokenCodec
	notifier Notifier
	activity ActivitySink
	logger   Logger
	cost     int
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager, codec *VerifyTokenCodec, cfg Config) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		codec:    codec,
		notifier: noopNotifier{},
		activity: noopActivitySink{},
		logger:   defLogger{},
		cost:     cfg.GetBcryptCost(),
	}
}

// WithNotifier sets the transport that receives the verification token.
func (h *RegisterUserHandler) WithNotifier(n Notifier) *RegisterUserHandler {
	h.notifier = normalizeNotifier(n)
	return h
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	if event.Password != event.PasswordConfirmation {
		return ErrPasswordConfirmation
	}

	user := &User{}
	var token string

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.Email); err == nil {
			return ErrEmailTaken
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}

		hash, err := HashPasswordCost(event.Password, h.cost)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Phone = event.Phone
		user.Name = event.Name
		user.Username = event.Username
		user.Role = event.Role
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		// the token must mint before we commit: a registration that
		// cannot produce its verification payload is not a success
		if token, err = h.codec.Encode(user.ID, user.Email); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	// delivery is fire and forget: a relay hiccup does not undo the account
	if err := h.notifier.Send(ctx, user, NotificationVerification, token); err != nil {
		h.logger.Warn("failed to send verification notification to %s: %v", user.Email, err)
	}

	h.recordActivity(ctx, user)

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:    user,
			Message: "Account created successfully. An email just sent.",
		})
	}

	return nil
}

func (h *RegisterUserHandler) recordActivity(ctx context.Context, user *User) {
	event := ActivityEvent{
		EventType: ActivityEventUserRegistered,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID:     user.ID.String(),
		OccurredAt: time.Now(),
	}

	if err := h.activity.Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during registration: %v", err)
	}
}
