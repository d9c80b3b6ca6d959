package auth

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"
)

// MailerConfig holds SMTP settings for the gomail Notifier. CallbackURL
// is the frontend location tokens get appended to, mirroring the
// callbackUrl argument the original mutations accepted.
type MailerConfig struct {
	Host        string `env:"SMTP_HOST"`
	Port        int    `env:"SMTP_PORT" envDefault:"587"`
	Username    string `env:"SMTP_USERNAME"`
	Password    string `env:"SMTP_PASSWORD"`
	From        string `env:"SMTP_FROM"`
	CallbackURL string `env:"AUTH_CALLBACK_URL"`
}

// MailerConfigFromEnv parses the SMTP settings from the environment.
func MailerConfigFromEnv() (MailerConfig, error) {
	cfg, err := env.ParseAs[MailerConfig]()
	if err != nil {
		return MailerConfig{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse mailer environment")
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings required to dial the relay.
func (c MailerConfig) Validate() error {
	if c.Host == "" {
		return goerrors.New("missing SMTP_HOST", goerrors.CategoryBadInput)
	}
	if c.From == "" {
		return goerrors.New("missing SMTP_FROM", goerrors.CategoryBadInput)
	}
	return nil
}

// Mailer delivers account notifications over SMTP. It implements
// Notifier; handlers stay ignorant of transport and template choices.
type Mailer struct {
	cfg    MailerConfig
	dialer *gomail.Dialer
	logger Logger
}

var _ Notifier = (*Mailer)(nil)

// NewMailer creates a Mailer for the given settings.
func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the mailer.
func (m *Mailer) WithLogger(logger Logger) *Mailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Send renders and delivers the notification for the given kind. The
// payload is the token for verification and reset kinds, unused for
// password-changed notices.
func (m *Mailer) Send(ctx context.Context, user *User, kind NotificationKind, payload string) error {
	if user == nil || user.Email == "" {
		return goerrors.New("notification recipient is missing an email", goerrors.CategoryBadInput)
	}

	subject, body := m.render(user, kind, payload)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to deliver %s notification: %v", string(kind), err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver notification")
	}

	return nil
}

func (m *Mailer) render(user *User, kind NotificationKind, payload string) (subject, body string) {
	switch kind {
	case NotificationVerification:
		return "Verify your email address",
			fmt.Sprintf("Hi %s,\n\nConfirm your email address by visiting:\n\n%s?token=%s\n\nThe link expires shortly after it was sent.\n", user.Name, m.cfg.CallbackURL, payload)
	case NotificationPasswordReset:
		return "Reset your password",
			fmt.Sprintf("Hi %s,\n\nReset your password by visiting:\n\n%stoken=%s/user=%s\n\nIf you did not request this you can ignore this email.\n", user.Name, m.cfg.CallbackURL, payload, user.Email)
	case NotificationPasswordChanged:
		return "Your password was changed",
			fmt.Sprintf("Hi %s,\n\nYour password was just changed. If this was not you, contact support immediately.\n", user.Name)
	default:
		return string(kind), payload
	}
}
