package auth

import "context"

// NotificationKind tells the transport which template to render.
type NotificationKind string

const (
	// NotificationVerification carries an email verification token
	NotificationVerification NotificationKind = "verification"
	// NotificationPasswordReset carries a password reset token
	NotificationPasswordReset NotificationKind = "password_reset"
	// NotificationPasswordChanged informs the account its password changed
	NotificationPasswordChanged NotificationKind = "password_changed"
)

// Notifier is the boundary to the outbound email transport. Sends are
// fire-and-forget from the core's perspective: the handlers guarantee
// the token is minted and durable before Send is called, but a delivery
// failure does not roll the operation back.
type Notifier interface {
	Send(ctx context.Context, user *User, kind NotificationKind, payload string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, user *User, kind NotificationKind, payload string) error

// Send implements Notifier.
func (f NotifierFunc) Send(ctx context.Context, user *User, kind NotificationKind, payload string) error {
	if f == nil {
		return nil
	}
	return f(ctx, user, kind, payload)
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, *User, NotificationKind, string) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
