package auth

import "time"

// SimpleConfig is a plain struct implementation of Config. Zero values
// fall back to the documented defaults.
type SimpleConfig struct {
	// EncryptionKey is the process-wide secret behind verification
	// tokens. Any length works; the codec derives a 32 byte AES key.
	EncryptionKey string
	// VerifyTokenMode controls what the verification payload embeds.
	// Nil selects DefaultVerifyTokenMode; the legacy email-only shape
	// has to be requested explicitly with a zero &VerifyTokenMode{}.
	VerifyTokenMode *VerifyTokenMode
	// VerifyTokenTTL bounds verification token life. Only meaningful
	// when the mode embeds an expiry.
	VerifyTokenTTL time.Duration
	// ResetTokenTTL bounds password reset records.
	ResetTokenTTL time.Duration
	// ResetThrottleWindow is the minimum period between accepted reset
	// requests for the same email.
	ResetThrottleWindow time.Duration
	// BcryptCost tunes password hashing. Zero uses DefaultBcryptCost.
	BcryptCost int
	// RevocationScope picks the logout behavior. Defaults to
	// RevokeCurrent, matching the forum's single-token logout.
	RevocationScope RevocationScope
	// RevokeOnPasswordReset destroys outstanding sessions when a reset
	// is accepted, before the fresh session is minted.
	RevokeOnPasswordReset bool
}

const (
	// DefaultVerifyTokenTTL is the recommended verification token life
	DefaultVerifyTokenTTL = 10 * time.Minute
	// DefaultResetTokenTTL is the recommended reset record life
	DefaultResetTokenTTL = 60 * time.Minute
	// DefaultResetThrottleWindow is the recommended reset throttle
	DefaultResetThrottleWindow = 60 * time.Second
)

func (c SimpleConfig) GetEncryptionKey() string { return c.EncryptionKey }

func (c SimpleConfig) GetVerifyTokenMode() VerifyTokenMode {
	if c.VerifyTokenMode == nil {
		return DefaultVerifyTokenMode
	}
	return *c.VerifyTokenMode
}

func (c SimpleConfig) GetVerifyTokenTTL() time.Duration {
	if c.VerifyTokenTTL <= 0 {
		return DefaultVerifyTokenTTL
	}
	return c.VerifyTokenTTL
}

func (c SimpleConfig) GetResetTokenTTL() time.Duration {
	if c.ResetTokenTTL <= 0 {
		return DefaultResetTokenTTL
	}
	return c.ResetTokenTTL
}

func (c SimpleConfig) GetResetThrottleWindow() time.Duration {
	if c.ResetThrottleWindow <= 0 {
		return DefaultResetThrottleWindow
	}
	return c.ResetThrottleWindow
}

func (c SimpleConfig) GetBcryptCost() int {
	if c.BcryptCost <= 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}

func (c SimpleConfig) GetRevocationScope() RevocationScope {
	if c.RevocationScope == "" {
		return RevokeCurrent
	}
	return c.RevocationScope
}

func (c SimpleConfig) GetRevokeOnPasswordReset() bool { return c.RevokeOnPasswordReset }
