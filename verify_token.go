package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// VerifyTokenMode controls what an email verification token embeds.
// Earlier revisions of the forum shipped email-only tokens; the current
// default carries the account id and an expiry.
//
// The email-only mode has no lifetime bound at all: a captured token
// verifies forever. It exists for compatibility, must be requested
// explicitly on the config, and should not be used for new deployments.
type VerifyTokenMode struct {
	EmbedExpiry    bool
	EmbedAccountID bool
}

// DefaultVerifyTokenMode embeds both the account id and the expiry.
var DefaultVerifyTokenMode = VerifyTokenMode{EmbedExpiry: true, EmbedAccountID: true}

// verifyPayload mirrors the notification payload shape on the wire:
// base64url(json). Hash and Expiration are AES-GCM ciphertexts of the
// email and the RFC 3339 expiry, each independently sealed. RFC 3339
// carries second precision, so the effective lifetime is truncated by
// up to one second.
type verifyPayload struct {
	ID         string `json:"id,omitempty"`
	Hash       string `json:"hash"`
	Expiration string `json:"expiration,omitempty"`
}

// VerifyTokenCodec encodes and decodes stateless email verification
// tokens. No server-side record backs these tokens: authenticity and
// confidentiality rest on AES-256-GCM under a process-wide secret, and
// freshness on the embedded expiry alone. Nothing marks a token as used,
// which keeps verification idempotent.
type VerifyTokenCodec struct {
	key   [32]byte
	mode  VerifyTokenMode
	ttl   time.Duration
	clock Clock
}

// NewVerifyTokenCodec derives the AES key from the configured secret.
func NewVerifyTokenCodec(cfg Config) *VerifyTokenCodec {
	return &VerifyTokenCodec{
		key:   sha256.Sum256([]byte(cfg.GetEncryptionKey())),
		mode:  cfg.GetVerifyTokenMode(),
		ttl:   cfg.GetVerifyTokenTTL(),
		clock: systemClock{},
	}
}

// WithClock overrides the clock used for expiry checks.
func (c *VerifyTokenCodec) WithClock(clock Clock) *VerifyTokenCodec {
	if clock != nil {
		c.clock = clock
	}
	return c
}

// VerifyTokenClaims is the decoded content of a verification token.
type VerifyTokenClaims struct {
	Email     string
	AccountID uuid.UUID
	ExpiresAt *time.Time
}

// Encode produces an opaque verification token for the given account.
func (c *VerifyTokenCodec) Encode(accountID uuid.UUID, email string) (string, error) {
	if email == "" {
		return "", goerrors.New("email is required to encode a verification token", goerrors.CategoryBadInput)
	}

	hash, err := c.seal([]byte(email))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encrypt verification email")
	}

	payload := verifyPayload{Hash: hash}

	if c.mode.EmbedAccountID {
		payload.ID = accountID.String()
	}

	if c.mode.EmbedExpiry {
		expiry := c.clock.Now().Add(c.ttl).Format(time.RFC3339)
		sealed, err := c.seal([]byte(expiry))
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encrypt verification expiry")
		}
		payload.Expiration = sealed
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to serialize verification payload")
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode validates the token structure and returns its claims. Structural
// problems of any kind, bad base64, bad JSON, an AEAD open failure, or a
// field the active mode requires being absent, surface as ErrTokenMalformed;
// a decoded expiry in the past surfaces as ErrTokenExpired.
func (c *VerifyTokenCodec) Decode(token string) (*VerifyTokenClaims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	payload := verifyPayload{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrTokenMalformed
	}

	if payload.Hash == "" {
		return nil, ErrTokenMalformed
	}

	email, err := c.open(payload.Hash)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	claims := &VerifyTokenClaims{Email: string(email)}

	if c.mode.EmbedAccountID {
		id, err := uuid.Parse(payload.ID)
		if err != nil {
			return nil, ErrTokenMalformed
		}
		claims.AccountID = id
	}

	if c.mode.EmbedExpiry {
		if payload.Expiration == "" {
			return nil, ErrTokenMalformed
		}
		plain, err := c.open(payload.Expiration)
		if err != nil {
			return nil, ErrTokenMalformed
		}
		expiry, err := time.Parse(time.RFC3339, string(plain))
		if err != nil {
			return nil, ErrTokenMalformed
		}
		claims.ExpiresAt = &expiry

		if c.clock.Now().After(expiry) {
			return nil, ErrTokenExpired
		}
	}

	return claims, nil
}

// seal encrypts with AES-256-GCM, prefixing the random nonce, and
// base64url encodes the result.
func (c *VerifyTokenCodec) seal(plaintext []byte) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	out := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (c *VerifyTokenCodec) open(encoded string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	aead, err := c.aead()
	if err != nil {
		return nil, err
	}

	if len(raw) < aead.NonceSize() {
		return nil, ErrTokenMalformed
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}

func (c *VerifyTokenCodec) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
