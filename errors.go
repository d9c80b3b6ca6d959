package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to the API adapter so clients can branch on a
// machine kind instead of parsing messages.
const (
	TextCodeTokenExpired         = "TOKEN_EXPIRED"
	TextCodeTokenMalformed       = "TOKEN_MALFORMED"
	TextCodeTokenInvalid         = "TOKEN_INVALID"
	TextCodeResetThrottled       = "RESET_THROTTLED"
	TextCodePasswordConfirmation = "PASSWORD_CONFIRMATION"
	TextCodeEmailTaken           = "EMAIL_TAKEN"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword is the uniform credential failure. Unknown
// email and wrong password must both produce this exact error so the
// response does not reveal which one it was.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials are incorrect", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation)

// ErrTooManyLoginAttempts is returned when an account is cooling down
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts, try again later", goerrors.CategoryRateLimit)

// ErrTokenMalformed covers undecodable verification tokens: bad base64,
// invalid JSON, failed AEAD open, or fields missing for the active mode.
var ErrTokenMalformed = goerrors.New("verification token is malformed", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenMalformed)

// ErrTokenExpired is returned when a decoded expiry is in the past.
var ErrTokenExpired = goerrors.New("token expired, try to register again later", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenInvalid covers reset tokens that are absent, expired, or do not
// match the stored hash. The three cases intentionally share one error.
var ErrTokenInvalid = goerrors.New("token is invalid", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenInvalid)

// ErrResetThrottled is returned when a reset was requested inside the
// throttle window for the same email.
var ErrResetThrottled = goerrors.New("password reset attempts have been throttled, try again later", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeResetThrottled)

// ErrPasswordConfirmation is returned when password and confirmation differ.
var ErrPasswordConfirmation = goerrors.New("passwords do not match", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordConfirmation)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrActionUnauthorized is the uniform authorization failure. The message
// never names the field or resource that failed the check.
var ErrActionUnauthorized = goerrors.New("action unauthorized", goerrors.CategoryAuth).
	WithCode(goerrors.CodeForbidden)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedTokenError will check for malformed tokens
func IsMalformedTokenError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

// IsThrottledError will check for throttled reset requests
func IsThrottledError(err error) bool {
	return hasTextCode(err, TextCodeResetThrottled)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
