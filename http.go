package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// IdentityContextKey is where the middleware leaves the resolved user in
// fiber Locals.
var IdentityContextKey = "auth_identity"

// AuthScheme is the expected Authorization scheme.
var AuthScheme = "Bearer"

// BearerFromHeader extracts the opaque token from an Authorization
// header value. Empty string means no usable token was presented.
func BearerFromHeader(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, AuthScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// NewOptionalAuth resolves the bearer token when one is presented and
// stores the identity in Locals and in the request context. Absent or
// invalid tokens leave the request anonymous; read paths never fail on
// authentication.
func NewOptionalAuth(auther Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}

		identity, err := auther.IdentityFromToken(c.UserContext(), token)
		if err != nil {
			// anonymous, not an error
			return c.Next()
		}

		c.Locals(IdentityContextKey, identity)
		c.SetUserContext(WithBearerToken(c.UserContext(), token))
		return c.Next()
	}
}

// NewRequireAuth is NewOptionalAuth for mutation paths: requests without
// a valid session are rejected with a uniform unauthorized envelope.
func NewRequireAuth(auther Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return unauthorized(c)
		}

		identity, err := auther.IdentityFromToken(c.UserContext(), token)
		if err != nil {
			if goerrors.Is(err, ErrIdentityNotFound) {
				return unauthorized(c)
			}
			return fiber.ErrInternalServerError
		}

		c.Locals(IdentityContextKey, identity)
		c.SetUserContext(WithBearerToken(c.UserContext(), token))
		return c.Next()
	}
}

// IdentityFromLocals returns the identity a middleware resolved, if any.
func IdentityFromLocals(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(IdentityContextKey).(Identity)
	return identity, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   ErrActionUnauthorized.Message,
			"text_code": "UNAUTHORIZED",
		},
	})
}
