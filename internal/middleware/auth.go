package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/atvtrailers/shop-api/internal/auth"
)

// identityKey is the request-local slot the verified claims live under
const identityKey = "identity"

// TokenValidator validates tokens and extracts claims without tying the
// middleware to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// Protected extracts the bearer credential from the Authorization header,
// validates it, and attaches the identity claims to the request. Missing
// and invalid tokens both fail with 401; the two cases get their own
// message but nothing more.
func Protected(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c)
		if !ok {
			return errors.New("not authorized, missing token", errors.CategoryAuth).
				WithTextCode("TOKEN_MISSING").
				WithCode(errors.CodeUnauthorized)
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			return errors.Wrap(err, errors.CategoryAuth, "not authorized, invalid token").
				WithTextCode("TOKEN_INVALID").
				WithCode(errors.CodeUnauthorized)
		}

		c.Locals(identityKey, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid bearer token is present
// and lets the request continue anonymously otherwise. Checkout uses this
// so guests and logged-in customers share one route.
func OptionalAuth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw, ok := bearerToken(c); ok {
			if claims, err := tokens.Validate(raw); err == nil {
				c.Locals(identityKey, claims)
			}
		}
		return c.Next()
	}
}

// RequireRoles rejects requests whose identity is absent or whose role is
// outside the allow-list. Pure check against the claims; no I/O.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok || claims.Role() == "" {
			return errors.New("access denied, insufficient permissions", errors.CategoryAuthz).
				WithCode(errors.CodeForbidden)
		}

		for _, role := range roles {
			if claims.HasRole(role) {
				return c.Next()
			}
		}

		return errors.New("access denied, requires one of: "+strings.Join(roles, ", "), errors.CategoryAuthz).
			WithCode(errors.CodeForbidden).
			WithMetadata(map[string]any{"role": claims.Role()})
	}
}

// ClaimsFrom retrieves the identity claims attached by Protected or
// OptionalAuth, if any.
func ClaimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(identityKey).(*auth.Claims)
	return claims, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer") {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}

	return strings.TrimSpace(parts[1]), true
}
