package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload carried by issued tokens: subject id,
// email, and role, plus the registered timing claims.
type Claims struct {
	jwt.RegisteredClaims
	UserEmail string `json:"email,omitempty"`
	UserRole  string `json:"role,omitempty"`
}

// Verify interface compliance
var _ Identity = (*Claims)(nil)

// ID returns the subject id
func (c *Claims) ID() string {
	return c.RegisteredClaims.Subject
}

// Email returns the email embedded at issuance time
func (c *Claims) Email() string {
	return c.UserEmail
}

// Role returns the role embedded at issuance time. The role is never
// re-checked against the stored record; a demoted admin keeps admin
// tokens until they expire.
func (c *Claims) Role() string {
	return c.UserRole
}

// HasRole checks if the claims carry a specific role
func (c *Claims) HasRole(role string) bool {
	return c.UserRole == role
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
