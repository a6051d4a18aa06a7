package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is the user's role
type Role = string

const (
	// RoleAdmin can manage users, catalog items, and orders
	RoleAdmin Role = "admin"
	// RoleCustomer is the default role assigned at registration
	RoleCustomer Role = "customer"
)

// ValidRole checks if the role is one of the predefined valid roles
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleCustomer:
		return true
	default:
		return false
	}
}

// User is the account model. The password is stored only as a bcrypt
// hash and is never serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         Role      `bun:"user_role,notnull" json:"role"`
	Avatar       *string   `bun:"avatar" json:"avatar"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}
