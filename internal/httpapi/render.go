package httpapi

import (
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/model"
)

// UserView is the public representation of a user: opaque id, no hash
type UserView struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	Avatar *string `json:"avatar"`
}

func userView(u *model.User) UserView {
	return UserView{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}

// identity adapts a stored user to the token service's Identity
type identity struct {
	user *model.User
}

func (i identity) ID() string    { return i.user.ID.String() }
func (i identity) Email() string { return i.user.Email }
func (i identity) Role() string  { return i.user.Role }

func identityOf(u *model.User) auth.Identity {
	return identity{user: u}
}

// parseID rejects malformed client-supplied ids before they reach
// storage; a bad format is a validation failure, not a miss.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid id format", errors.CategoryValidation).
			WithTextCode("BAD_ID").
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}

func parseError(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, "failed to parse request body").
		WithCode(errors.CodeBadRequest)
}

func validationError(err error) error {
	return errors.New(err.Error(), errors.CategoryValidation).
		WithTextCode("VALIDATION").
		WithCode(errors.CodeBadRequest)
}

// requiredNumber is an ozzo rule for numeric pointers where zero is a
// legitimate value and only absence is an error.
func requiredNumber(value any) error {
	n, ok := value.(*float64)
	if !ok || n == nil {
		return fmt.Errorf("is required")
	}
	return nil
}
