package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/model"
	"github.com/atvtrailers/shop-api/internal/repository"
)

// UsersController is the admin-only account management surface
type UsersController struct {
	users  *repository.Users
	logger auth.Logger
}

// List returns every account
func (u *UsersController) List(c *fiber.Ctx) error {
	users, err := u.users.List(c.Context())
	if err != nil {
		return err
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, userView(user))
	}
	return c.JSON(views)
}

// GetByID returns a single account
func (u *UsersController) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	user, err := u.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(userView(user))
}

// UpdateUserPayload carries the fields an admin may change
type UpdateUserPayload struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Avatar *string `json:"avatar"`
}

// Validate will validate the payload
func (p UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.Email),
		validation.Field(&p.Role, validation.In(model.RoleAdmin, model.RoleCustomer)),
	)
}

// Update applies a partial update to an account. Changing the role here
// does not touch tokens already issued with the old role.
func (u *UsersController) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	payload := new(UpdateUserPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	user, err := u.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	if payload.Name != nil {
		user.Name = *payload.Name
	}
	if payload.Email != nil && *payload.Email != user.Email {
		taken, err := u.users.EmailTaken(c.Context(), *payload.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return repository.ErrEmailTaken
		}
		user.Email = *payload.Email
	}
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	if payload.Avatar != nil {
		user.Avatar = payload.Avatar
	}

	user, err = u.users.Update(c.Context(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "user updated",
		"user":    userView(user),
	})
}

// Delete removes an account
func (u *UsersController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	if err := u.users.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "user deleted"})
}
