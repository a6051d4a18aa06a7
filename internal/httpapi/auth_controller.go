package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/middleware"
	"github.com/atvtrailers/shop-api/internal/model"
	"github.com/atvtrailers/shop-api/internal/notify"
	"github.com/atvtrailers/shop-api/internal/repository"
)

// forgotPasswordResponse is returned whether or not the account exists,
// so the endpoint cannot be used to enumerate registered emails.
const forgotPasswordResponse = "If an account with this email exists, password reset instructions have been sent."

// AuthController handles registration, login, and account self-service
type AuthController struct {
	users  *repository.Users
	tokens *auth.TokenService
	resets notify.PasswordResetDispatcher
	logger auth.Logger
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

// Register creates an account and returns a fresh session token
func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &model.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
	}
	if id, err := hashid.NewUUID(payload.Email); err == nil {
		user.ID = id
	}

	user, err = a.users.Create(c.Context(), user)
	if err != nil {
		return err
	}

	token, err := a.tokens.Generate(identityOf(user))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "registration successful",
		"token":   token,
		"user":    userView(user),
	})
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// Login verifies the credentials and returns a fresh session token. An
// unknown email and a wrong password are indistinguishable to the caller.
func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	user, err := a.users.GetByEmail(c.Context(), payload.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			return invalidCredentials()
		}
		return err
	}

	if err := auth.ComparePasswordAndHash(payload.Password, user.PasswordHash); err != nil {
		return invalidCredentials()
	}

	token, err := a.tokens.Generate(identityOf(user))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "login successful",
		"token":   token,
		"user":    userView(user),
	})
}

// Me returns the authenticated user's profile
func (a *AuthController) Me(c *fiber.Ctx) error {
	user, err := a.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(userView(user))
}

// UpdateProfilePayload carries the mutable profile fields
type UpdateProfilePayload struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// Validate will validate the payload
func (p UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.Email),
	)
}

// UpdateProfile applies a partial update to the caller's own record and
// re-issues the token so claims reflect a changed email.
func (a *AuthController) UpdateProfile(c *fiber.Ctx) error {
	user, err := a.currentUser(c)
	if err != nil {
		return err
	}

	payload := new(UpdateProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	if payload.Name != nil {
		user.Name = *payload.Name
	}
	if payload.Email != nil && *payload.Email != user.Email {
		taken, err := a.users.EmailTaken(c.Context(), *payload.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return repository.ErrEmailTaken
		}
		user.Email = *payload.Email
	}
	if payload.Avatar != nil {
		user.Avatar = payload.Avatar
	}

	user, err = a.users.Update(c.Context(), user)
	if err != nil {
		return err
	}

	token, err := a.tokens.Generate(identityOf(user))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "profile updated",
		"user":    userView(user),
		"token":   token,
	})
}

// ChangePasswordPayload carries the old and new passwords
type ChangePasswordPayload struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Validate will validate the payload
func (p ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.OldPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(6, 100)),
	)
}

// ChangePassword swaps the stored hash after verifying the old password.
// A wrong old password leaves the stored hash untouched.
func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	user, err := a.currentUser(c)
	if err != nil {
		return err
	}

	payload := new(ChangePasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	if err := auth.ComparePasswordAndHash(payload.OldPassword, user.PasswordHash); err != nil {
		return errors.New("old password is incorrect", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	user.PasswordHash = hash

	user, err = a.users.Update(c.Context(), user)
	if err != nil {
		return err
	}

	token, err := a.tokens.Generate(identityOf(user))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password changed",
		"user":    userView(user),
		"token":   token,
	})
}

// ForgotPasswordPayload carries the account email
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (p ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// ForgotPassword hands known accounts to the reset dispatcher and answers
// with the same body either way.
func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	user, err := a.users.GetByEmail(c.Context(), payload.Email)
	if err != nil {
		if !errors.IsNotFound(err) {
			return err
		}
	} else if dispatchErr := a.resets.DispatchPasswordReset(c.Context(), user.Email); dispatchErr != nil {
		a.logger.Error("password reset dispatch failed: %v", dispatchErr)
	}

	return c.JSON(fiber.Map{"message": forgotPasswordResponse})
}

func (a *AuthController) currentUser(c *fiber.Ctx) (*model.User, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, errors.New("not authorized", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	id, err := parseID(claims.ID())
	if err != nil {
		return nil, err
	}

	return a.users.GetByID(c.Context(), id)
}

func invalidCredentials() error {
	return errors.New("invalid credentials", errors.CategoryValidation).
		WithTextCode("INVALID_CREDENTIALS").
		WithCode(errors.CodeBadRequest)
}
