package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/atvtrailers/shop-api/internal/model"
)

// Users is the persistence-backed store for user accounts
type Users struct {
	db *bun.DB
}

// NewUsers creates a new Users repository
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

// List returns every user
func (r *Users) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.NewSelect().Model(&users).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	return users, nil
}

// GetByID returns the user with the given id
func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user := &model.User{}
	err := r.db.NewSelect().Model(user).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("user")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

// GetByEmail returns the user registered with the given email
func (r *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.NewSelect().Model(user).Where("?TableAlias.email = ?", email).Limit(1).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("user")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

// EmailTaken reports whether another user already holds the email.
// Exclude is the id of the record being updated, uuid.Nil on create.
func (r *Users) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	q := r.db.NewSelect().Model((*model.User)(nil)).Where("?TableAlias.email = ?", email)
	if exclude != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", exclude)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check email uniqueness")
	}
	return exists, nil
}

// Create inserts a new user. Email uniqueness is pre-checked; the unique
// index catches the remaining race window.
func (r *Users) Create(ctx context.Context, user *model.User) (*model.User, error) {
	taken, err := r.EmailTaken(ctx, user.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}

	return user, nil
}

// Update persists the mutated user record
func (r *Users) Update(ctx context.Context, user *model.User) (*model.User, error) {
	user.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound("user")
	}

	return user, nil
}

// Delete removes the user with the given id
func (r *Users) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*model.User)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("user")
	}

	return nil
}
