package repository

import (
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrEmailTaken is returned when a user create or update collides with an
// existing email, whether caught by the pre-check or by the unique index.
var ErrEmailTaken = errors.New("a user with this email already exists", errors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN").
	WithCode(errors.CodeConflict)

// ErrSlugTaken is the catalog counterpart for colliding derived slugs
var ErrSlugTaken = errors.New("an item with this name already exists", errors.CategoryConflict).
	WithTextCode("SLUG_TAKEN").
	WithCode(errors.CodeConflict)

func notFound(resource string) *errors.Error {
	return errors.New(resource+" not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation matches the unique-index rejections both sqlite
// drivers behind sqliteshim produce. This is the race-tolerant fallback
// when a concurrent writer wins between our pre-check and the insert.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
