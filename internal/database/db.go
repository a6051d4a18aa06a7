package database

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/atvtrailers/shop-api/internal/model"
)

// Connect opens the SQLite database behind a bun handle. The pool is
// safe for concurrent use; callers own the Close.
func Connect(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate creates the tables if needed. Unique indexes on users.email,
// (kind, slug), and orders.order_id are the backstop for the
// application-level check-then-write uniqueness sequence.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*model.User)(nil),
		(*model.CatalogItem)(nil),
		(*model.Order)(nil),
	}

	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
