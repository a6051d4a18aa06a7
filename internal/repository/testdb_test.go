package repository_test

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/atvtrailers/shop-api/internal/database"
)

// testDB opens a private in-memory database and creates the schema.
// A single connection keeps the in-memory store alive for the test.
func testDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}
