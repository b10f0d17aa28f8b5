package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/trainline/internal/repo"
	"github.com/pkordes/trainline/testutil"
)

// TestMain runs before any test in the repo_test package.
// It applies all pending Postgres migrations to the test database so
// individual tests never need to think about schema state. SQLite and file
// store tests do not need it and run regardless.
func TestMain(m *testing.M) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		// No test DB configured; Postgres tests skip themselves.
		os.Exit(m.Run())
	}

	// goose needs database/sql, not a pgx pool. There is no *testing.T here
	// to hand to testutil.NewSQLDB.
	db := testutil.MustOpenSQLDB(os.Getenv("TEST_DATABASE_URL"))

	if err := repo.Migrate(context.Background(), db, repo.DialectPostgres); err != nil {
		db.Close()
		log.Fatalf("TestMain: %v", err)
	}
	db.Close()

	os.Exit(m.Run())
}
