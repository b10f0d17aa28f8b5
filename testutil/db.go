// Package testutil provides shared helpers for store integration tests.
// Postgres helpers skip when TEST_DATABASE_URL is not set, so unit tests run
// without a database server; SQLite helpers always run in memory.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3" driver for database/sql
)

// NewPool opens a *pgxpool.Pool on TEST_DATABASE_URL, skipping the test when
// it is unset. The pool is closed when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewEmptyRegistryTx begins a transaction on TEST_DATABASE_URL in which the
// train tables are empty and no save has ever been recorded. It is rolled
// back when the test finishes, so tests never see each other's rows.
func NewEmptyRegistryTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	tx, err := NewPool(t).Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewEmptyRegistryTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	// train_stops rows go with their trains via ON DELETE CASCADE.
	for _, stmt := range []string{`DELETE FROM registry_saves`, `DELETE FROM trains`} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			t.Fatalf("testutil.NewEmptyRegistryTx: %s: %v", stmt, err)
		}
	}
	return tx
}

// NewSQLDB opens a *sql.DB on TEST_DATABASE_URL through the pgx
// database/sql driver, which goose requires.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := openPgxSQL(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewSQLiteDB opens a private in-memory SQLite database. It never skips.
// The pool is pinned to one connection because every new connection to
// ":memory:" would see a fresh, empty database.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("testutil.NewSQLiteDB: open: %v", err)
	}
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB is NewSQLDB for TestMain, where no *testing.T is available.
// It panics on failure; callers close the returned *sql.DB.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := openPgxSQL(dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: " + err.Error())
	}
	return db
}

func openPgxSQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
