package repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"github.com/pkordes/trainline/internal/domain"
)

// SQLiteStore is the SQLite implementation of TrainStore, sharing the schema
// shape of the Postgres store.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ TrainStore = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations. ":memory:" is accepted; the pool is pinned to a single
// connection so every query sees the same in-memory database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	if err := Migrate(ctx, db, DialectSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	return db, nil
}

// NewSQLiteStore constructs a store over an already migrated database.
func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: componentLogger(logger, "sqlite_store")}
}

// Load returns every stored train ordered by position.
func (s *SQLiteStore) Load(ctx context.Context) ([]domain.Train, error) {
	var saved int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registry_saves WHERE id = 1`).Scan(&saved)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Load: %w", err)
	}
	if saved == 0 {
		return nil, neverSaved("repo.SQLiteStore.Load")
	}

	const q = `
		SELECT t.id, t.code, s.name
		FROM trains t
		JOIN train_stops s ON s.train_id = t.id
		ORDER BY t.position, s.seq`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Load: %w", err)
	}
	defer rows.Close()

	var out []stopRow
	for rows.Next() {
		var r stopRow
		if err := rows.Scan(&r.trainID, &r.code, &r.name); err != nil {
			return nil, fmt.Errorf("repo.SQLiteStore.Load: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Load: rows: %w", err)
	}

	return assembleTrains(out, s.logger), nil
}

// Save replaces the stored collection inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, trains []domain.Train) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repo.SQLiteStore.Save: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range []string{`DELETE FROM train_stops`, `DELETE FROM trains`} {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("repo.SQLiteStore.Save: clear: %w", err)
		}
	}

	insTrain, err := tx.PrepareContext(ctx,
		`INSERT INTO trains (id, code, code_key, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("repo.SQLiteStore.Save: prepare: %w", err)
	}
	defer insTrain.Close()

	insStop, err := tx.PrepareContext(ctx,
		`INSERT INTO train_stops (train_id, seq, name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("repo.SQLiteStore.Save: prepare: %w", err)
	}
	defer insStop.Close()

	for i, t := range trains {
		rowID := uuid.NewString()
		if _, err = insTrain.ExecContext(ctx, rowID, t.ID(), t.Key(), i); err != nil {
			return fmt.Errorf("repo.SQLiteStore.Save: insert train %q: %w", t.ID(), err)
		}
		for seq, stop := range t.Route() {
			if _, err = insStop.ExecContext(ctx, rowID, seq, stop.Name()); err != nil {
				return fmt.Errorf("repo.SQLiteStore.Save: insert stop: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO registry_saves (id, saved_at, train_count)
		VALUES (1, CURRENT_TIMESTAMP, ?)
		ON CONFLICT (id) DO UPDATE
		SET saved_at = excluded.saved_at, train_count = excluded.train_count`,
		len(trains))
	if err != nil {
		return fmt.Errorf("repo.SQLiteStore.Save: mark saved: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repo.SQLiteStore.Save: commit: %w", err)
	}
	return nil
}
