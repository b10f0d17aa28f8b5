package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trainline/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so Save stays atomic either way.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore is the Postgres implementation of TrainStore. Trains live in
// the trains table ordered by position; their stops live in train_stops.
type PostgresStore struct {
	db     db
	logger *slog.Logger
}

var _ TrainStore = (*PostgresStore)(nil)

// NewPostgresStore constructs a store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresStore(db db, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: componentLogger(logger, "postgres_store")}
}

// Load returns every stored train ordered by position.
func (s *PostgresStore) Load(ctx context.Context) ([]domain.Train, error) {
	var saved bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM registry_saves WHERE id = 1)`).Scan(&saved)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Load: %w", err)
	}
	if !saved {
		return nil, neverSaved("repo.PostgresStore.Load")
	}

	const q = `
		SELECT t.id, t.code, s.name
		FROM trains t
		JOIN train_stops s ON s.train_id = t.id
		ORDER BY t.position, s.seq`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Load: %w", err)
	}
	defer rows.Close()

	var out []stopRow
	for rows.Next() {
		var (
			id pgtype.UUID
			r  stopRow
		)
		if err := rows.Scan(&id, &r.code, &r.name); err != nil {
			return nil, fmt.Errorf("repo.PostgresStore.Load: scan: %w", err)
		}
		r.trainID = uuid.UUID(id.Bytes).String()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Load: rows: %w", err)
	}

	return assembleTrains(out, s.logger), nil
}

// Save replaces the stored collection inside one transaction. Rows are
// written with a single batch round trip.
func (s *PostgresStore) Save(ctx context.Context, trains []domain.Train) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM trains`); err != nil {
			return fmt.Errorf("clear: %w", err)
		}

		b := &pgx.Batch{}
		for i, t := range trains {
			rowID := uuid.New()
			b.Queue(`
				INSERT INTO trains (id, code, code_key, position)
				VALUES (@id, @code, @code_key, @position)`,
				pgx.NamedArgs{
					"id":       rowID,
					"code":     t.ID(),
					"code_key": t.Key(),
					"position": i,
				})
			for seq, stop := range t.Route() {
				b.Queue(`
					INSERT INTO train_stops (train_id, seq, name)
					VALUES (@train_id, @seq, @name)`,
					pgx.NamedArgs{
						"train_id": rowID,
						"seq":      seq,
						"name":     stop.Name(),
					})
			}
		}
		b.Queue(`
			INSERT INTO registry_saves (id, saved_at, train_count)
			VALUES (1, now(), @count)
			ON CONFLICT (id) DO UPDATE
			SET saved_at = EXCLUDED.saved_at, train_count = EXCLUDED.train_count`,
			pgx.NamedArgs{"count": len(trains)})

		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		return fmt.Errorf("repo.PostgresStore.Save: %w", err)
	}
	return nil
}
