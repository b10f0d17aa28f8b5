// Package repo persists the train collection. Each backend has its own file
// and implements TrainStore; the registry never knows which one it talks to.
// No business logic lives here, only encoding, SQL, and type mapping.
package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkordes/trainline/internal/domain"
)

// TrainStore loads and saves the whole train collection as one unit.
// The registry depends on this interface, not on a concrete backend, which
// allows it to be unit-tested with a mock.
type TrainStore interface {
	// Load returns every persisted train in saved order. Records that fail
	// validation are skipped with a warning rather than failing the load.
	// Returns domain.ErrNotFound if the store has never been written.
	Load(ctx context.Context) ([]domain.Train, error)

	// Save replaces the persisted collection with trains, in order.
	Save(ctx context.Context, trains []domain.Train) error
}

// stopRow is one (train, stop) pair as read back from a SQL backend, already
// ordered by train position and stop sequence.
type stopRow struct {
	trainID string
	code    string
	name    string
}

// assembleTrains folds consecutive rows of the same train into domain Trains.
// A train whose stops no longer validate is logged and skipped.
func assembleTrains(rows []stopRow, logger *slog.Logger) []domain.Train {
	trains := []domain.Train{}

	flush := func(id, code string, names []string) {
		if id == "" {
			return
		}
		t, err := domain.ParseTrain(code, names)
		if err != nil {
			logger.Warn("skipping invalid stored train",
				slog.String("train_row", id),
				slog.String("id", code),
				slog.String("error", err.Error()),
			)
			return
		}
		trains = append(trains, t)
	}

	var (
		curID, curCode string
		names          []string
	)
	for _, r := range rows {
		if r.trainID != curID {
			flush(curID, curCode, names)
			curID, curCode, names = r.trainID, r.code, nil
		}
		names = append(names, r.name)
	}
	flush(curID, curCode, names)
	return trains
}

func componentLogger(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", name))
}

func neverSaved(op string) error {
	return fmt.Errorf("%s: %w: train collection has never been saved", op, domain.ErrNotFound)
}
