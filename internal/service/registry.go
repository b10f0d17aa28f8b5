// Package service contains the business logic of the trainline API.
// The TrainRegistry owns the train collection and its station graph and
// enforces id uniqueness; RouteService answers connectivity queries against
// registry snapshots. No SQL or file handling lives here: persistence goes
// through the repo.TrainStore interface.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/pkordes/trainline/internal/domain"
	"github.com/pkordes/trainline/internal/graph"
	"github.com/pkordes/trainline/internal/metrics"
	"github.com/pkordes/trainline/internal/ordering"
	"github.com/pkordes/trainline/internal/repo"
	"github.com/pkordes/trainline/internal/route"
	"github.com/pkordes/trainline/internal/seed"
)

// TrainRegistry is the single owner of the train collection. Every mutation
// appends or removes trains, rebuilds the station graph from scratch, and
// saves the collection, all under one write lock; readers never observe a
// collection mid-rebuild.
type TrainRegistry struct {
	mu       sync.RWMutex
	trains   []domain.Train
	graph    *graph.StationGraph
	resolver *route.Resolver
	revision uint64

	store   repo.TrainStore
	seeds   []domain.Train
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a TrainRegistry.
type Option func(*TrainRegistry)

// WithLogger sets the registry logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *TrainRegistry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *TrainRegistry) { r.metrics = m }
}

// WithSeeds replaces the built-in example trains used when the store has
// never been written. An empty slice makes a first run start empty.
func WithSeeds(trains []domain.Train) Option {
	return func(r *TrainRegistry) { r.seeds = slices.Clone(trains) }
}

// NewTrainRegistry returns an empty registry backed by store. A nil store
// keeps everything in memory. Call Load to populate it.
func NewTrainRegistry(store repo.TrainStore, opts ...Option) *TrainRegistry {
	r := &TrainRegistry{
		trains: []domain.Train{},
		graph:  graph.New(),
		store:  store,
		seeds:  seed.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "train_registry"))
	r.rebuild()
	return r
}

// Load replaces the collection with the stored one. If the store has never
// been written the registry seeds itself and saves the seeds. Any other load
// failure leaves the registry empty and returns an error wrapping
// domain.ErrPersistence. Stored trains whose id repeats an earlier one are
// skipped with a warning.
func (r *TrainRegistry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store == nil {
		r.trains = r.dedupe(r.seeds, "seed")
		r.rebuild()
		return nil
	}

	loaded, err := r.store.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.logger.Info("store has never been saved; seeding", slog.Int("trains", len(r.seeds)))
		r.trains = r.dedupe(r.seeds, "seed")
		if err := r.commit(ctx, "seed"); err != nil {
			return fmt.Errorf("service.TrainRegistry.Load: %w", err)
		}
		return nil

	case err != nil:
		r.trains = []domain.Train{}
		r.rebuild()
		r.metrics.PersistenceError("load")
		r.logger.Error("loading trains failed; registry is empty", slog.String("error", err.Error()))
		return fmt.Errorf("service.TrainRegistry.Load: %w: %w", domain.ErrPersistence, err)
	}

	r.trains = r.dedupe(loaded, "store")
	r.rebuild()
	r.logger.Info("trains loaded", slog.Int("trains", len(r.trains)))
	return nil
}

// Reload discards the in-memory collection and loads it again from the store.
func (r *TrainRegistry) Reload(ctx context.Context) error {
	return r.Load(ctx)
}

// Add appends t unless a train with the same id, compared case-insensitively,
// is already registered; in that case the registry is left unchanged and the
// error wraps domain.ErrDuplicateID.
func (r *TrainRegistry) Add(ctx context.Context, t domain.Train) error {
	if t.IsZero() {
		return fmt.Errorf("service.TrainRegistry.Add: %w: train is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(t.Key()) >= 0 {
		r.metrics.Mutation("add", "rejected")
		return fmt.Errorf("service.TrainRegistry.Add: %w: %q", domain.ErrDuplicateID, t.ID())
	}

	r.trains = append(r.trains, t)
	if err := r.commit(ctx, "add"); err != nil {
		return fmt.Errorf("service.TrainRegistry.Add: %w", err)
	}
	return nil
}

// Remove deletes the train with the given id, compared case-insensitively.
// It reports whether anything was removed; nothing is rebuilt or saved when
// no train matched.
func (r *TrainRegistry) Remove(ctx context.Context, id string) (bool, error) {
	key := normalizeID(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.trains)
	r.trains = slices.DeleteFunc(r.trains, func(t domain.Train) bool { return t.Key() == key })
	if len(r.trains) == before {
		r.metrics.Mutation("remove", "noop")
		return false, nil
	}

	if err := r.commit(ctx, "remove"); err != nil {
		return true, fmt.Errorf("service.TrainRegistry.Remove: %w", err)
	}
	return true, nil
}

// Update replaces the train registered as oldID with t. It behaves as a
// remove followed by an add: on success t is appended at the end. If t's id
// belongs to a different registered train the old train is restored at its
// original position and the error wraps domain.ErrDuplicateID. An unknown
// oldID wraps domain.ErrNotFound. Either way a rejected update leaves the
// registry exactly as it was.
func (r *TrainRegistry) Update(ctx context.Context, oldID string, t domain.Train) error {
	if t.IsZero() {
		return fmt.Errorf("service.TrainRegistry.Update: %w: train is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(normalizeID(oldID))
	if idx < 0 {
		r.metrics.Mutation("update", "rejected")
		return fmt.Errorf("service.TrainRegistry.Update: %w: train %q", domain.ErrNotFound, strings.TrimSpace(oldID))
	}

	old := r.trains[idx]
	r.trains = slices.Delete(r.trains, idx, idx+1)

	if r.indexOf(t.Key()) >= 0 {
		r.trains = slices.Insert(r.trains, idx, old)
		r.metrics.Mutation("update", "rejected")
		return fmt.Errorf("service.TrainRegistry.Update: %w: %q", domain.ErrDuplicateID, t.ID())
	}

	r.trains = append(r.trains, t)
	if err := r.commit(ctx, "update"); err != nil {
		return fmt.Errorf("service.TrainRegistry.Update: %w", err)
	}
	return nil
}

// Import adds every train whose id is not yet registered, in order, with one
// rebuild and one save at the end. Trains that collide with the registry or
// with an earlier train of the same batch are returned as skipped.
func (r *TrainRegistry) Import(ctx context.Context, trains []domain.Train) ([]domain.Train, []domain.SkippedTrain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := []domain.Train{}
	skipped := []domain.SkippedTrain{}
	for _, t := range trains {
		if t.IsZero() {
			continue
		}
		if r.indexOf(t.Key()) >= 0 {
			skipped = append(skipped, domain.SkippedTrain{ID: t.ID(), Reason: domain.ErrDuplicateID.Error()})
			continue
		}
		r.trains = append(r.trains, t)
		added = append(added, t)
	}
	r.metrics.Skipped("import", len(skipped))

	if len(added) == 0 {
		r.metrics.Mutation("import", "noop")
		return added, skipped, nil
	}
	if err := r.commit(ctx, "import"); err != nil {
		return added, skipped, fmt.Errorf("service.TrainRegistry.Import: %w", err)
	}
	return added, skipped, nil
}

// SortByStopCount stably reorders the collection by ascending stop count and
// saves the new order.
func (r *TrainRegistry) SortByStopCount(ctx context.Context) error {
	return r.sort(ctx, "sort_stops", domain.CompareStopCount)
}

// SortByStartStopName stably reorders the collection by the case-insensitive
// name of each train's first stop and saves the new order.
func (r *TrainRegistry) SortByStartStopName(ctx context.Context) error {
	return r.sort(ctx, "sort_start", domain.CompareStartName)
}

func (r *TrainRegistry) sort(ctx context.Context, op string, cmp func(a, b domain.Train) int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ordering.Sort(r.trains, cmp)
	if err := r.commit(ctx, op); err != nil {
		return fmt.Errorf("service.TrainRegistry.Sort: %w", err)
	}
	return nil
}

// Save writes the current collection to the store. A registry without a
// store has nothing to save.
func (r *TrainRegistry) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.save(ctx); err != nil {
		return fmt.Errorf("service.TrainRegistry.Save: %w", err)
	}
	return nil
}

// FindByID returns the train with the given id, compared case-insensitively.
func (r *TrainRegistry) FindByID(id string) (domain.Train, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(normalizeID(id)); i >= 0 {
		return r.trains[i], true
	}
	return domain.Train{}, false
}

// FindByStop returns, in collection order, every train passing through s.
func (r *TrainRegistry) FindByStop(s domain.Stop) []domain.Train {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Train{}
	for _, t := range r.trains {
		if t.HasStop(s) {
			out = append(out, t)
		}
	}
	return out
}

// All returns a copy of the collection in its current order.
func (r *TrainRegistry) All() []domain.Train {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.trains)
}

// Len returns the number of registered trains.
func (r *TrainRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trains)
}

// Neighbors returns the stations adjacent to s on any train.
func (r *TrainRegistry) Neighbors(s domain.Stop) []domain.Stop {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.Neighbors(s)
}

// HasStation reports whether any registered train passes through s.
func (r *TrainRegistry) HasStation(s domain.Stop) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.HasStation(s)
}

// Stations returns every known station ordered by name.
func (r *TrainRegistry) Stations() []domain.Stop {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.Stations()
}

// Hops returns a station path of at most two edges, or nil.
func (r *TrainRegistry) Hops(from, to domain.Stop) []domain.Stop {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.Hops(from, to)
}

// Adjacency returns a snapshot of the station graph.
func (r *TrainRegistry) Adjacency() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.Adjacency()
}

// Snapshot returns a resolver over the current collection together with the
// revision it was built at. The revision increases on every mutation.
func (r *TrainRegistry) Snapshot() (*route.Resolver, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolver, r.revision
}

// Revision returns the current revision.
func (r *TrainRegistry) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// commit makes a mutation visible and durable. The in-memory change always
// stands; a failed save is reported wrapped in domain.ErrPersistence.
// Callers must hold the write lock.
func (r *TrainRegistry) commit(ctx context.Context, op string) error {
	r.rebuild()
	r.metrics.Mutation(op, "ok")
	return r.save(ctx)
}

// rebuild derives the graph and resolver from the trains and bumps the revision.
func (r *TrainRegistry) rebuild() {
	r.graph.Rebuild(r.trains)
	r.resolver = route.NewResolver(r.trains)
	r.revision++
	r.metrics.Collection(len(r.trains), len(r.graph.Stations()))
}

func (r *TrainRegistry) save(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(ctx, slices.Clone(r.trains)); err != nil {
		r.metrics.PersistenceError("save")
		r.logger.Error("saving trains failed; in-memory registry kept",
			slog.Int("trains", len(r.trains)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// dedupe drops trains whose id repeats an earlier one.
func (r *TrainRegistry) dedupe(trains []domain.Train, source string) []domain.Train {
	seen := make(map[string]struct{}, len(trains))
	out := make([]domain.Train, 0, len(trains))
	for _, t := range trains {
		if _, dup := seen[t.Key()]; dup {
			r.logger.Warn("skipping train with duplicate id",
				slog.String("source", source),
				slog.String("id", t.ID()),
			)
			r.metrics.Skipped(source, 1)
			continue
		}
		seen[t.Key()] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (r *TrainRegistry) indexOf(key string) int {
	return slices.IndexFunc(r.trains, func(t domain.Train) bool { return t.Key() == key })
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
