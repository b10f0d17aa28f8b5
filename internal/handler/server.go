// Package handler implements the HTTP handlers for the trainline API.
// All handlers are methods on Server. They are split into resource files
// (health.go, trains.go, stations.go, routes.go, imports.go) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trainline/internal/domain"
)

// TrainRegistrar defines the registry operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention "accept interfaces, return concrete types" and lets handler
// tests inject a mock without touching the service layer.
type TrainRegistrar interface {
	All() []domain.Train
	FindByID(id string) (domain.Train, bool)
	FindByStop(s domain.Stop) []domain.Train
	Add(ctx context.Context, t domain.Train) error
	Update(ctx context.Context, oldID string, t domain.Train) error
	Remove(ctx context.Context, id string) (bool, error)
	Import(ctx context.Context, trains []domain.Train) ([]domain.Train, []domain.SkippedTrain, error)
	SortByStopCount(ctx context.Context) error
	SortByStartStopName(ctx context.Context) error
	Save(ctx context.Context) error
	Reload(ctx context.Context) error
	Neighbors(s domain.Stop) []domain.Stop
	HasStation(s domain.Stop) bool
}

// RouteFinder defines the route queries the handlers depend on.
type RouteFinder interface {
	Direct(from, to domain.Stop, all bool) []domain.Train
	Transfer(from, to domain.Stop, all bool) []domain.Transfer
	Routes(from, to domain.Stop, limit int) []domain.RouteOption
}

// Server serves every API endpoint.
type Server struct {
	trains       TrainRegistrar
	routes       RouteFinder
	logger       *slog.Logger
	routeLimiter func(http.Handler) http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRouteLimiter wraps the /routes endpoints, which are the expensive ones,
// in mw (typically a rate limiter).
func WithRouteLimiter(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.routeLimiter = mw }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trains TrainRegistrar, routes RouteFinder, opts ...Option) *Server {
	s := &Server{
		trains: trains,
		routes: routes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router. main.go mounts it behind the shared
// middleware stack; tests serve it directly.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trains", func(r chi.Router) {
		r.Get("/", s.ListTrains)
		r.Post("/", s.CreateTrain)
		r.Post("/sort", s.SortTrains)
		r.Post("/save", s.SaveTrains)
		r.Post("/reload", s.ReloadTrains)
		r.Get("/{id}", s.GetTrain)
		r.Put("/{id}", s.UpdateTrain)
		r.Delete("/{id}", s.DeleteTrain)
	})

	r.Route("/stations/{name}", func(r chi.Router) {
		r.Get("/trains", s.ListStationTrains)
		r.Get("/neighbors", s.ListStationNeighbors)
	})

	r.Group(func(r chi.Router) {
		if s.routeLimiter != nil {
			r.Use(s.routeLimiter)
		}
		r.Get("/routes", s.FindRoutes)
		r.Get("/routes/direct", s.FindDirectRoutes)
		r.Get("/routes/transfer", s.FindTransferRoutes)
	})

	r.Post("/imports/gtfs", s.ImportGTFS)

	return r
}
