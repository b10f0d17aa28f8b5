// Package metrics provides Prometheus metrics for the trainline service.
//
// Every recording helper is safe to call on a nil *Metrics, so components can
// take an optional metrics dependency without branching at each call site.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance.
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    prometheus.Counter

	// Registry metrics
	RegistryMutations *prometheus.CounterVec
	Trains            prometheus.Gauge
	Stations          prometheus.Gauge
	PersistenceErrors *prometheus.CounterVec
	SkippedRecords    *prometheus.CounterVec

	// Route query metrics
	RouteQueries      *prometheus.CounterVec
	RouteCacheLookups *prometheus.CounterVec

	// Database metrics (SQL stores only)
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge

	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainline_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trainline_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trainline_http_rate_limited_total",
			Help: "Requests rejected with 429 by the rate limiter",
		}),
		RegistryMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainline_registry_mutations_total",
			Help: "Train registry operations by outcome",
		}, []string{"op", "result"}),
		Trains: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trainline_trains",
			Help: "Number of registered trains",
		}),
		Stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trainline_stations",
			Help: "Number of distinct stations in the station graph",
		}),
		PersistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainline_persistence_errors_total",
			Help: "Failed store loads and saves",
		}, []string{"op"}),
		SkippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainline_skipped_records_total",
			Help: "Trains not registered during bulk loads, by source",
		}, []string{"source"}),
		RouteQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainline_route_queries_total",
			Help: "Route queries by kind and whether anything was found",
		}, []string{"kind", "outcome"}),
		RouteCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainline_route_cache_lookups_total",
			Help: "Route cache lookups by result",
		}, []string{"result"}),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trainline_db_connections_open",
			Help: "Number of open database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trainline_db_connections_in_use",
			Help: "Number of database connections currently in use",
		}),
		logger: logger,
	}

	m.Registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitedTotal,
		m.RegistryMutations,
		m.Trains,
		m.Stations,
		m.PersistenceErrors,
		m.SkippedRecords,
		m.RouteQueries,
		m.RouteCacheLookups,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
	)
	return m
}

// Mutation records a registry operation outcome ("ok", "rejected", "noop").
func (m *Metrics) Mutation(op, result string) {
	if m == nil {
		return
	}
	m.RegistryMutations.WithLabelValues(op, result).Inc()
}

// Collection records the current size of the registry and its graph.
func (m *Metrics) Collection(trains, stations int) {
	if m == nil {
		return
	}
	m.Trains.Set(float64(trains))
	m.Stations.Set(float64(stations))
}

// PersistenceError counts a failed "load" or "save".
func (m *Metrics) PersistenceError(op string) {
	if m == nil {
		return
	}
	m.PersistenceErrors.WithLabelValues(op).Inc()
}

// Skipped counts n trains dropped while loading from source.
func (m *Metrics) Skipped(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedRecords.WithLabelValues(source).Add(float64(n))
}

// RouteQuery records a route query of kind and whether it found anything.
func (m *Metrics) RouteQuery(kind string, found bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if found {
		outcome = "found"
	}
	m.RouteQueries.WithLabelValues(kind, outcome).Inc()
}

// CacheLookup records a route cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RouteCacheLookups.WithLabelValues(result).Inc()
}

// RateLimited counts one rejected request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

// StartDBStatsCollector starts a goroutine that periodically copies connection
// pool statistics of db into the DB gauges. It is idempotent; call Shutdown
// to stop it.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Add to WaitGroup BEFORE exposing cancel to avoid a race with Shutdown.
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("panic in DB stats collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector goroutine and waits for it to exit.
// It is safe to call multiple times.
func (m *Metrics) Shutdown() {
	if m == nil {
		return
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
