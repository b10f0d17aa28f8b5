package service

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/bluele/gcache"

	"github.com/pkordes/trainline/internal/domain"
	"github.com/pkordes/trainline/internal/metrics"
	"github.com/pkordes/trainline/internal/route"
)

// ResolverSource hands out resolver snapshots tagged with the revision of the
// collection they were built from. *TrainRegistry satisfies it.
type ResolverSource interface {
	Snapshot() (*route.Resolver, uint64)
}

// RouteService answers route queries against the latest registry snapshot.
// Results are cached in an LRU keyed by revision, so any registry mutation
// makes earlier entries unreachable without explicit invalidation.
type RouteService struct {
	source  ResolverSource
	cache   gcache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRouteService returns a RouteService over source. cacheSize <= 0
// disables caching. m may be nil.
func NewRouteService(source ResolverSource, cacheSize int, m *metrics.Metrics, logger *slog.Logger) *RouteService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RouteService{
		source:  source,
		metrics: m,
		logger:  logger.With(slog.String("component", "route_service")),
	}
	if cacheSize > 0 {
		s.cache = gcache.New(cacheSize).LRU().Build()
	}
	return s
}

// Direct returns the trains serving from -> to: only the first in collection
// order unless all is set.
func (s *RouteService) Direct(from, to domain.Stop, all bool) []domain.Train {
	v := s.cached("direct", from, to, strconv.FormatBool(all), func(r *route.Resolver) any {
		if all {
			return r.FindDirectRoutes(from, to)
		}
		if t, ok := r.FindDirectRoute(from, to); ok {
			return []domain.Train{t}
		}
		return []domain.Train{}
	})
	trains := v.([]domain.Train)
	s.metrics.RouteQuery("direct", len(trains) > 0)
	return trains
}

// Transfer returns one-transfer combinations from -> to: only the first in
// enumeration order unless all is set.
func (s *RouteService) Transfer(from, to domain.Stop, all bool) []domain.Transfer {
	v := s.cached("transfer", from, to, strconv.FormatBool(all), func(r *route.Resolver) any {
		if all {
			return r.FindRoutesWithOneTransfer(from, to)
		}
		if x, ok := r.FindRouteWithOneTransfer(from, to); ok {
			return []domain.Transfer{x}
		}
		return []domain.Transfer{}
	})
	xs := v.([]domain.Transfer)
	s.metrics.RouteQuery("transfer", len(xs) > 0)
	return xs
}

// Routes returns up to limit route options from -> to, direct options first.
// limit <= 0 returns every option.
func (s *RouteService) Routes(from, to domain.Stop, limit int) []domain.RouteOption {
	v := s.cached("routes", from, to, strconv.Itoa(limit), func(r *route.Resolver) any {
		return route.Collect(r.FindRoutes(from, to), limit)
	})
	opts := withEndpoints(v.([]domain.RouteOption), from, to)
	s.metrics.RouteQuery("routes", len(opts) > 0)
	return opts
}

// withEndpoints copies opts with from and to as the journey endpoints. The
// cache is keyed case-insensitively, so a cached option may carry another
// caller's spelling of them.
func withEndpoints(opts []domain.RouteOption, from, to domain.Stop) []domain.RouteOption {
	out := make([]domain.RouteOption, len(opts))
	for i, o := range opts {
		o.From, o.To = from, to
		legs := make([]domain.Leg, len(o.Legs))
		copy(legs, o.Legs)
		if n := len(legs); n > 0 {
			legs[0].From = from
			legs[n-1].To = to
		}
		o.Legs = legs
		out[i] = o
	}
	return out
}

// cached runs compute against the current snapshot, or returns the result a
// previous identical query produced at the same revision. Cached values are
// shared between callers and must not be modified.
func (s *RouteService) cached(kind string, from, to domain.Stop, arg string, compute func(*route.Resolver) any) any {
	resolver, rev := s.source.Snapshot()
	if s.cache == nil {
		return compute(resolver)
	}

	key := cacheKey(rev, kind, from, to, arg)
	if v, err := s.cache.Get(key); err == nil {
		s.metrics.CacheLookup(true)
		return v
	}
	s.metrics.CacheLookup(false)

	v := compute(resolver)
	if err := s.cache.Set(key, v); err != nil {
		s.logger.Warn("route cache set failed", slog.String("error", err.Error()))
	}
	return v
}

func cacheKey(rev uint64, kind string, from, to domain.Stop, arg string) string {
	return strings.Join([]string{strconv.FormatUint(rev, 10), kind, from.Key(), to.Key(), arg}, "\x00")
}
