package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trainline/internal/domain"
	"github.com/pkordes/trainline/internal/metrics"
	"github.com/pkordes/trainline/internal/route"
	"github.com/pkordes/trainline/internal/service"
)

// staticSource serves a fixed resolver at a fixed revision.
type staticSource struct {
	resolver *route.Resolver
	rev      uint64
	calls    int
}

func (s *staticSource) Snapshot() (*route.Resolver, uint64) {
	s.calls++
	return s.resolver, s.rev
}

var _ service.ResolverSource = (*staticSource)(nil)

func TestRouteService_Direct(t *testing.T) {
	reg, _ := newLoadedRegistry(t, []domain.Train{
		mustTrain(t, "A", "X", "Y", "Z"),
		mustTrain(t, "B", "X", "Z"),
	})
	svc := service.NewRouteService(reg, 16, nil, nil)

	first := svc.Direct(mustStop(t, "x"), mustStop(t, "z"), false)
	all := svc.Direct(mustStop(t, "x"), mustStop(t, "z"), true)
	none := svc.Direct(mustStop(t, "z"), mustStop(t, "x"), true)

	assert.Equal(t, []string{"A"}, ids(first))
	assert.Equal(t, []string{"A", "B"}, ids(all))
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRouteService_Transfer(t *testing.T) {
	reg, _ := newLoadedRegistry(t, []domain.Train{
		mustTrain(t, "A", "X", "Y", "Z"),
		mustTrain(t, "B", "Z", "W"),
		mustTrain(t, "C", "Y", "W"),
	})
	svc := service.NewRouteService(reg, 0, nil, nil)

	first := svc.Transfer(mustStop(t, "X"), mustStop(t, "W"), false)
	all := svc.Transfer(mustStop(t, "X"), mustStop(t, "W"), true)

	require.Len(t, first, 1)
	assert.Equal(t, "C", first[0].Second.ID())
	assert.Equal(t, "Y", first[0].At.Name())
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[1].Second.ID())
	assert.Equal(t, "Z", all[1].At.Name())
}

func TestRouteService_Routes(t *testing.T) {
	reg, _ := newLoadedRegistry(t, []domain.Train{
		mustTrain(t, "Through", "X", "Y", "Z"),
		mustTrain(t, "Shuttle", "Y", "Z"),
	})
	svc := service.NewRouteService(reg, 16, nil, nil)

	all := svc.Routes(mustStop(t, "X"), mustStop(t, "Z"), 0)
	one := svc.Routes(mustStop(t, "X"), mustStop(t, "Z"), 1)
	same := svc.Routes(mustStop(t, "Y"), mustStop(t, "y"), 0)

	require.Len(t, all, 2)
	assert.Equal(t, domain.RouteDirect, all[0].Kind)
	assert.Equal(t, domain.RouteTransfer, all[1].Kind)
	require.Len(t, one, 1)
	assert.Equal(t, domain.RouteDirect, one[0].Kind)
	require.Len(t, same, 1)
	assert.Empty(t, same[0].Legs)
}

func TestRouteService_CacheHitsAndInvalidation(t *testing.T) {
	m := metrics.New()
	reg, _ := newLoadedRegistry(t, []domain.Train{mustTrain(t, "A", "X", "Y")})
	svc := service.NewRouteService(reg, 16, m, nil)
	from, to := mustStop(t, "P"), mustStop(t, "Q")

	assert.Empty(t, svc.Direct(from, to, true))
	assert.Empty(t, svc.Direct(from, to, true))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteCacheLookups.WithLabelValues("miss")))

	require.NoError(t, reg.Add(context.Background(), mustTrain(t, "B", "P", "Q")))

	assert.Equal(t, []string{"B"}, ids(svc.Direct(from, to, true)), "a mutation must not serve stale results")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RouteCacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RouteQueries.WithLabelValues("direct", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteQueries.WithLabelValues("direct", "found")))
}

func TestRouteService_CacheKeyedByArguments(t *testing.T) {
	src := &staticSource{resolver: route.NewResolver([]domain.Train{
		mustTrain(t, "A", "X", "Z"),
		mustTrain(t, "B", "X", "Z"),
	}), rev: 7}
	svc := service.NewRouteService(src, 16, nil, nil)

	assert.Len(t, svc.Direct(mustStop(t, "X"), mustStop(t, "Z"), false), 1)
	assert.Len(t, svc.Direct(mustStop(t, "X"), mustStop(t, "Z"), true), 2)
	assert.Len(t, svc.Routes(mustStop(t, "X"), mustStop(t, "Z"), 1), 1)
	assert.Len(t, svc.Routes(mustStop(t, "X"), mustStop(t, "Z"), 0), 2)
	assert.Equal(t, 4, src.calls)
}

func TestRouteService_Routes_CachedOptionsUseCallerSpelling(t *testing.T) {
	src := &staticSource{resolver: route.NewResolver([]domain.Train{
		mustTrain(t, "Cross Country 45", "Chicago", "Omaha", "Denver"),
		mustTrain(t, "Mountain", "Denver", "Salt Lake City"),
	}), rev: 1}
	m := metrics.New()
	svc := service.NewRouteService(src, 16, m, nil)

	first := svc.Routes(mustStop(t, "chicago"), mustStop(t, "salt lake city"), 0)
	require.Len(t, first, 1)
	assert.Equal(t, "Take Train Cross Country 45 from chicago to Denver, then Take Train Mountain from Denver to salt lake city", first[0].String())

	again := svc.Routes(mustStop(t, "CHICAGO"), mustStop(t, "Salt Lake City"), 0)
	require.Len(t, again, 1)
	assert.Equal(t, "Take Train Cross Country 45 from CHICAGO to Denver, then Take Train Mountain from Denver to Salt Lake City", again[0].String())
	assert.Equal(t, "CHICAGO", again[0].From.Name())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteCacheLookups.WithLabelValues("hit")), "second query is served from the cache")

	assert.Equal(t, "chicago", first[0].Legs[0].From.Name(), "earlier results are not modified")
}

func TestRouteService_Routes_TrivialOptionUsesCallerSpelling(t *testing.T) {
	src := &staticSource{resolver: route.NewResolver([]domain.Train{mustTrain(t, "A", "Denver", "Omaha")}), rev: 1}
	svc := service.NewRouteService(src, 16, nil, nil)

	svc.Routes(mustStop(t, "denver"), mustStop(t, "DENVER"), 0)
	got := svc.Routes(mustStop(t, "Denver"), mustStop(t, "Denver"), 0)

	require.Len(t, got, 1)
	assert.Equal(t, "Already at Denver", got[0].String())
}
