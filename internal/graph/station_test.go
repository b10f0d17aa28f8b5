package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trainline/internal/domain"
	"github.com/pkordes/trainline/internal/graph"
)

func mustTrain(t *testing.T, id string, names ...string) domain.Train {
	t.Helper()
	tr, err := domain.ParseTrain(id, names)
	require.NoError(t, err)
	return tr
}

func mustStop(t *testing.T, name string) domain.Stop {
	t.Helper()
	s, err := domain.NewStop(name)
	require.NoError(t, err)
	return s
}

func names(stops []domain.Stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.Name()
	}
	return out
}

func sampleTrains(t *testing.T) []domain.Train {
	return []domain.Train{
		mustTrain(t, "Cross Country 45", "Chicago", "Omaha", "Denver", "Salt Lake City"),
		mustTrain(t, "Texas Eagle", "chicago", "St. Louis", "Dallas", "San Antonio"),
		mustTrain(t, "Front Range", "Denver", "Omaha"),
	}
}

func TestRebuild_BuildsUndirectedAdjacency(t *testing.T) {
	g := graph.New()
	g.Rebuild(sampleTrains(t))

	assert.Equal(t, map[string][]string{
		"chicago":        {"omaha", "st. louis"},
		"omaha":          {"chicago", "denver"},
		"denver":         {"omaha", "salt lake city"},
		"salt lake city": {"denver"},
		"st. louis":      {"chicago", "dallas"},
		"dallas":         {"san antonio", "st. louis"},
		"san antonio":    {"dallas"},
	}, g.Adjacency())
	assert.Equal(t, 6, g.EdgeCount())
}

// TestRebuild_Idempotent verifies that rebuilding twice from the same trains
// yields identical adjacency.
func TestRebuild_Idempotent(t *testing.T) {
	g := graph.New()
	trains := sampleTrains(t)

	g.Rebuild(trains)
	first := g.Adjacency()
	g.Rebuild(trains)

	assert.Equal(t, first, g.Adjacency())
}

// TestRebuild_DropsRemovedTrains verifies that a rebuild reflects only the
// trains it is given, never leftovers from a previous build.
func TestRebuild_DropsRemovedTrains(t *testing.T) {
	g := graph.New()
	trains := sampleTrains(t)
	g.Rebuild(trains)

	g.Rebuild(trains[:1])

	assert.False(t, g.HasStation(mustStop(t, "Dallas")))
	assert.Equal(t, []string{"Chicago"}, names(g.Neighbors(mustStop(t, "omaha")))[:1])
	assert.Equal(t, 3, g.EdgeCount())
}

func TestNeighbors(t *testing.T) {
	g := graph.New()
	g.Rebuild(sampleTrains(t))

	assert.Equal(t, []string{"Omaha", "St. Louis"}, names(g.Neighbors(mustStop(t, "CHICAGO"))))
	assert.Empty(t, g.Neighbors(mustStop(t, "Atlantis")))
}

// TestStations_KeepsFirstSeenCasing verifies the display name comes from the
// first train that mentions the stop.
func TestStations_KeepsFirstSeenCasing(t *testing.T) {
	g := graph.New()
	g.Rebuild(sampleTrains(t))

	stations := names(g.Stations())
	assert.Contains(t, stations, "Chicago")
	assert.NotContains(t, stations, "chicago")
	assert.Len(t, stations, 7)
}

func TestAdjacent(t *testing.T) {
	g := graph.New()
	g.Rebuild(sampleTrains(t))

	assert.True(t, g.Adjacent(mustStop(t, "Denver"), mustStop(t, "Omaha")))
	assert.True(t, g.Adjacent(mustStop(t, "Omaha"), mustStop(t, "Denver")))
	assert.False(t, g.Adjacent(mustStop(t, "Chicago"), mustStop(t, "Denver")))
}

func TestHops(t *testing.T) {
	g := graph.New()
	g.Rebuild(sampleTrains(t))

	tests := []struct {
		name     string
		from, to string
		want     []string
	}{
		{name: "same stop", from: "denver", to: "DENVER", want: []string{"Denver"}},
		{name: "adjacent", from: "Chicago", to: "Omaha", want: []string{"Chicago", "Omaha"}},
		{name: "two hops", from: "Chicago", to: "Denver", want: []string{"Chicago", "Omaha", "Denver"}},
		{name: "two hops across trains", from: "Omaha", to: "St. Louis", want: []string{"Omaha", "Chicago", "St. Louis"}},
		{name: "too far", from: "Chicago", to: "Salt Lake City", want: nil},
		{name: "unknown", from: "Chicago", to: "Atlantis", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Hops(mustStop(t, tt.from), mustStop(t, tt.to))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestNew_Empty(t *testing.T) {
	g := graph.New()

	assert.Empty(t, g.Stations())
	assert.Empty(t, g.Adjacency())
	assert.Zero(t, g.EdgeCount())
}
