// Package graph maintains the undirected station adjacency derived from the
// registered trains. An edge joins every pair of consecutive stops on any
// train's route.
package graph

import (
	"slices"
	"strings"

	"github.com/pkordes/trainline/internal/domain"
)

// StationGraph is the adjacency structure over stops. It is never edited
// edge by edge: Rebuild replaces its content from the full train set, so it
// cannot drift from the trains it was built from.
//
// StationGraph is not safe for concurrent use; the registry that owns it
// serializes Rebuild against readers.
type StationGraph struct {
	// adjacency maps a stop key to the keys of its neighbours.
	adjacency map[string]map[string]struct{}
	// stops maps a stop key to the first Stop value seen for it, which
	// supplies the display casing.
	stops map[string]domain.Stop
}

// New returns an empty graph.
func New() *StationGraph {
	return &StationGraph{
		adjacency: map[string]map[string]struct{}{},
		stops:     map[string]domain.Stop{},
	}
}

// Rebuild clears the graph and replays every consecutive stop pair of every
// train as an undirected edge. Rebuilding from the same trains always yields
// the same adjacency.
func (g *StationGraph) Rebuild(trains []domain.Train) {
	g.adjacency = make(map[string]map[string]struct{}, len(g.adjacency))
	g.stops = make(map[string]domain.Stop, len(g.stops))

	for _, t := range trains {
		for i := 0; i < t.StopCount(); i++ {
			g.addNode(t.StopAt(i))
		}
		for i := 0; i+1 < t.StopCount(); i++ {
			g.addEdge(t.StopAt(i), t.StopAt(i+1))
		}
	}
}

func (g *StationGraph) addNode(s domain.Stop) {
	if _, ok := g.stops[s.Key()]; !ok {
		g.stops[s.Key()] = s
		g.adjacency[s.Key()] = map[string]struct{}{}
	}
}

func (g *StationGraph) addEdge(a, b domain.Stop) {
	g.adjacency[a.Key()][b.Key()] = struct{}{}
	g.adjacency[b.Key()][a.Key()] = struct{}{}
}

// Neighbors returns the stops adjacent to s ordered by key.
// An unknown stop has no neighbours.
func (g *StationGraph) Neighbors(s domain.Stop) []domain.Stop {
	adj := g.adjacency[s.Key()]
	out := make([]domain.Stop, 0, len(adj))
	for k := range adj {
		out = append(out, g.stops[k])
	}
	sortStops(out)
	return out
}

// HasStation reports whether any train passes through s.
func (g *StationGraph) HasStation(s domain.Stop) bool {
	_, ok := g.stops[s.Key()]
	return ok
}

// Adjacent reports whether a and b are consecutive stops on some train.
func (g *StationGraph) Adjacent(a, b domain.Stop) bool {
	_, ok := g.adjacency[a.Key()][b.Key()]
	return ok
}

// Stations returns every known stop ordered by key.
func (g *StationGraph) Stations() []domain.Stop {
	out := make([]domain.Stop, 0, len(g.stops))
	for _, s := range g.stops {
		out = append(out, s)
	}
	sortStops(out)
	return out
}

// EdgeCount returns the number of undirected edges.
func (g *StationGraph) EdgeCount() int {
	n := 0
	for _, adj := range g.adjacency {
		n += len(adj)
	}
	return n / 2
}

// Adjacency returns a snapshot of the graph as stop key -> sorted neighbour
// keys. Two graphs with equal snapshots have identical adjacency.
func (g *StationGraph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.adjacency))
	for k, adj := range g.adjacency {
		keys := make([]string, 0, len(adj))
		for n := range adj {
			keys = append(keys, n)
		}
		slices.Sort(keys)
		out[k] = keys
	}
	return out
}

// Hops finds a station path of at most two edges from one stop to another,
// ignoring which train provides each edge. It returns [from] for identical
// stops, [from, to] for adjacent ones, [from, via, to] when a common
// neighbour exists (the first by key), and nil otherwise.
func (g *StationGraph) Hops(from, to domain.Stop) []domain.Stop {
	if from.Equal(to) {
		if s, ok := g.stops[from.Key()]; ok {
			return []domain.Stop{s}
		}
		return []domain.Stop{from}
	}
	if !g.HasStation(from) || !g.HasStation(to) {
		return nil
	}
	if g.Adjacent(from, to) {
		return []domain.Stop{g.stops[from.Key()], g.stops[to.Key()]}
	}
	for _, via := range g.Neighbors(from) {
		if g.Adjacent(via, to) {
			return []domain.Stop{g.stops[from.Key()], via, g.stops[to.Key()]}
		}
	}
	return nil
}

func sortStops(s []domain.Stop) {
	slices.SortFunc(s, func(a, b domain.Stop) int {
		return strings.Compare(a.Key(), b.Key())
	})
}
