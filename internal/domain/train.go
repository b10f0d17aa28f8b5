// Package domain contains the core value types of the train line registry:
// stops, trains, and the route options the resolver produces.
// This package has no dependencies outside the standard library and is
// imported by every other internal package.
package domain

import (
	"fmt"
	"strings"
)

// Train is a named line defined by an ordered, duplicate-free sequence of
// at least two Stops. A Train is immutable; updates replace the whole value.
//
// Two trains are the same train when their ids match case-insensitively,
// regardless of route. That id is the registry's uniqueness key.
type Train struct {
	id    string
	key   string
	route []Stop
}

// NewTrain builds a Train from its id and full ordered route.
// Returns ErrValidation if the id is empty, fewer than two stops are given,
// any stop is the zero Stop, or a stop appears twice in the route.
func NewTrain(id string, route []Stop) (Train, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Train{}, fmt.Errorf("%w: train id is required", ErrValidation)
	}
	if len(route) < 2 {
		return Train{}, fmt.Errorf("%w: train %q needs at least 2 stops, got %d", ErrValidation, id, len(route))
	}
	for i, s := range route {
		if s.IsZero() {
			return Train{}, fmt.Errorf("%w: train %q has an empty stop at position %d", ErrValidation, id, i)
		}
		for j := i + 1; j < len(route); j++ {
			if s.Equal(route[j]) {
				return Train{}, fmt.Errorf("%w: route for train %q contains duplicate stop %q", ErrValidation, id, s.Name())
			}
		}
	}

	r := make([]Stop, len(route))
	copy(r, route)
	return Train{id: id, key: strings.ToLower(id), route: r}, nil
}

// NewTrainFromEndpoints builds a Train from an explicit start, end, and the
// stops between them. It is equivalent to NewTrain with start, intermediates...,
// end as the route.
func NewTrainFromEndpoints(id string, start, end Stop, intermediates []Stop) (Train, error) {
	route := make([]Stop, 0, len(intermediates)+2)
	route = append(route, start)
	route = append(route, intermediates...)
	route = append(route, end)
	return NewTrain(id, route)
}

// ParseTrain builds a Train from raw station names.
func ParseTrain(id string, names []string) (Train, error) {
	stops, err := NewStops(names...)
	if err != nil {
		return Train{}, err
	}
	return NewTrain(id, stops)
}

// ID returns the trimmed train id as it was given.
func (t Train) ID() string { return t.id }

// Key returns the case-folded id used for identity.
func (t Train) Key() string { return t.key }

// Route returns a copy of the full ordered route.
func (t Train) Route() []Stop {
	r := make([]Stop, len(t.route))
	copy(r, t.route)
	return r
}

// Start returns the first stop of the route.
func (t Train) Start() Stop { return t.route[0] }

// End returns the last stop of the route.
func (t Train) End() Stop { return t.route[len(t.route)-1] }

// Intermediates returns the stops between Start and End.
func (t Train) Intermediates() []Stop {
	if len(t.route) <= 2 {
		return []Stop{}
	}
	r := make([]Stop, len(t.route)-2)
	copy(r, t.route[1:len(t.route)-1])
	return r
}

// StopCount returns the number of stops on the route.
func (t Train) StopCount() int { return len(t.route) }

// StopAt returns the stop at zero-based position i.
// It panics if i is out of range, like a slice index.
func (t Train) StopAt(i int) Stop { return t.route[i] }

// HasStop reports whether the train passes through s.
func (t Train) HasStop(s Stop) bool { return t.StopIndex(s) >= 0 }

// StopIndex returns the zero-based position of s in the route, or -1.
func (t Train) StopIndex(s Stop) int {
	for i, rs := range t.route {
		if rs.Equal(s) {
			return i
		}
	}
	return -1
}

// Serves reports whether a passenger can ride this train from one stop to
// another: both stops are on the route and from comes strictly first.
// A stop trivially serves itself when the train passes through it.
func (t Train) Serves(from, to Stop) bool {
	i := t.StopIndex(from)
	if i < 0 {
		return false
	}
	if from.Equal(to) {
		return true
	}
	j := t.StopIndex(to)
	return j >= 0 && i < j
}

// Equal reports whether t and o are the same train, by id only.
func (t Train) Equal(o Train) bool { return t.key == o.key }

// IsZero reports whether t is the zero Train.
func (t Train) IsZero() bool { return t.key == "" }

func (t Train) String() string {
	if t.IsZero() {
		return ""
	}
	mid := stopNames(t.Intermediates())
	intermediate := "None"
	if len(mid) > 0 {
		intermediate = strings.Join(mid, ", ")
	}
	return fmt.Sprintf("Train %s: %s -> %s (Intermediate: %s)", t.id, t.Start().Name(), t.End().Name(), intermediate)
}

// StopNames returns the display names of the route in order.
func (t Train) StopNames() []string { return stopNames(t.route) }

func stopNames(stops []Stop) []string {
	names := make([]string, len(stops))
	for i, s := range stops {
		names[i] = s.Name()
	}
	return names
}

// CompareStopCount orders trains by ascending number of stops.
func CompareStopCount(a, b Train) int {
	return len(a.route) - len(b.route)
}

// CompareStartName orders trains by their start stop, ignoring case.
func CompareStartName(a, b Train) int {
	return strings.Compare(a.Start().Key(), b.Start().Key())
}
