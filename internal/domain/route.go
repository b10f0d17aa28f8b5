package domain

import (
	"fmt"
	"strings"
)

// RouteKind distinguishes single-train options from one-transfer options.
type RouteKind string

const (
	RouteDirect   RouteKind = "direct"
	RouteTransfer RouteKind = "transfer"
)

// Leg is one ride on a single train between two stops of its route.
type Leg struct {
	Train Train
	From  Stop
	To    Stop
}

// Stops returns the stops the leg passes through, From and To included.
// It is empty when From or To is not on the train in that order.
func (l Leg) Stops() []Stop {
	i, j := l.Train.StopIndex(l.From), l.Train.StopIndex(l.To)
	if i < 0 || j < i {
		return []Stop{}
	}
	out := make([]Stop, j-i+1)
	copy(out, l.Train.route[i:j+1])
	return out
}

func (l Leg) String() string {
	return fmt.Sprintf("Take Train %s from %s to %s", l.Train.ID(), l.From.Name(), l.To.Name())
}

// Transfer pairs two different trains that meet at a shared stop: ride First
// to At, then Second from At onward.
type Transfer struct {
	First  Train
	Second Train
	At     Stop
}

// RouteOption is one way of travelling between two stops.
// A direct option has one leg, a transfer option has two. The trivial option
// for identical endpoints is direct with no legs.
type RouteOption struct {
	Kind RouteKind
	From Stop
	To   Stop
	Legs []Leg
}

// DirectOption builds the option of riding t from one stop to another.
func DirectOption(t Train, from, to Stop) RouteOption {
	return RouteOption{
		Kind: RouteDirect,
		From: from,
		To:   to,
		Legs: []Leg{{Train: t, From: from, To: to}},
	}
}

// TransferOption builds the two-leg option described by x.
func TransferOption(x Transfer, from, to Stop) RouteOption {
	return RouteOption{
		Kind: RouteTransfer,
		From: from,
		To:   to,
		Legs: []Leg{
			{Train: x.First, From: from, To: x.At},
			{Train: x.Second, From: x.At, To: to},
		},
	}
}

// TrivialOption is the zero-length route for identical endpoints.
func TrivialOption(at Stop) RouteOption {
	return RouteOption{Kind: RouteDirect, From: at, To: at, Legs: []Leg{}}
}

// Transfers returns how many times the passenger changes trains.
func (o RouteOption) Transfers() int {
	if len(o.Legs) < 2 {
		return 0
	}
	return len(o.Legs) - 1
}

// TransferStop returns the stop where the passenger changes trains.
func (o RouteOption) TransferStop() (Stop, bool) {
	if o.Kind != RouteTransfer || len(o.Legs) < 2 {
		return Stop{}, false
	}
	return o.Legs[0].To, true
}

func (o RouteOption) String() string {
	if len(o.Legs) == 0 {
		return fmt.Sprintf("Already at %s", o.From.Name())
	}
	parts := make([]string, len(o.Legs))
	for i, l := range o.Legs {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", then ")
}

// SkippedTrain records a train that a bulk operation did not register.
type SkippedTrain struct {
	ID     string
	Reason string
}
