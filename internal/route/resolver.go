// Package route answers connectivity queries over a train collection: is
// there a direct train between two stops, and if not, is there a route with
// exactly one change between two different trains.
//
// Routes are directional. A train serves from -> to only when from comes
// strictly before to on its route, so a train listed Chicago..Denver does not
// take a passenger from Denver to Chicago.
//
// Every query has a first-match form and an exhaustive form. Both walk the
// trains in collection order, so results are deterministic for a given
// collection order.
package route

import (
	"iter"

	"github.com/pkordes/trainline/internal/domain"
)

// Resolver is a stateless query engine over a fixed snapshot of trains.
// It never mutates the trains it was built from and is safe for concurrent
// use.
type Resolver struct {
	trains []domain.Train
}

// NewResolver returns a Resolver over a copy of trains.
func NewResolver(trains []domain.Train) *Resolver {
	t := make([]domain.Train, len(trains))
	copy(t, trains)
	return &Resolver{trains: t}
}

// Trains returns a copy of the snapshot the resolver queries.
func (r *Resolver) Trains() []domain.Train {
	t := make([]domain.Train, len(r.trains))
	copy(t, r.trains)
	return t
}

// FindDirectRoute returns the first train, in collection order, that serves
// from -> to. For identical endpoints it returns the first train passing
// through the stop.
func (r *Resolver) FindDirectRoute(from, to domain.Stop) (domain.Train, bool) {
	for t := range r.direct(from, to) {
		return t, true
	}
	return domain.Train{}, false
}

// FindDirectRoutes returns every train that serves from -> to, in collection
// order. The result is never nil.
func (r *Resolver) FindDirectRoutes(from, to domain.Stop) []domain.Train {
	out := []domain.Train{}
	for t := range r.direct(from, to) {
		out = append(out, t)
	}
	return out
}

// FindRouteWithOneTransfer returns the first one-transfer combination in
// enumeration order (see FindRoutes). Identical endpoints have none.
func (r *Resolver) FindRouteWithOneTransfer(from, to domain.Stop) (domain.Transfer, bool) {
	for x := range r.transfers(from, to) {
		return x, true
	}
	return domain.Transfer{}, false
}

// FindRoutesWithOneTransfer returns every one-transfer combination in
// enumeration order. The result is never nil.
func (r *Resolver) FindRoutesWithOneTransfer(from, to domain.Stop) []domain.Transfer {
	out := []domain.Transfer{}
	for x := range r.transfers(from, to) {
		out = append(out, x)
	}
	return out
}

// FindRoutes lazily enumerates every route option from one stop to another.
// All direct options come first, in train order. Transfer options follow:
// the outer loop is the first train in train order, then the transfer stop
// by ascending position on that train, then the second train in train order.
//
// Identical endpoints yield exactly one trivial option with no legs.
func (r *Resolver) FindRoutes(from, to domain.Stop) iter.Seq[domain.RouteOption] {
	return func(yield func(domain.RouteOption) bool) {
		if from.Equal(to) {
			yield(domain.TrivialOption(from))
			return
		}
		for t := range r.direct(from, to) {
			if !yield(domain.DirectOption(t, from, to)) {
				return
			}
		}
		for x := range r.transfers(from, to) {
			if !yield(domain.TransferOption(x, from, to)) {
				return
			}
		}
	}
}

// direct yields the trains serving from -> to in collection order.
func (r *Resolver) direct(from, to domain.Stop) iter.Seq[domain.Train] {
	return func(yield func(domain.Train) bool) {
		for _, t := range r.trains {
			if t.Serves(from, to) && !yield(t) {
				return
			}
		}
	}
}

// transfers yields (first, second, at) combinations where first carries the
// passenger from `from` to a later stop `at`, and a different train second
// carries them from `at` to `to`.
func (r *Resolver) transfers(from, to domain.Stop) iter.Seq[domain.Transfer] {
	return func(yield func(domain.Transfer) bool) {
		if from.Equal(to) {
			return
		}
		for _, first := range r.trains {
			i := first.StopIndex(from)
			if i < 0 {
				continue
			}
			for k := i + 1; k < first.StopCount(); k++ {
				at := first.StopAt(k)
				if at.Equal(to) {
					continue
				}
				for _, second := range r.trains {
					if second.Equal(first) || !second.Serves(at, to) {
						continue
					}
					if !yield(domain.Transfer{First: first, Second: second, At: at}) {
						return
					}
				}
			}
		}
	}
}

// Collect drains up to limit options from seq; limit <= 0 means no limit.
func Collect(seq iter.Seq[domain.RouteOption], limit int) []domain.RouteOption {
	out := []domain.RouteOption{}
	for o := range seq {
		out = append(out, o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
