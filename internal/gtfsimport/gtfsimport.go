// Package gtfsimport derives trains from a GTFS static feed. Each GTFS route
// becomes one train whose stops are those of the route's longest scheduled
// trip, in stop_sequence order.
package gtfsimport

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/OneBusAway/go-gtfs"

	"github.com/pkordes/trainline/internal/domain"
	"github.com/pkordes/trainline/internal/ordering"
)

// Result is the outcome of converting a feed. Skipped routes carry the reason
// they could not become a train.
type Result struct {
	Trains  []domain.Train
	Skipped []domain.SkippedTrain
}

// Parse decodes a zipped GTFS static feed and converts it.
func Parse(b []byte) (Result, error) {
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return Result{}, fmt.Errorf("gtfsimport.Parse: %w: %v", domain.ErrValidation, err)
	}
	return FromStatic(static), nil
}

// FromStatic converts an already parsed feed. Routes are visited in feed
// order; a route yields no train when it has no trips, when its longest trip
// visits a stop twice, or when its id repeats an earlier route's id.
func FromStatic(static *gtfs.Static) Result {
	res := Result{Trains: []domain.Train{}, Skipped: []domain.SkippedTrain{}}
	if static == nil {
		return res
	}

	longest := longestTrips(static.Trips)
	seen := map[string]struct{}{}

	for _, r := range static.Routes {
		id := routeName(r)
		trip, ok := longest[r.Id]
		if !ok {
			res.Skipped = append(res.Skipped, domain.SkippedTrain{ID: id, Reason: "no scheduled trips"})
			continue
		}

		t, err := domain.ParseTrain(id, stopNames(trip))
		if err != nil {
			res.Skipped = append(res.Skipped, domain.SkippedTrain{ID: id, Reason: err.Error()})
			continue
		}
		if _, dup := seen[t.Key()]; dup {
			res.Skipped = append(res.Skipped, domain.SkippedTrain{ID: id, Reason: domain.ErrDuplicateID.Error()})
			continue
		}
		seen[t.Key()] = struct{}{}
		res.Trains = append(res.Trains, t)
	}
	return res
}

// longestTrips picks, per route id, the first trip with the most stop times.
func longestTrips(trips []gtfs.ScheduledTrip) map[string]*gtfs.ScheduledTrip {
	out := map[string]*gtfs.ScheduledTrip{}
	for i := range trips {
		t := &trips[i]
		if t.Route == nil || len(t.StopTimes) == 0 {
			continue
		}
		if cur, ok := out[t.Route.Id]; !ok || len(t.StopTimes) > len(cur.StopTimes) {
			out[t.Route.Id] = t
		}
	}
	return out
}

func stopNames(trip *gtfs.ScheduledTrip) []string {
	times := make([]gtfs.ScheduledStopTime, len(trip.StopTimes))
	copy(times, trip.StopTimes)
	ordering.Sort(times, func(a, b gtfs.ScheduledStopTime) int {
		return cmp.Compare(int64(a.StopSequence), int64(b.StopSequence))
	})

	names := make([]string, 0, len(times))
	for _, st := range times {
		if st.Stop == nil {
			continue
		}
		name := strings.TrimSpace(st.Stop.Name)
		if name == "" {
			name = st.Stop.Id
		}
		names = append(names, name)
	}
	return names
}

func routeName(r gtfs.Route) string {
	for _, s := range []string{r.ShortName, r.LongName, r.Id} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return r.Id
}
