package handler

import (
	"github.com/pkordes/trainline/internal/domain"
)

// TrainRequest is the body of POST /trains and PUT /trains/{id}. A train is
// given either as the ordered stops list, or as start, end, and optional
// intermediates; mixing both forms is rejected.
type TrainRequest struct {
	ID            string   `json:"id"`
	Stops         []string `json:"stops,omitempty"`
	Start         string   `json:"start,omitempty"`
	End           string   `json:"end,omitempty"`
	Intermediates []string `json:"intermediates,omitempty"`
}

// Train is the JSON representation of a domain.Train.
type Train struct {
	ID            string   `json:"id"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Intermediates []string `json:"intermediates"`
	Stops         []string `json:"stops"`
	StopCount     int      `json:"stopCount"`
	Description   string   `json:"description"`
}

// TrainList is the body of GET /trains.
type TrainList struct {
	Data  []Train `json:"data"`
	Total int     `json:"total"`
}

// StationTrains is the body of GET /stations/{name}/trains.
type StationTrains struct {
	Station string  `json:"station"`
	Trains  []Train `json:"trains"`
}

// StationNeighbors is the body of GET /stations/{name}/neighbors.
type StationNeighbors struct {
	Station   string   `json:"station"`
	Neighbors []string `json:"neighbors"`
}

// Leg is one ride within a route option.
type Leg struct {
	Train       string   `json:"train"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Stops       []string `json:"stops"`
	Description string   `json:"description"`
}

// RouteOption is one way of travelling between two stations.
type RouteOption struct {
	Kind        string  `json:"kind"`
	Transfers   int     `json:"transfers"`
	TransferAt  *string `json:"transferAt,omitempty"`
	Legs        []Leg   `json:"legs"`
	Description string  `json:"description"`
}

// RouteOptions is the body of GET /routes.
type RouteOptions struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Options []RouteOption `json:"options"`
}

// DirectRoutes is the body of GET /routes/direct.
type DirectRoutes struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Trains []Train `json:"trains"`
}

// TransferRoute is one (first train, transfer station, second train) combination.
type TransferRoute struct {
	First       string `json:"first"`
	At          string `json:"at"`
	Second      string `json:"second"`
	Description string `json:"description"`
}

// TransferRoutes is the body of GET /routes/transfer.
type TransferRoutes struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Transfers []TransferRoute `json:"transfers"`
}

// Skipped is one train an import did not register.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ImportResult is the body of POST /imports/gtfs.
type ImportResult struct {
	Added   []Train   `json:"added"`
	Skipped []Skipped `json:"skipped"`
}

// toDomain builds a validated domain.Train from the request.
func (req TrainRequest) toDomain() (domain.Train, error) {
	hasEndpoints := req.Start != "" || req.End != "" || len(req.Intermediates) > 0
	switch {
	case len(req.Stops) > 0 && hasEndpoints:
		return domain.Train{}, errMixedForms
	case hasEndpoints:
		start, err := domain.NewStop(req.Start)
		if err != nil {
			return domain.Train{}, err
		}
		end, err := domain.NewStop(req.End)
		if err != nil {
			return domain.Train{}, err
		}
		mids, err := domain.NewStops(req.Intermediates...)
		if err != nil {
			return domain.Train{}, err
		}
		return domain.NewTrainFromEndpoints(req.ID, start, end, mids)
	default:
		return domain.ParseTrain(req.ID, req.Stops)
	}
}

func toTrain(t domain.Train) Train {
	return Train{
		ID:            t.ID(),
		Start:         t.Start().Name(),
		End:           t.End().Name(),
		Intermediates: names(t.Intermediates()),
		Stops:         t.StopNames(),
		StopCount:     t.StopCount(),
		Description:   t.String(),
	}
}

func toTrains(ts []domain.Train) []Train {
	out := make([]Train, len(ts))
	for i, t := range ts {
		out[i] = toTrain(t)
	}
	return out
}

func toRouteOption(o domain.RouteOption) RouteOption {
	legs := make([]Leg, len(o.Legs))
	for i, l := range o.Legs {
		legs[i] = Leg{
			Train:       l.Train.ID(),
			From:        l.From.Name(),
			To:          l.To.Name(),
			Stops:       names(l.Stops()),
			Description: l.String(),
		}
	}
	out := RouteOption{
		Kind:        string(o.Kind),
		Transfers:   o.Transfers(),
		Legs:        legs,
		Description: o.String(),
	}
	if at, ok := o.TransferStop(); ok {
		name := at.Name()
		out.TransferAt = &name
	}
	return out
}

func toTransferRoute(x domain.Transfer, from, to domain.Stop) TransferRoute {
	return TransferRoute{
		First:       x.First.ID(),
		At:          x.At.Name(),
		Second:      x.Second.ID(),
		Description: domain.TransferOption(x, from, to).String(),
	}
}

func names(stops []domain.Stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.Name()
	}
	return out
}
