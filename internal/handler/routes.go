package handler

import (
	"fmt"
	"net/http"
)

// defaultRouteLimit caps GET /routes when no limit is given.
const defaultRouteLimit = 20

// FindRoutes handles GET /routes?from=&to=&limit=.
// Options are listed direct first, then one-transfer, in train order.
// limit=0 lists every option. No route is an empty list, not an error.
func (s *Server) FindRoutes(w http.ResponseWriter, r *http.Request) {
	from, to, err := endpoints(r)
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	limit, err := optionalInt(r, "limit", defaultRouteLimit)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if limit < 0 {
		badRequest(w, fmt.Sprintf("limit must be >= 0, got %d", limit))
		return
	}

	opts := s.routes.Routes(from, to, limit)
	out := make([]RouteOption, len(opts))
	for i, o := range opts {
		out[i] = toRouteOption(o)
	}
	writeJSON(w, http.StatusOK, RouteOptions{From: from.Name(), To: to.Name(), Options: out})
}

// FindDirectRoutes handles GET /routes/direct?from=&to=&all=.
// Without all=true only the first serving train is returned.
func (s *Server) FindDirectRoutes(w http.ResponseWriter, r *http.Request) {
	from, to, err := endpoints(r)
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	all, err := optionalBool(r, "all")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, DirectRoutes{
		From:   from.Name(),
		To:     to.Name(),
		Trains: toTrains(s.routes.Direct(from, to, all)),
	})
}

// FindTransferRoutes handles GET /routes/transfer?from=&to=&all=.
func (s *Server) FindTransferRoutes(w http.ResponseWriter, r *http.Request) {
	from, to, err := endpoints(r)
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	all, err := optionalBool(r, "all")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	xs := s.routes.Transfer(from, to, all)
	out := make([]TransferRoute, len(xs))
	for i, x := range xs {
		out[i] = toTransferRoute(x, from, to)
	}
	writeJSON(w, http.StatusOK, TransferRoutes{From: from.Name(), To: to.Name(), Transfers: out})
}
