package handler

import (
	"fmt"
	"net/http"
)

// ListStationTrains handles GET /stations/{name}/trains.
// An unknown station is 404; a known one always has at least one train.
func (s *Server) ListStationTrains(w http.ResponseWriter, r *http.Request) {
	stop, err := pathStop(r, "name")
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	if !s.trains.HasStation(stop) {
		notFound(w, fmt.Sprintf("station %q not found", stop.Name()))
		return
	}
	writeJSON(w, http.StatusOK, StationTrains{
		Station: stop.Name(),
		Trains:  toTrains(s.trains.FindByStop(stop)),
	})
}

// ListStationNeighbors handles GET /stations/{name}/neighbors.
func (s *Server) ListStationNeighbors(w http.ResponseWriter, r *http.Request) {
	stop, err := pathStop(r, "name")
	if err != nil {
		s.writeParamError(w, r, err)
		return
	}
	if !s.trains.HasStation(stop) {
		notFound(w, fmt.Sprintf("station %q not found", stop.Name()))
		return
	}
	writeJSON(w, http.StatusOK, StationNeighbors{
		Station:   stop.Name(),
		Neighbors: names(s.trains.Neighbors(stop)),
	})
}
