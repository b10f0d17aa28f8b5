package handler

import (
	"io"
	"net/http"

	"github.com/pkordes/trainline/internal/gtfsimport"
)

// ImportGTFS handles POST /imports/gtfs. The body is a GTFS static zip; one
// train is registered per GTFS route. Routes the feed cannot describe as a
// train and trains the registry rejects are both reported as skipped.
func (s *Server) ImportGTFS(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeBodyError(w, r, err)
		return
	}
	if len(body) == 0 {
		badRequest(w, "request body must be a GTFS zip archive")
		return
	}

	feed, err := gtfsimport.Parse(body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	added, skipped, err := s.trains.Import(r.Context(), feed.Trains)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := ImportResult{Added: toTrains(added), Skipped: make([]Skipped, 0, len(feed.Skipped)+len(skipped))}
	for _, sk := range feed.Skipped {
		out.Skipped = append(out.Skipped, Skipped{ID: sk.ID, Reason: sk.Reason})
	}
	for _, sk := range skipped {
		out.Skipped = append(out.Skipped, Skipped{ID: sk.ID, Reason: sk.Reason})
	}
	writeJSON(w, http.StatusOK, out)
}
