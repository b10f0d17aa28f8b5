package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trainline/internal/domain"
)

// ListTrains handles GET /trains.
// Trains are returned in registry order.
func (s *Server) ListTrains(w http.ResponseWriter, _ *http.Request) {
	trains := toTrains(s.trains.All())
	writeJSON(w, http.StatusOK, TrainList{Data: trains, Total: len(trains)})
}

// CreateTrain handles POST /trains.
func (s *Server) CreateTrain(w http.ResponseWriter, r *http.Request) {
	t, ok := s.decodeTrain(w, r)
	if !ok {
		return
	}
	if err := s.trains.Add(r.Context(), t); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTrain(t))
}

// GetTrain handles GET /trains/{id}.
func (s *Server) GetTrain(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	t, ok := s.trains.FindByID(id)
	if !ok {
		notFound(w, fmt.Sprintf("train %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, toTrain(t))
}

// UpdateTrain handles PUT /trains/{id}. The body may rename the train; an
// omitted id keeps the current one.
func (s *Server) UpdateTrain(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBodyError(w, r, err)
		return
	}
	if req.ID == "" {
		req.ID = id
	}
	t, err := req.toDomain()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.trains.Update(r.Context(), id, t); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrain(t))
}

// DeleteTrain handles DELETE /trains/{id}.
func (s *Server) DeleteTrain(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	removed, err := s.trains.Remove(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !removed {
		notFound(w, fmt.Sprintf("train %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SortTrains handles POST /trains/sort?by=stops|start and returns the
// reordered list.
func (s *Server) SortTrains(w http.ResponseWriter, r *http.Request) {
	var by string
	if err := runtime.BindQueryParameter("form", true, true, "by", r.URL.Query(), &by); err != nil {
		badRequest(w, err.Error())
		return
	}

	var err error
	switch by {
	case "stops":
		err = s.trains.SortByStopCount(r.Context())
	case "start":
		err = s.trains.SortByStartStopName(r.Context())
	default:
		badRequest(w, fmt.Sprintf("unknown sort key %q, want stops or start", by))
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.ListTrains(w, r)
}

// SaveTrains handles POST /trains/save.
func (s *Server) SaveTrains(w http.ResponseWriter, r *http.Request) {
	if err := s.trains.Save(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReloadTrains handles POST /trains/reload and returns the reloaded list.
func (s *Server) ReloadTrains(w http.ResponseWriter, r *http.Request) {
	if err := s.trains.Reload(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.ListTrains(w, r)
}

// decodeTrain reads a TrainRequest body and builds the train, writing the
// error response itself when it cannot.
func (s *Server) decodeTrain(w http.ResponseWriter, r *http.Request) (domain.Train, bool) {
	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBodyError(w, r, err)
		return domain.Train{}, false
	}
	t, err := req.toDomain()
	if err != nil {
		s.writeServiceError(w, r, err)
		return domain.Train{}, false
	}
	return t, true
}

// writeBodyError reports a body that could not be decoded. An oversized body
// keeps its 413; everything else is 400.
func (s *Server) writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeServiceError(w, r, err)
		return
	}
	badRequest(w, "invalid request body: "+err.Error())
}
