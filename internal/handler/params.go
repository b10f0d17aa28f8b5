package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trainline/internal/domain"
)

var errMixedForms = fmt.Errorf("%w: give either stops or start/end/intermediates, not both", domain.ErrValidation)

// pathParam binds a required simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

// pathStop binds a path parameter and builds a Stop from it.
func pathStop(r *http.Request, name string) (domain.Stop, error) {
	raw, err := pathParam(r, name)
	if err != nil {
		return domain.Stop{}, err
	}
	return domain.NewStop(raw)
}

// endpoints binds the required from and to query parameters as Stops.
func endpoints(r *http.Request) (domain.Stop, domain.Stop, error) {
	var from, to string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "from", q, &from); err != nil {
		return domain.Stop{}, domain.Stop{}, err
	}
	if err := runtime.BindQueryParameter("form", true, true, "to", q, &to); err != nil {
		return domain.Stop{}, domain.Stop{}, err
	}

	fromStop, err := domain.NewStop(from)
	if err != nil {
		return domain.Stop{}, domain.Stop{}, fmt.Errorf("from: %w", err)
	}
	toStop, err := domain.NewStop(to)
	if err != nil {
		return domain.Stop{}, domain.Stop{}, fmt.Errorf("to: %w", err)
	}
	return fromStop, toStop, nil
}

// optionalBool binds an optional boolean query parameter, false when absent.
func optionalBool(r *http.Request, name string) (bool, error) {
	var v *bool
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return false, err
	}
	return v != nil && *v, nil
}

// optionalInt binds an optional integer query parameter.
func optionalInt(r *http.Request, name string, fallback int) (int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return 0, err
	}
	if v == nil {
		return fallback, nil
	}
	return *v, nil
}

// writeParamError reports a binding failure: a validation failure on a
// well-formed parameter is 422, anything else 400.
func (s *Server) writeParamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrValidation) {
		s.writeServiceError(w, r, err)
		return
	}
	badRequest(w, err.Error())
}
