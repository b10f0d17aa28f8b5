package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trainline/internal/domain"
	"github.com/pkordes/trainline/internal/handler"
	"github.com/pkordes/trainline/internal/service"
)

// mockRegistrar is a test double for handler.TrainRegistrar.
// Set only the method fields your test needs; the rest return zero values.
type mockRegistrar struct {
	all        func() []domain.Train
	findByID   func(id string) (domain.Train, bool)
	findByStop func(s domain.Stop) []domain.Train
	add        func(ctx context.Context, t domain.Train) error
	update     func(ctx context.Context, oldID string, t domain.Train) error
	remove     func(ctx context.Context, id string) (bool, error)
	importFn   func(ctx context.Context, trains []domain.Train) ([]domain.Train, []domain.SkippedTrain, error)
	sortStops  func(ctx context.Context) error
	sortStart  func(ctx context.Context) error
	save       func(ctx context.Context) error
	reload     func(ctx context.Context) error
	neighbors  func(s domain.Stop) []domain.Stop
	hasStation func(s domain.Stop) bool
}

func (m *mockRegistrar) All() []domain.Train {
	if m.all == nil {
		return []domain.Train{}
	}
	return m.all()
}
func (m *mockRegistrar) FindByID(id string) (domain.Train, bool) {
	if m.findByID == nil {
		return domain.Train{}, false
	}
	return m.findByID(id)
}
func (m *mockRegistrar) FindByStop(s domain.Stop) []domain.Train {
	if m.findByStop == nil {
		return []domain.Train{}
	}
	return m.findByStop(s)
}
func (m *mockRegistrar) Add(ctx context.Context, t domain.Train) error {
	return m.add(ctx, t)
}
func (m *mockRegistrar) Update(ctx context.Context, oldID string, t domain.Train) error {
	return m.update(ctx, oldID, t)
}
func (m *mockRegistrar) Remove(ctx context.Context, id string) (bool, error) {
	return m.remove(ctx, id)
}
func (m *mockRegistrar) Import(ctx context.Context, trains []domain.Train) ([]domain.Train, []domain.SkippedTrain, error) {
	return m.importFn(ctx, trains)
}
func (m *mockRegistrar) SortByStopCount(ctx context.Context) error     { return m.sortStops(ctx) }
func (m *mockRegistrar) SortByStartStopName(ctx context.Context) error { return m.sortStart(ctx) }
func (m *mockRegistrar) Save(ctx context.Context) error                { return m.save(ctx) }
func (m *mockRegistrar) Reload(ctx context.Context) error              { return m.reload(ctx) }
func (m *mockRegistrar) Neighbors(s domain.Stop) []domain.Stop {
	if m.neighbors == nil {
		return []domain.Stop{}
	}
	return m.neighbors(s)
}
func (m *mockRegistrar) HasStation(s domain.Stop) bool {
	if m.hasStation == nil {
		return false
	}
	return m.hasStation(s)
}

// compile-time check: mockRegistrar must satisfy handler.TrainRegistrar.
var _ handler.TrainRegistrar = (*mockRegistrar)(nil)

// ---- helpers ---------------------------------------------------------------

// newRegistry returns an in-memory registry loaded with seeds, or with the
// built-in example trains when seeds is nil.
func newRegistry(t *testing.T, seeds []domain.Train) *service.TrainRegistry {
	t.Helper()
	var opts []service.Option
	if seeds != nil {
		opts = append(opts, service.WithSeeds(seeds))
	}
	reg := service.NewTrainRegistry(nil, opts...)
	require.NoError(t, reg.Load(context.Background()))
	return reg
}

// newHTTPHandler wires a Server over reg the way main.go does.
func newHTTPHandler(reg *service.TrainRegistry) http.Handler {
	routes := service.NewRouteService(reg, 16, nil, nil)
	return handler.NewServer(reg, routes).Handler()
}

func newSeededHandler(t *testing.T) http.Handler {
	t.Helper()
	return newHTTPHandler(newRegistry(t, nil))
}

// newMockHandler serves the mock registrar; route queries run against an
// empty network.
func newMockHandler(t *testing.T, m *mockRegistrar) http.Handler {
	t.Helper()
	routes := service.NewRouteService(newRegistry(t, []domain.Train{}), 0, nil, nil)
	return handler.NewServer(m, routes).Handler()
}

func mustTrain(t *testing.T, id string, stops ...string) domain.Train {
	t.Helper()
	tr, err := domain.ParseTrain(id, stops)
	require.NoError(t, err)
	return tr
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}
