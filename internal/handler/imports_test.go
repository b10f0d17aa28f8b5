package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/trainline/internal/handler"
)

func TestImportGTFS_400_EmptyBody(t *testing.T) {
	rec := serve(newSeededHandler(t), http.MethodPost, "/imports/gtfs", bytes.NewBuffer(nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
}

func TestImportGTFS_422_NotAFeed(t *testing.T) {
	h := newSeededHandler(t)

	rec := serve(h, http.MethodPost, "/imports/gtfs", bytes.NewBufferString("definitely not a zip archive"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))

	health := decode[handler.HealthResponse](t, serve(h, http.MethodGet, "/healthz", nil))
	assert.Equal(t, 5, health.Trains)
}
