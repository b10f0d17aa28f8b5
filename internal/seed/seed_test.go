package seed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trainline/internal/domain"
	"github.com/pkordes/trainline/internal/seed"
)

func TestDefault(t *testing.T) {
	trains := seed.Default()

	require.Len(t, trains, 5)
	ids := make([]string, len(trains))
	for i, tr := range trains {
		ids[i] = tr.ID()
	}
	assert.Equal(t, []string{
		"Express 101", "West Coast Line", "Cross Country 45", "Texas Eagle", "Florida Flyer",
	}, ids)
	assert.Equal(t, []string{"Chicago", "Omaha", "Denver", "Salt Lake City"}, trains[2].StopNames())
	assert.Equal(t, 3, trains[4].StopCount())
}

func TestParse(t *testing.T) {
	data := []byte(`
trains:
  - id: Shuttle
    stops:
      - Union Station
      - Airport
`)
	trains, err := seed.Parse(data)

	require.NoError(t, err)
	require.Len(t, trains, 1)
	assert.Equal(t, "Shuttle", trains[0].ID())
	assert.Equal(t, []string{"Union Station", "Airport"}, trains[0].StopNames())
}

func TestParse_Empty(t *testing.T) {
	trains, err := seed.Parse(nil)

	require.NoError(t, err)
	assert.Empty(t, trains)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "missing id", doc: "trains:\n  - stops: [A, B]\n", wantErr: domain.ErrValidation},
		{name: "one stop", doc: "trains:\n  - id: T\n    stops: [A]\n", wantErr: domain.ErrValidation},
		{name: "blank stop", doc: "trains:\n  - id: T\n    stops: [A, '']\n", wantErr: domain.ErrValidation},
		{name: "repeated stop", doc: "trains:\n  - id: T\n    stops: [A, B, a]\n", wantErr: domain.ErrValidation},
		{name: "unknown key", doc: "trains:\n  - id: T\n    route: [A, B]\n", wantErr: domain.ErrValidation},
		{name: "not yaml", doc: "trains: [", wantErr: domain.ErrValidation},
		{
			name:    "duplicate id",
			doc:     "trains:\n  - id: T\n    stops: [A, B]\n  - id: t\n    stops: [C, D]\n",
			wantErr: domain.ErrDuplicateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.Parse([]byte(tt.doc))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trains:\n  - id: X1\n    stops: [P, Q, R]\n"), 0o644))

	trains, err := seed.LoadFile(path)

	require.NoError(t, err)
	require.Len(t, trains, 1)
	assert.Equal(t, "X1", trains[0].ID())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := seed.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
}
