package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trainline/internal/domain"
)

func TestNewStop_TrimsAndKeepsCasing(t *testing.T) {
	s, err := domain.NewStop("  Salt Lake City ")

	require.NoError(t, err)
	assert.Equal(t, "Salt Lake City", s.Name())
	assert.Equal(t, "salt lake city", s.Key())
	assert.Equal(t, "Salt Lake City", s.String())
}

func TestNewStop_EmptyRejected(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := domain.NewStop(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", raw)
	}
}

// TestStop_EqualIgnoresCaseAndWhitespace verifies that stops differing only
// by case or surrounding whitespace are the same station.
func TestStop_EqualIgnoresCaseAndWhitespace(t *testing.T) {
	a, err := domain.NewStop("Denver")
	require.NoError(t, err)
	b, err := domain.NewStop("  DENVER\t")
	require.NoError(t, err)
	c, err := domain.NewStop("Omaha")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
}

func TestNewStops_ReportsPosition(t *testing.T) {
	_, err := domain.NewStops("Chicago", " ", "Denver")

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "stop 1")
}

func TestStop_ZeroValue(t *testing.T) {
	var s domain.Stop
	assert.True(t, s.IsZero())

	s, err := domain.NewStop("Miami")
	require.NoError(t, err)
	assert.False(t, s.IsZero())
}
