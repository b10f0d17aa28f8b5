package domain

import (
	"fmt"
	"strings"
)

// Stop is a normalized station identity.
// Name keeps the casing it was created with for display; identity is the
// case-folded Key, so "Denver" and "  denver " are the same stop.
// Stop values cannot be used as map keys directly; key maps by Key().
type Stop struct {
	name string
	key  string
}

// NewStop trims raw and returns the resulting Stop.
// Returns ErrValidation if nothing is left after trimming.
func NewStop(raw string) (Stop, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Stop{}, fmt.Errorf("%w: stop name is required", ErrValidation)
	}
	return Stop{name: name, key: strings.ToLower(name)}, nil
}

// NewStops builds one Stop per name, failing on the first invalid one.
func NewStops(names ...string) ([]Stop, error) {
	stops := make([]Stop, 0, len(names))
	for i, n := range names {
		s, err := NewStop(n)
		if err != nil {
			return nil, fmt.Errorf("stop %d: %w", i, err)
		}
		stops = append(stops, s)
	}
	return stops, nil
}

// Name returns the trimmed name with its original casing.
func (s Stop) Name() string { return s.name }

// Key returns the case-folded identity of the stop.
func (s Stop) Key() string { return s.key }

// Equal reports whether s and o name the same station.
func (s Stop) Equal(o Stop) bool { return s.key == o.key }

// IsZero reports whether s is the zero Stop, i.e. was never constructed.
func (s Stop) IsZero() bool { return s.key == "" }

func (s Stop) String() string { return s.name }
