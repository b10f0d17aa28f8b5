// Package seed supplies the trains a registry starts with when its store has
// never been written: the built-in example network, or a YAML seed file.
//
// A seed file looks like:
//
//	trains:
//	  - id: Florida Flyer
//	    stops: [Miami, Orlando, Jacksonville]
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/trainline/internal/domain"
)

//go:embed defaults.yaml
var defaults []byte

// File is the YAML document shape.
type File struct {
	Trains []TrainYAML `yaml:"trains" validate:"dive"`
}

// TrainYAML is one train entry, stops in travel order.
type TrainYAML struct {
	ID    string   `yaml:"id" validate:"required"`
	Stops []string `yaml:"stops" validate:"required,min=2,dive,required"`
}

var validate = validator.New()

// Default returns the built-in example trains.
func Default() []domain.Train {
	trains, err := Parse(defaults)
	if err != nil {
		panic("seed: embedded defaults are invalid: " + err.Error())
	}
	return trains
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) ([]domain.Train, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed.LoadFile: %w", err)
	}
	trains, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed.LoadFile %s: %w", path, err)
	}
	return trains, nil
}

// Parse decodes a seed document. Unlike the persisted store, a seed file is
// authored by hand, so any invalid entry fails the whole parse: unknown
// keys, a train that does not validate, or an id used twice.
func Parse(data []byte) ([]domain.Train, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrValidation, err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	seen := make(map[string]struct{}, len(f.Trains))
	trains := make([]domain.Train, 0, len(f.Trains))
	for i, ty := range f.Trains {
		t, err := domain.ParseTrain(ty.ID, ty.Stops)
		if err != nil {
			return nil, fmt.Errorf("train %d: %w", i, err)
		}
		if _, dup := seen[t.Key()]; dup {
			return nil, fmt.Errorf("train %d: %w: %q", i, domain.ErrDuplicateID, t.ID())
		}
		seen[t.Key()] = struct{}{}
		trains = append(trains, t)
	}
	return trains, nil
}
