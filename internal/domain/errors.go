package domain

import "errors"

// ErrNotFound is returned when an id-addressed operation names a train that
// does not exist. Route queries never return it; they return empty results.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a Stop or Train cannot be constructed from
// its input (empty name, too few stops, a stop repeated within one route).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDuplicateID is returned by the registry when a train id collides,
// case-insensitively, with a train that is already registered.
// Handlers should map this to HTTP 409 Conflict.
var ErrDuplicateID = errors.New("duplicate id")

// ErrPersistence wraps I/O failures while saving or loading the train
// collection. The in-memory registry is never rolled back because of it.
var ErrPersistence = errors.New("persistence failure")
