// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables; the env tag names
// the variable each field comes from.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `env:"PORT" validate:"required,numeric"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" validate:"dive,url"`

	// StoreDriver selects where trains are persisted: file, postgres, or sqlite.
	StoreDriver string `env:"STORE_DRIVER" validate:"oneof=file postgres sqlite"`

	// TrainsFile is the flat file used by the file driver.
	TrainsFile string `env:"TRAINS_FILE" validate:"required_if=StoreDriver file"`

	// DatabaseURL is the Postgres connection string. Required for the postgres driver.
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `env:"SQLITE_PATH" validate:"required_if=StoreDriver sqlite"`

	// SeedFile optionally replaces the built-in example trains loaded on first run.
	SeedFile string `env:"SEED_FILE"`

	// RouteCacheSize is the number of cached route query results. 0 disables the cache.
	RouteCacheSize int `env:"ROUTE_CACHE_SIZE" validate:"gte=0"`

	// RateLimitRPS is the per-client request rate allowed on route queries. 0 disables limiting.
	RateLimitRPS int `env:"RATE_LIMIT_RPS" validate:"gte=0"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" validate:"gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report problems by environment variable name rather than Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming every variable that is missing or invalid.
func Load() (Config, error) {
	var problems []string

	intEnv := func(key string, fallback int64) int64 {
		raw := getEnv(key, "")
		if raw == "" {
			return fallback
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: not an integer: %q", key, raw))
			return fallback
		}
		return n
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
		TrainsFile:     getEnv("TRAINS_FILE", "trains.txt"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnv("SQLITE_PATH", "trainline.db"),
		SeedFile:       os.Getenv("SEED_FILE"),
		RouteCacheSize: int(intEnv("ROUTE_CACHE_SIZE", 1024)),
		RateLimitRPS:   int(intEnv("RATE_LIMIT_RPS", 50)),
		MaxBodyBytes:   intEnv("MAX_BODY_BYTES", 10<<20),
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Config{}, fmt.Errorf("config.Load: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.CORS_ORIGINS[0]"; drop the struct name.
	name := fe.Namespace()
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if":
		return name + ": required environment variable not set"
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", name, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %q check (value %v)", name, fe.Tag(), fe.Value())
	}
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
