// Package config reads unbrowserify settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRegistry is the npm registry queried for dependency versions.
const DefaultRegistry = "https://registry.npmjs.org"

// Config holds the environment-provided defaults. Command-line flags
// override every field.
type Config struct {
	Registry    string
	Concurrency int
	Timeout     time.Duration
	ASCIIOnly   bool
	Debug       bool
}

// Load reads .env from the working directory if present, then the process
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Registry:    firstNonEmpty(strings.TrimSpace(getenv("UNBROWSERIFY_REGISTRY")), DefaultRegistry),
		Concurrency: runtime.GOMAXPROCS(0),
		Timeout:     10 * time.Second,
		ASCIIOnly:   true,
	}
	cfg.Registry = strings.TrimRight(cfg.Registry, "/")

	if raw := strings.TrimSpace(getenv("UNBROWSERIFY_CONCURRENCY")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("UNBROWSERIFY_CONCURRENCY: want a positive integer, got %q", raw)
		}
		cfg.Concurrency = n
	}
	if raw := strings.TrimSpace(getenv("UNBROWSERIFY_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("UNBROWSERIFY_TIMEOUT: want a positive duration, got %q", raw)
		}
		cfg.Timeout = d
	}

	var err error
	if cfg.ASCIIOnly, err = parseBool(getenv, "UNBROWSERIFY_ASCII_ONLY", cfg.ASCIIOnly); err != nil {
		return nil, err
	}
	if cfg.Debug, err = parseBool(getenv, "UNBROWSERIFY_DEBUG", cfg.Debug); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: want a boolean, got %q", key, raw)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
