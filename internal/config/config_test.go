package config

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

func env(kv map[string]string) func(string) string {
	return func(key string) string { return kv[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := FromEnv(env(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Registry != DefaultRegistry {
		t.Errorf("Registry = %q, want %q", cfg.Registry, DefaultRegistry)
	}
	if cfg.Concurrency != runtime.GOMAXPROCS(0) {
		t.Errorf("Concurrency = %d, want GOMAXPROCS", cfg.Concurrency)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if !cfg.ASCIIOnly {
		t.Error("ASCIIOnly should default to true")
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := FromEnv(env(map[string]string{
		"UNBROWSERIFY_REGISTRY":    "http://localhost:4873/",
		"UNBROWSERIFY_CONCURRENCY": "3",
		"UNBROWSERIFY_TIMEOUT":     "250ms",
		"UNBROWSERIFY_ASCII_ONLY":  "false",
		"UNBROWSERIFY_DEBUG":       "1",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Registry != "http://localhost:4873" {
		t.Errorf("Registry = %q", cfg.Registry)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Errorf("Timeout = %v, want 250ms", cfg.Timeout)
	}
	if cfg.ASCIIOnly {
		t.Error("ASCIIOnly should be false")
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestFromEnvInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key, value string
	}{
		{"UNBROWSERIFY_CONCURRENCY", "zero"},
		{"UNBROWSERIFY_CONCURRENCY", "0"},
		{"UNBROWSERIFY_TIMEOUT", "soon"},
		{"UNBROWSERIFY_ASCII_ONLY", "maybe"},
		{"UNBROWSERIFY_DEBUG", "yes please"},
	}
	for _, tt := range tests {
		_, err := FromEnv(env(map[string]string{tt.key: tt.value}))
		if err == nil {
			t.Errorf("%s=%q: expected error", tt.key, tt.value)
			continue
		}
		if !strings.Contains(err.Error(), tt.key) {
			t.Errorf("%s=%q: error %q does not name the variable", tt.key, tt.value, err)
		}
	}
}
