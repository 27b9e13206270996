package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Chunking.MaxChunkSize != 2000 {
		t.Errorf("max_chunk_size = %d, want 2000", cfg.Chunking.MaxChunkSize)
	}
	if !cfg.Chunking.EnableFallback {
		t.Error("enable_fallback should default to true")
	}
	if cfg.Guard.ErrorThreshold != 5 {
		t.Errorf("error_threshold = %d, want 5", cfg.Guard.ErrorThreshold)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("CSH_MAX_CHUNK_SIZE", "4000")
	os.Setenv("CSH_LOG_LEVEL", "debug")
	os.Setenv("CSH_FORCE_STRATEGY", "universal_line")
	defer func() {
		os.Unsetenv("CSH_MAX_CHUNK_SIZE")
		os.Unsetenv("CSH_LOG_LEVEL")
		os.Unsetenv("CSH_FORCE_STRATEGY")
	}()

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Chunking.MaxChunkSize != 4000 {
		t.Errorf("max_chunk_size = %d, want 4000", cfg.Chunking.MaxChunkSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Chunking.ForceStrategy != "universal_line" {
		t.Errorf("force_strategy = %q", cfg.Chunking.ForceStrategy)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
chunking:
  max_chunk_size: 3000
  min_chunk_size: 10
guard:
  memory_limit_mb: 256
log:
  level: warn
  format: json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Chunking.MaxChunkSize != 3000 {
		t.Errorf("max_chunk_size = %d, want 3000", cfg.Chunking.MaxChunkSize)
	}
	if cfg.Guard.MemoryLimitMB != 256 {
		t.Errorf("memory_limit_mb = %d, want 256", cfg.Guard.MemoryLimitMB)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q, want json", cfg.Log.Format)
	}

	// File values not set keep their defaults.
	if cfg.Chunking.OverlapSize != 200 {
		t.Errorf("overlap_size = %d, want 200", cfg.Chunking.OverlapSize)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	content := "chunking:\n  max_chunk_size: 3000\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("CSH_MAX_CHUNK_SIZE", "5000")
	defer os.Unsetenv("CSH_MAX_CHUNK_SIZE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunking.MaxChunkSize != 5000 {
		t.Errorf("max_chunk_size = %d, want 5000 (env beats file)", cfg.Chunking.MaxChunkSize)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min above max", func(c *Config) { c.Chunking.MinChunkSize = 9000 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero cache", func(c *Config) { c.Cache.Size = 0 }},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOptionsMapping(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Chunking.TierTimeoutMS = 250

	opts := cfg.Options()
	if opts.MaxChunkSize != cfg.Chunking.MaxChunkSize {
		t.Errorf("options max size = %d", opts.MaxChunkSize)
	}
	if opts.TierTimeout.Milliseconds() != 250 {
		t.Errorf("tier timeout = %v", opts.TierTimeout)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("mapped options should validate: %v", err)
	}
}
