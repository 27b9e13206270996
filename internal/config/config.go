// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/kkkqkx123/code-search-helper/internal/chunk"
)

// Config holds all application configuration.
type Config struct {
	// Chunking configuration
	Chunking ChunkingConfig `yaml:"chunking"`

	// Guard configuration
	Guard GuardConfig `yaml:"guard"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Scan configuration (CLI file walking)
	Scan ScanConfig `yaml:"scan"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ChunkingConfig holds the chunk sizing and strategy settings.
type ChunkingConfig struct {
	MaxChunkSize     int     `envconfig:"CSH_MAX_CHUNK_SIZE" yaml:"max_chunk_size"`
	MinChunkSize     int     `envconfig:"CSH_MIN_CHUNK_SIZE" yaml:"min_chunk_size"`
	OverlapSize      int     `envconfig:"CSH_OVERLAP_SIZE" yaml:"overlap_size"`
	MaxOverlapRatio  float64 `envconfig:"CSH_MAX_OVERLAP_RATIO" yaml:"max_overlap_ratio"`
	SmallFileLines   int     `envconfig:"CSH_SMALL_FILE_LINES" yaml:"small_file_lines"`
	MinLinesPerChunk int     `envconfig:"CSH_MIN_LINES_PER_CHUNK" yaml:"min_lines_per_chunk"`
	MaxLinesPerChunk int     `envconfig:"CSH_MAX_LINES_PER_CHUNK" yaml:"max_lines_per_chunk"`
	ForceStrategy    string  `envconfig:"CSH_FORCE_STRATEGY" yaml:"force_strategy"`
	EnableFallback   bool    `envconfig:"CSH_ENABLE_FALLBACK" yaml:"enable_fallback"`
	TierTimeoutMS    int     `envconfig:"CSH_TIER_TIMEOUT_MS" yaml:"tier_timeout_ms"`
}

// GuardConfig holds the memory and error budget settings.
type GuardConfig struct {
	MemoryLimitMB        int `envconfig:"CSH_MEMORY_LIMIT_MB" yaml:"memory_limit_mb"`
	MemoryCheckIntervalS int `envconfig:"CSH_MEMORY_CHECK_INTERVAL_S" yaml:"memory_check_interval_s"`
	ErrorThreshold       int `envconfig:"CSH_ERROR_THRESHOLD" yaml:"error_threshold"`
	ErrorResetWindowMS   int `envconfig:"CSH_ERROR_RESET_WINDOW_MS" yaml:"error_reset_window_ms"`
}

// CacheConfig holds parse cache settings.
type CacheConfig struct {
	Size int `envconfig:"CSH_CACHE_SIZE" yaml:"size"`
}

// ScanConfig holds the CLI directory walking settings.
type ScanConfig struct {
	Include []string `envconfig:"CSH_INCLUDE" yaml:"include"`
	Exclude []string `envconfig:"CSH_EXCLUDE" yaml:"exclude"`
	Workers int      `envconfig:"CSH_WORKERS" yaml:"workers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"CSH_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"CSH_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	def := chunk.DefaultOptions()

	cfg.Chunking = ChunkingConfig{
		MaxChunkSize:     def.MaxChunkSize,
		MinChunkSize:     def.MinChunkSize,
		OverlapSize:      def.OverlapSize,
		MaxOverlapRatio:  def.MaxOverlapRatio,
		SmallFileLines:   def.SmallFileLines,
		MinLinesPerChunk: def.MinLinesPerChunk,
		MaxLinesPerChunk: def.MaxLinesPerChunk,
		EnableFallback:   true,
	}

	cfg.Guard = GuardConfig{
		MemoryLimitMB:        def.MemoryLimitMB,
		MemoryCheckIntervalS: int(def.MemoryCheckInterval / time.Second),
		ErrorThreshold:       def.ErrorThreshold,
		ErrorResetWindowMS:   int(def.ErrorResetWindow / time.Millisecond),
	}

	cfg.Cache = CacheConfig{
		Size: 128,
	}

	cfg.Scan = ScanConfig{
		Include: []string{"**/*"},
		Exclude: []string{"**/.git/**", "**/node_modules/**", "**/vendor/**"},
		Workers: 4,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Options().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Cache.Size < 1 {
		errs = append(errs, "cache size must be positive")
	}
	if c.Scan.Workers < 1 {
		errs = append(errs, "scan workers must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Options maps the configuration onto engine options.
func (c *Config) Options() chunk.Options {
	return chunk.Options{
		MaxChunkSize:        c.Chunking.MaxChunkSize,
		MinChunkSize:        c.Chunking.MinChunkSize,
		OverlapSize:         c.Chunking.OverlapSize,
		MaxOverlapRatio:     c.Chunking.MaxOverlapRatio,
		MemoryLimitMB:       c.Guard.MemoryLimitMB,
		MemoryCheckInterval: time.Duration(c.Guard.MemoryCheckIntervalS) * time.Second,
		ErrorThreshold:      c.Guard.ErrorThreshold,
		ErrorResetWindow:    time.Duration(c.Guard.ErrorResetWindowMS) * time.Millisecond,
		SmallFileLines:      c.Chunking.SmallFileLines,
		MinLinesPerChunk:    c.Chunking.MinLinesPerChunk,
		MaxLinesPerChunk:    c.Chunking.MaxLinesPerChunk,
		TierTimeout:         time.Duration(c.Chunking.TierTimeoutMS) * time.Millisecond,
		ForceStrategy:       c.Chunking.ForceStrategy,
		EnableFallback:      c.Chunking.EnableFallback,
	}
}
