// Package config loads service configuration from defaults, an optional TOML
// file, and PAGESIFT_* environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all service settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`
	// DataDir holds the history database.
	DataDir string `toml:"data_dir"`
	// UploadDir stores uploaded input files.
	UploadDir string `toml:"upload_dir"`
	// TempDir is the parent for per-call rasterization scratch space.
	// Empty means the system default.
	TempDir string `toml:"temp_dir"`

	OCR    OCRConfig    `toml:"ocr"`
	Raster RasterConfig `toml:"raster"`
	Limits LimitsConfig `toml:"limits"`
}

// OCRConfig configures the recognition engine.
type OCRConfig struct {
	// Languages are trained-data hints passed to the engine.
	Languages []string `toml:"languages"`
	// DPI is the assumed input resolution; zero means unknown.
	DPI int `toml:"dpi"`
}

// RasterConfig configures PDF rasterization.
type RasterConfig struct {
	// Binary is the pdftoppm executable.
	Binary string `toml:"binary"`
	// DPI is the page render resolution.
	DPI int `toml:"dpi"`
}

// LimitsConfig bounds inbound traffic.
type LimitsConfig struct {
	// MaxUploadBytes caps a single uploaded file.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`
	// RatePerSecond and RateBurst shape the process-endpoint rate limiter.
	RatePerSecond float64 `toml:"rate_per_second"`
	RateBurst     int     `toml:"rate_burst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:      ":8000",
		DataDir:   "data",
		UploadDir: "uploads",
		OCR: OCRConfig{
			Languages: []string{"eng"},
		},
		Raster: RasterConfig{
			Binary: "pdftoppm",
			DPI:    200,
		},
		Limits: LimitsConfig{
			MaxUploadBytes: 50 << 20,
			RatePerSecond:  5,
			RateBurst:      10,
		},
	}
}

// Load builds the effective configuration. path may be empty, in which case
// only defaults and environment overrides apply; a named file that does not
// exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PAGESIFT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PAGESIFT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PAGESIFT_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("PAGESIFT_TEMP_DIR"); v != "" {
		cfg.TempDir = v
	}
	if v := os.Getenv("PAGESIFT_OCR_LANGUAGES"); v != "" {
		cfg.OCR.Languages = splitList(v)
	}
	if v := os.Getenv("PAGESIFT_OCR_DPI"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OCR.DPI = n
		}
	}
	if v := os.Getenv("PAGESIFT_RASTER_BINARY"); v != "" {
		cfg.Raster.Binary = v
	}
	if v := os.Getenv("PAGESIFT_RASTER_DPI"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Raster.DPI = n
		}
	}
	if v := os.Getenv("PAGESIFT_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxUploadBytes = n
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	if c.Raster.DPI <= 0 {
		return errors.New("raster dpi must be positive")
	}
	return nil
}

// EnsureDirs creates the data and upload directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.UploadDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the history database location under DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "history.db")
}
