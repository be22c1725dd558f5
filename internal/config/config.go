// Package config loads the detector and server settings.
//
// Settings come from a JSON file whose keys mirror the Config fields. Keys
// omitted from the file keep their defaults, so partial files are fine.
// Environment variables override the file:
//
//	BAHTINOV_MCP_CONFIG     path of the JSON file (when --config is not given)
//	BAHTINOV_MCP_LOG_LEVEL  zerolog level name: trace, debug, info, warn, error
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/bahtinov"
	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
)

// Environment variables read by ApplyEnv and PathFromEnv.
const (
	EnvConfigPath = "BAHTINOV_MCP_CONFIG"
	EnvLogLevel   = "BAHTINOV_MCP_LOG_LEVEL"
)

// maxFileSize caps the config file at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Default request limits. A 8192x8192 image fits; its default histogram
// (180 x 11584 cells) is far below the cell limit.
const (
	DefaultMaxImageSide      = 16384
	DefaultMaxImagePixels    = 1 << 26
	DefaultMaxHistogramCells = 1 << 26
)

// Config holds every tunable of the server.
type Config struct {
	// Hough parameter space
	MaxTheta          int `json:"max_theta"`
	NeighbourhoodSize int `json:"neighbourhood_size"`

	// DefaultThreshold is the vote threshold used when a request does not
	// give one. 0 selects ThresholdFraction of the strongest peak.
	DefaultThreshold int `json:"default_threshold"`

	// ThresholdFraction is the share of the strongest peak used as the
	// automatic threshold, in (0, 1].
	ThresholdFraction float64 `json:"threshold_fraction"`

	// Request limits. Images with a longer side or a larger area are
	// refused before any buffer is allocated; so are inputs whose Hough
	// histogram would hold more than MaxHistogramCells cells.
	MaxImageSide      int `json:"max_image_side"`
	MaxImagePixels    int `json:"max_image_pixels"`
	MaxHistogramCells int `json:"max_histogram_cells"`

	// Logging
	LogLevel   string `json:"log_level"`
	LogConsole bool   `json:"log_console"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxTheta:          hough.DefaultMaxTheta,
		NeighbourhoodSize: hough.DefaultNeighbourhoodSize,
		DefaultThreshold:  0,
		ThresholdFraction: bahtinov.DefaultThresholdFraction,
		MaxImageSide:      DefaultMaxImageSide,
		MaxImagePixels:    DefaultMaxImagePixels,
		MaxHistogramCells: DefaultMaxHistogramCells,
		LogLevel:          zerolog.LevelInfoValue,
		LogConsole:        false,
	}
}

// Load reads a JSON config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// PathFromEnv returns the config path named by BAHTINOV_MCP_CONFIG.
func PathFromEnv() string {
	return os.Getenv(EnvConfigPath)
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		if _, err := zerolog.ParseLevel(level); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
		c.LogLevel = level
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if err := c.Hough().Validate(); err != nil {
		return err
	}
	if c.DefaultThreshold < 0 {
		return fmt.Errorf("default_threshold must not be negative, got %d", c.DefaultThreshold)
	}
	if c.ThresholdFraction <= 0 || c.ThresholdFraction > 1 {
		return fmt.Errorf("threshold_fraction must be in (0, 1], got %f", c.ThresholdFraction)
	}
	if c.MaxImageSide <= 0 || c.MaxImagePixels <= 0 || c.MaxHistogramCells <= 0 {
		return fmt.Errorf("request limits must be positive, got side %d, pixels %d, cells %d",
			c.MaxImageSide, c.MaxImagePixels, c.MaxHistogramCells)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// CheckImageSize reports whether a width x height request image is within
// the limits. The sides are checked first so the area cannot overflow.
func (c *Config) CheckImageSize(width, height int) error {
	if width > c.MaxImageSide || height > c.MaxImageSide {
		return fmt.Errorf("image %dx%d too large: sides are limited to %d", width, height, c.MaxImageSide)
	}
	if width*height > c.MaxImagePixels {
		return fmt.Errorf("image %dx%d too large: area is limited to %d pixels", width, height, c.MaxImagePixels)
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if level == zerolog.NoLevel {
		return zerolog.NoLevel, errors.New("log_level must name a level")
	}
	return level, nil
}

// Hough returns the accumulator settings.
func (c *Config) Hough() hough.Config {
	return hough.Config{
		MaxTheta:          c.MaxTheta,
		NeighbourhoodSize: c.NeighbourhoodSize,
	}
}
