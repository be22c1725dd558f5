package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	if diff := cmp.Diff(hough.DefaultConfig(), cfg.Hough()); diff != "" {
		t.Errorf("Hough() mismatch (-want +got):\n%s", diff)
	}
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"neighbourhood_size": 2, "log_level": "debug"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.NeighbourhoodSize = 2
	want.LogLevel = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"wrong extension", "tuning.yaml", `{}`},
		{"bad json", "tuning.json", `{"max_theta": `},
		{"invalid max theta", "tuning.json", `{"max_theta": 0}`},
		{"negative neighbourhood", "tuning.json", `{"neighbourhood_size": -1}`},
		{"fraction out of range", "tuning.json", `{"threshold_fraction": 1.5}`},
		{"negative threshold", "tuning.json", `{"default_threshold": -3}`},
		{"unknown level", "tuning.json", `{"log_level": "loud"}`},
		{"zero image side", "tuning.json", `{"max_image_side": 0}`},
		{"negative histogram cells", "tuning.json", `{"max_histogram_cells": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestCheckImageSize(t *testing.T) {
	cfg := Default()

	assert.NoError(t, cfg.CheckImageSize(8192, 8192))
	assert.NoError(t, cfg.CheckImageSize(DefaultMaxImageSide, DefaultMaxImagePixels/DefaultMaxImageSide))
	assert.Error(t, cfg.CheckImageSize(DefaultMaxImageSide+1, 1))
	assert.Error(t, cfg.CheckImageSize(1, DefaultMaxImageSide+1))
	assert.Error(t, cfg.CheckImageSize(DefaultMaxImageSide, DefaultMaxImageSide))
	// 2^32 x 2^32 wraps to 0 in 64-bit arithmetic; the side check catches it.
	assert.Error(t, cfg.CheckImageSize(1<<32, 1<<32))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "trace")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.TraceLevel, level)
}

func TestApplyEnv_InvalidLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "loud")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnv())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/bahtinov.json")
	assert.Equal(t, "/etc/bahtinov.json", PathFromEnv())
}
