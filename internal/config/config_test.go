package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
workers: 8
log_level: debug
store_path: /tmp/index.db
fail_on_compiler_errors: false
`))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Workers:              8,
		LogLevel:             "debug",
		StorePath:            "/tmp/index.db",
		FailOnCompilerErrors: false,
	}, cfg)
}

func TestParse_KeepsDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("workers: 2\n"))
	require.NoError(t, err)

	want := Default()
	want.Workers = 2
	assert.Equal(t, want, cfg)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown key", "worker: 3\n", "field worker not found"},
		{"wrong type", "workers: many\n", "failed to parse YAML"},
		{"negative workers", "workers: -1\n", "workers"},
		{"too many workers", "workers: 5000\n", "workers"},
		{"unknown level", "log_level: verbose\n", "log_level"},
		{"empty store", "store_path: \"\"\n", "store_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solir.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	} {
		assert.Equal(t, want, Config{LogLevel: level}.Level(), level)
	}
}

func TestDefault_Valid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
