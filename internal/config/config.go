// Package config loads solir settings from YAML.
//
// Decoding is strict: unknown keys are rejected. The decoded values are
// then checked against an embedded CUE schema, so range and enum errors
// are reported with the offending field path.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Config holds the settings shared by every solir command.
type Config struct {
	// Workers bounds concurrent file construction. 0 means GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// StorePath is the SQLite index location.
	StorePath string `yaml:"store_path" json:"store_path"`

	// FailOnCompilerErrors refuses compiler output that carries
	// error-severity messages.
	FailOnCompilerErrors bool `yaml:"fail_on_compiler_errors" json:"fail_on_compiler_errors"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		LogLevel:             "info",
		StorePath:            "solir.db",
		FailOnCompilerErrors: true,
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Keys missing
// from the input keep their default.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}
	return nil
}

// Level maps LogLevel to a slog level. Unknown values map to info.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
