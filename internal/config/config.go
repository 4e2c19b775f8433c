// Package config loads the ruledoc YAML configuration.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = "1.0"

// Config is the root configuration document.
type Config struct {
	Version     string         `yaml:"version"`
	Format      ruledoc.Format `yaml:"format"`
	StripPrefix string         `yaml:"strip_prefix"`
	Output      OutputConfig   `yaml:"output"`
	Units       UnitConfigs    `yaml:"units,omitempty"`
	Logging     LoggingConfig  `yaml:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// OutputConfig controls where view models are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove the directory before writing
}

// UnitConfig overrides the title and description of one documentation unit.
type UnitConfig struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// UnitConfigs is the list of per-unit overrides.
type UnitConfigs []UnitConfig

// Find returns the override for source, if any.
func (units UnitConfigs) Find(source string) (UnitConfig, bool) {
	for _, u := range units {
		if u.Source == source {
			return u, true
		}
	}
	return UnitConfig{}, false
}

// Default returns a configuration with every default applied; used when no
// configuration file exists.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	applyDefaults(cfg)
	return cfg
}

// Load reads, expands, normalizes, defaults and validates the configuration at path.
// Variables from .env files are visible to ${VAR} expansion. The returned bytes
// are exactly the document that was parsed. A missing file is a config error
// whose chain matches fs.ErrNotExist.
func Load(path string) (*Config, []byte, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, nil, errors.FileSystemError("read configuration file").WithCause(err).
			WithContext("path", path).
			Build()
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return cfg, data, nil
}

// Parse decodes and finalizes a configuration document already in memory.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "decode configuration").Fatal().Build()
	}

	if res := NormalizeConfig(&cfg); len(res.Warnings) > 0 {
		for _, w := range res.Warnings {
			warnf("config normalization: %s", w)
		}
	}
	applyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Config{
		Version:     CurrentVersion,
		Format:      ruledoc.FormatMarkdown,
		StripPrefix: "",
		Output:      OutputConfig{Directory: defaultOutputDirectory},
		Units: []UnitConfig{
			{Source: "rules/example.bzl", Title: "Example Rules", Description: "Rules for building examples."},
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	var buf bytes.Buffer
	buf.WriteString("# ruledoc configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&example); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode example configuration").Build()
	}
	if err := enc.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode example configuration").Build()
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.FileSystemError("write configuration file").WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
