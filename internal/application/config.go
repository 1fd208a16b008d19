package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scrutineer/internal/fidelity"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

// Config is the complete configuration of a scrutineer run and serves as
// the entry point for the CLI. Values come from a YAML file, are then
// overridden by SCRUTINEER_* environment variables, and are validated
// last.
type Config struct {
	// InputDir is scanned recursively for event documents.
	InputDir string `yaml:"input_dir" env:"SCRUTINEER_INPUT_DIR" validate:"required"`
	// OutputDir receives accepted competitions and, unless QuarantineDir
	// is set, the quarantine tree.
	OutputDir string `yaml:"output_dir" env:"SCRUTINEER_OUTPUT_DIR" validate:"required"`
	// Format is the encoding of stored competitions.
	Format string `yaml:"format" env:"SCRUTINEER_FORMAT" validate:"oneof=json yaml"`
	// QuarantineDir overrides where rejected competitions are written.
	QuarantineDir string `yaml:"quarantine_dir,omitempty" env:"SCRUTINEER_QUARANTINE_DIR"`
	// LedgerPath is the SQLite database recording verdicts and processed
	// sources. Relative paths resolve against OutputDir.
	LedgerPath string `yaml:"ledger_path" env:"SCRUTINEER_LEDGER_PATH" validate:"required"`
	// Workers bounds how many competitions are verified in parallel.
	Workers int `yaml:"workers" env:"SCRUTINEER_WORKERS" validate:"min=1,max=64"`
	// MetricsAddr, when set, serves Prometheus metrics on /metrics.
	MetricsAddr string `yaml:"metrics_addr,omitempty" env:"SCRUTINEER_METRICS_ADDR"`
	// Gate tunes the fidelity gate.
	Gate fidelity.Config `yaml:"gate" envPrefix:"SCRUTINEER_GATE_"`
	// Filter restricts which competitions are processed.
	Filter FilterConfig `yaml:"filter"`
}

// FilterConfig holds the optional competition filters. Values are matched
// case-insensitively and accept the same spellings as event documents.
type FilterConfig struct {
	// Date keeps competitions held on this day (YYYY-MM-DD). Undated
	// competitions adopt it, and the Minimum-Dances Policy is evaluated
	// for it.
	Date string `yaml:"date,omitempty" env:"SCRUTINEER_FILTER_DATE" validate:"omitempty,isodate"`
	// AgeGroup keeps one age group, e.g. "adult" or "sen_2".
	AgeGroup string `yaml:"age_group,omitempty" env:"SCRUTINEER_FILTER_AGE_GROUP" validate:"omitempty,agegroup"`
	// Style keeps one style: "std"/"standard" or "lat"/"latin".
	Style string `yaml:"style,omitempty" env:"SCRUTINEER_FILTER_STYLE" validate:"omitempty,style"`
	// Level keeps one level, E through S.
	Level string `yaml:"level,omitempty" env:"SCRUTINEER_FILTER_LEVEL" validate:"omitempty,level"`
}

const (
	// DefaultFormat is the store encoding used when none is configured.
	DefaultFormat = "json"
	// DefaultLedgerFile is the ledger database name below OutputDir.
	DefaultLedgerFile = "scrutineer.db"
)

// DefaultConfig returns a configuration that processes ./events into
// ./results with one worker per CPU.
func DefaultConfig() Config {
	return Config{
		InputDir:   "events",
		OutputDir:  "results",
		Format:     DefaultFormat,
		LedgerPath: DefaultLedgerFile,
		Workers:    min(runtime.NumCPU(), 8),
		Gate:       fidelity.DefaultConfig(),
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig, applies
// environment overrides and validates the result. An empty path skips the
// file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		return finishConfig(&cfg)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ports.NewConfigError(path, ports.ErrConfigNotFound)
	}
	if err != nil {
		return nil, ports.NewConfigError(path, fmt.Errorf("failed to read file: %w", err))
	}
	return LoadConfigFromReader(bytes.NewReader(data))
}

// LoadConfigFromReader is LoadConfig for an already opened document.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ports.NewConfigError("yaml", fmt.Errorf("YAML decode failed: %w", err))
	}
	return finishConfig(&cfg)
}

func finishConfig(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, ports.NewConfigError("env", fmt.Errorf("parse env: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and returns one ConfigError per violation,
// joined. Unknown filter values carry a suggestion when a close match
// exists.
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ports.NewConfigError("config", err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ports.NewConfigError(fe.Namespace(), describeFieldError(fe)))
	}
	return errors.Join(errs...)
}

// LedgerFile resolves LedgerPath against OutputDir.
func (c *Config) LedgerFile() string {
	if filepath.IsAbs(c.LedgerPath) {
		return c.LedgerPath
	}
	return filepath.Join(c.OutputDir, c.LedgerPath)
}
