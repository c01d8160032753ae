// Package config loads einsumtree settings from defaults, an optional YAML or
// JSON file and EINSUMTREE_* environment variables, in increasing priority.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/einsumtree/internal/tensor"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EINSUMTREE_"

// Config holds the analysis and CLI settings.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after Load.
type Config struct {
	// DefaultIndexSize is used for labels without an explicit size.
	DefaultIndexSize int `json:"default_index_size" yaml:"default_index_size" validate:"gte=1"`

	// IndexSizes maps labels to sizes.
	IndexSizes map[string]int `json:"index_sizes" yaml:"index_sizes" validate:"dive,keys,required,endkeys,gte=1"`

	// DataType names the element type used for byte estimates.
	DataType string `json:"data_type" yaml:"data_type" validate:"oneof=float32 float64 int32 int64 uint8 bool float16 bfloat16"`

	// Output is the report format.
	Output string `json:"output" yaml:"output" validate:"oneof=text json yaml"`

	// Reorder rewrites operands into canonical order before metrics.
	Reorder bool `json:"reorder" yaml:"reorder"`

	// Workers bounds concurrent batch analyses.
	Workers int `json:"workers" yaml:"workers" validate:"gte=1,lte=256"`

	LogLevel  string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `json:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

var validate = validator.New()

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DefaultIndexSize: 8,
		IndexSizes:       map[string]int{},
		DataType:         tensor.Float32.String(),
		Output:           "text",
		Workers:          4,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load applies the file at path (if any) and the environment over the
// defaults, then validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, fmt.Errorf("load config env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

// loadEnv applies EINSUMTREE_* overrides. Malformed numbers are rejected
// rather than ignored. EINSUMTREE_INDEX_SIZES takes "a=4,b=16" and is merged
// into the file's sizes.
func loadEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	if v, ok := get("DEFAULT_INDEX_SIZE"); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sDEFAULT_INDEX_SIZE: %w", EnvPrefix, err)
		}
		cfg.DefaultIndexSize = i
	}
	if v, ok := get("INDEX_SIZES"); ok {
		sizes, err := ParseSizes(strings.Split(v, ","))
		if err != nil {
			return fmt.Errorf("%sINDEX_SIZES: %w", EnvPrefix, err)
		}
		if cfg.IndexSizes == nil {
			cfg.IndexSizes = map[string]int{}
		}
		for l, s := range sizes {
			cfg.IndexSizes[l] = s
		}
	}
	if v, ok := get("WORKERS"); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		cfg.Workers = i
	}
	if v, ok := get("REORDER"); ok {
		cfg.Reorder = v == "true" || v == "1"
	}
	if v, ok := get("DATA_TYPE"); ok {
		cfg.DataType = strings.ToLower(v)
	}
	if v, ok := get("OUTPUT"); ok {
		cfg.Output = strings.ToLower(v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	return nil
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// ElementType returns the configured data type.
func (c Config) ElementType() tensor.DataType {
	dt, err := tensor.ParseDataType(c.DataType)
	if err != nil {
		return tensor.Float32
	}
	return dt
}

// Level returns the configured slog level.
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

// ParseSizes parses "label=size" pairs.
func ParseSizes(pairs []string) (map[string]int, error) {
	sizes := make(map[string]int, len(pairs))
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		label, value, ok := strings.Cut(p, "=")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("size %q: want label=size", p)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("size %q: want a positive integer", p)
		}
		sizes[label] = n
	}
	return sizes, nil
}
