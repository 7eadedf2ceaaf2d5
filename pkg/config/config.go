// Package config loads the flock configuration from JSON or YAML files
// validated against an embedded JSON schema.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/flock"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON string

const schemaURL = "config.schema.json"

// Config holds all application parameters.
type Config struct {
	World     WorldConfig     `json:"world" yaml:"world"`
	Flock     FlockConfig     `json:"flock" yaml:"flock"`
	Boid      flock.Params    `json:"boid" yaml:"boid"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// WorldConfig is the simulated region, also the initial window size.
type WorldConfig struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type FlockConfig struct {
	InitialCount int `json:"initialCount" yaml:"initialCount"`
}

type IndexConfig struct {
	Capacity int `json:"capacity" yaml:"capacity"` // entries per leaf before it splits
}

// TelemetryConfig controls the CSV statistics output. An empty Path
// disables it.
type TelemetryConfig struct {
	Path  string `json:"path" yaml:"path"`
	Every int    `json:"every" yaml:"every"` // ticks between samples
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn or error
}

func DefaultConfig() *Config {
	return &Config{
		World:     WorldConfig{Width: 1000, Height: 800},
		Flock:     FlockConfig{InitialCount: 10},
		Boid:      flock.DefaultParams(),
		Index:     IndexConfig{Capacity: flock.DefaultCapacity},
		Telemetry: TelemetryConfig{Every: 60},
		Log:       LogConfig{Level: "info"},
	}
}

// LoadConfig reads a .json, .yaml or .yml file, validates it and decodes
// it over DefaultConfig, so omitted keys keep their default value.
func LoadConfig(path string) (*Config, error) {
	// 1. Read Config File
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse validates and decodes a document. ext selects the syntax and
// defaults to JSON.
func Parse(raw []byte, ext string) (*Config, error) {
	// 1. Normalise to JSON
	doc, err := toJSON(raw, ext)
	if err != nil {
		return nil, err
	}

	// 2. Validate
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	sch, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 3. Unmarshal over the defaults
	cfg := DefaultConfig()
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Boid.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	sch, err := jsonschema.CompileString(schemaURL, schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// toJSON converts a YAML document to JSON so both syntaxes go through the
// same schema.
func toJSON(raw []byte, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var v interface{}
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
		if v == nil {
			v = map[string]interface{}{}
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to convert yaml to json: %w", err)
		}
		return out, nil
	default:
		return raw, nil
	}
}

// Logger builds a logger writing to stderr at the configured level.
func (c *Config) Logger() log.Logger {
	return log.New(c.LogLevel(), os.Stderr)
}

// LogLevel maps Log.Level to a logger level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarningLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
