// Copyright 2025 The LunarDB Security Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Kazooki123/lunardb-security/guard/sanitize"
	"github.com/Kazooki123/lunardb-security/shared/logger"
)

// DocumentMode controls how the validator treats input that is not JSON.
type DocumentMode string

const (
	// DocumentModeStrict rejects any input the document guard cannot parse.
	DocumentModeStrict DocumentMode = "strict"

	// DocumentModeStructured only applies the operator-key scan to input
	// that parses as JSON; other input skips the document check.
	DocumentModeStructured DocumentMode = "structured"
)

// IsValid checks if the mode is known.
func (m DocumentMode) IsValid() bool {
	return m == DocumentModeStrict || m == DocumentModeStructured
}

// Config is the complete runtime configuration.
type Config struct {
	Version    string           `yaml:"version"`
	Validation ValidationConfig `yaml:"validation"`
	Statement  StatementConfig  `yaml:"statement"`
	Document   DocumentConfig   `yaml:"document"`
	Sanitize   SanitizeConfig   `yaml:"sanitize"`
	Logging    LoggingConfig    `yaml:"logging"`
	Sidecar    SidecarConfig    `yaml:"sidecar"`
	Redis      RedisConfig      `yaml:"redis"`
}

// ValidationConfig configures the input validator.
type ValidationConfig struct {
	// MaxInputLength is the largest accepted input in bytes. It may be
	// lowered but not raised above 1000.
	// Default: 1000
	MaxInputLength int `yaml:"max_input_length"`

	// DocumentMode is strict (default) or structured.
	DocumentMode DocumentMode `yaml:"document_mode"`
}

// StatementConfig configures statement templates.
type StatementConfig struct {
	// MaxQueryLength is the largest accepted template in bytes. It may be
	// lowered but not raised above 1000.
	// Default: 1000
	MaxQueryLength int `yaml:"max_query_length"`

	// Placeholder is the single character replaced by bound parameters.
	// Default: "?"
	Placeholder string `yaml:"placeholder"`
}

// DocumentConfig configures the document-query guard.
type DocumentConfig struct {
	// OperatorMarker prefixes reserved query-operator keys.
	// Default: "$"
	OperatorMarker string `yaml:"operator_marker"`
}

// SanitizeConfig configures the markup sanitizer.
type SanitizeConfig struct {
	// Mode is "encode" (default) or "strip".
	Mode string `yaml:"mode"`
}

// LoggingConfig configures the JSON logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SidecarConfig configures the HTTP sidecar.
type SidecarConfig struct {
	Addr            string   `yaml:"addr"`
	JWTSecret       string   `yaml:"jwt_secret"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrackerCapacity int      `yaml:"tracker_capacity"`

	// MaxTrackers bounds the number of named admission trackers. Requests
	// naming a new tracker beyond it are refused.
	// Default: 16
	MaxTrackers int `yaml:"max_trackers"`
}

// RedisConfig configures the optional Redis-backed admission tracker.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// Default limits.
const (
	DefaultMaxInputLength  = 1000
	DefaultMaxQueryLength  = 1000
	DefaultPlaceholder     = "?"
	DefaultOperatorMarker  = "$"
	DefaultSanitizeMode    = "encode"
	DefaultSidecarAddr     = ":8089"
	DefaultTrackerCapacity = 100
	DefaultMaxTrackers     = 16
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version: "1",
		Validation: ValidationConfig{
			MaxInputLength: DefaultMaxInputLength,
			DocumentMode:   DocumentModeStrict,
		},
		Statement: StatementConfig{
			MaxQueryLength: DefaultMaxQueryLength,
			Placeholder:    DefaultPlaceholder,
		},
		Document: DocumentConfig{
			OperatorMarker: DefaultOperatorMarker,
		},
		Sanitize: SanitizeConfig{
			Mode: DefaultSanitizeMode,
		},
		Logging: LoggingConfig{
			Level: string(logger.WARN),
		},
		Sidecar: SidecarConfig{
			Addr:            DefaultSidecarAddr,
			AllowedOrigins:  []string{"*"},
			TrackerCapacity: DefaultTrackerCapacity,
			MaxTrackers:     DefaultMaxTrackers,
		},
	}
}

// Environment variable names.
const (
	EnvConfigFile      = "LUNARSEC_CONFIG"
	EnvMaxInputLength  = "LUNARSEC_MAX_INPUT_LENGTH"
	EnvDocumentMode    = "LUNARSEC_DOCUMENT_MODE"
	EnvSanitizeMode    = "LUNARSEC_SANITIZE_MODE"
	EnvLogLevel        = logger.EnvLogLevel
	EnvSidecarAddr     = "LUNARSEC_SIDECAR_ADDR"
	EnvJWTSecret       = "LUNARSEC_JWT_SECRET"
	EnvTrackerCapacity = "LUNARSEC_TRACKER_CAPACITY"
	EnvMaxTrackers     = "LUNARSEC_MAX_TRACKERS"
	EnvRedisURL        = "LUNARSEC_REDIS_URL"
)

// ApplyEnv overlays LUNARSEC_* environment variables on c.
// Invalid numeric values are logged and ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvMaxInputLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Validation.MaxInputLength = n
		} else {
			log.Printf("[config] WARNING: invalid %s=%q, keeping %d", EnvMaxInputLength, v, c.Validation.MaxInputLength)
		}
	}
	if v := os.Getenv(EnvDocumentMode); v != "" {
		c.Validation.DocumentMode = DocumentMode(strings.ToLower(v))
	}
	if v := os.Getenv(EnvSanitizeMode); v != "" {
		c.Sanitize.Mode = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvSidecarAddr); v != "" {
		c.Sidecar.Addr = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Sidecar.JWTSecret = v
	}
	if v := os.Getenv(EnvTrackerCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sidecar.TrackerCapacity = n
		} else {
			log.Printf("[config] WARNING: invalid %s=%q, keeping %d", EnvTrackerCapacity, v, c.Sidecar.TrackerCapacity)
		}
	}
	if v := os.Getenv(EnvMaxTrackers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sidecar.MaxTrackers = n
		} else {
			log.Printf("[config] WARNING: invalid %s=%q, keeping %d", EnvMaxTrackers, v, c.Sidecar.MaxTrackers)
		}
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Redis.URL = v
	}
}

// FromEnv returns Default() with the environment overlay applied.
func FromEnv() Config {
	cfg := Default()
	cfg.ApplyEnv()
	return cfg
}

// Load resolves the configuration: defaults, then the file named by
// LUNARSEC_CONFIG (if set), then the environment. The result is validated.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Validation.MaxInputLength <= 0 || c.Validation.MaxInputLength > DefaultMaxInputLength {
		errs = append(errs, fmt.Sprintf("validation.max_input_length must be between 1 and %d", DefaultMaxInputLength))
	}
	if !c.Validation.DocumentMode.IsValid() {
		errs = append(errs, fmt.Sprintf("invalid validation.document_mode: %q", c.Validation.DocumentMode))
	}
	if c.Statement.MaxQueryLength <= 0 || c.Statement.MaxQueryLength > DefaultMaxQueryLength {
		errs = append(errs, fmt.Sprintf("statement.max_query_length must be between 1 and %d", DefaultMaxQueryLength))
	}
	if utf8.RuneCountInString(c.Statement.Placeholder) != 1 {
		errs = append(errs, fmt.Sprintf("statement.placeholder must be a single character, got %q", c.Statement.Placeholder))
	}
	if utf8.RuneCountInString(c.Document.OperatorMarker) != 1 {
		errs = append(errs, fmt.Sprintf("document.operator_marker must be a single character, got %q", c.Document.OperatorMarker))
	}
	if _, err := sanitize.ParseMode(c.Sanitize.Mode); err != nil {
		errs = append(errs, fmt.Sprintf("invalid sanitize.mode: %q", c.Sanitize.Mode))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid logging.level: %q", c.Logging.Level))
	}
	if c.Sidecar.TrackerCapacity <= 0 {
		errs = append(errs, "sidecar.tracker_capacity must be positive")
	}
	if c.Sidecar.MaxTrackers <= 0 {
		errs = append(errs, "sidecar.max_trackers must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
