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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1000, cfg.Validation.MaxInputLength)
	assert.Equal(t, DocumentModeStrict, cfg.Validation.DocumentMode)
	assert.Equal(t, 1000, cfg.Statement.MaxQueryLength)
	assert.Equal(t, "?", cfg.Statement.Placeholder)
	assert.Equal(t, "$", cfg.Document.OperatorMarker)
	assert.Equal(t, "encode", cfg.Sanitize.Mode)
	assert.Equal(t, DefaultMaxTrackers, cfg.Sidecar.MaxTrackers)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero input length", func(c *Config) { c.Validation.MaxInputLength = 0 }, "max_input_length"},
		{"unknown document mode", func(c *Config) { c.Validation.DocumentMode = "loose" }, "document_mode"},
		{"zero query length", func(c *Config) { c.Statement.MaxQueryLength = -1 }, "max_query_length"},
		{"multi-char placeholder", func(c *Config) { c.Statement.Placeholder = "??" }, "placeholder"},
		{"empty operator marker", func(c *Config) { c.Document.OperatorMarker = "" }, "operator_marker"},
		{"unknown sanitize mode", func(c *Config) { c.Sanitize.Mode = "escape" }, "sanitize.mode"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "TRACE" }, "logging.level"},
		{"raised input length", func(c *Config) { c.Validation.MaxInputLength = 1001 }, "max_input_length must be between 1 and 1000"},
		{"raised query length", func(c *Config) { c.Statement.MaxQueryLength = 4096 }, "max_query_length must be between 1 and 1000"},
		{"zero tracker capacity", func(c *Config) { c.Sidecar.TrackerCapacity = 0 }, "tracker_capacity"},
		{"zero max trackers", func(c *Config) { c.Sidecar.MaxTrackers = 0 }, "max_trackers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvMaxInputLength, "250")
	t.Setenv(EnvDocumentMode, "STRUCTURED")
	t.Setenv(EnvSanitizeMode, "Strip")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvSidecarAddr, "127.0.0.1:9000")
	t.Setenv(EnvJWTSecret, "s3cret")
	t.Setenv(EnvTrackerCapacity, "7")
	t.Setenv(EnvMaxTrackers, "3")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")

	cfg := FromEnv()

	assert.Equal(t, 250, cfg.Validation.MaxInputLength)
	assert.Equal(t, DocumentModeStructured, cfg.Validation.DocumentMode)
	assert.Equal(t, "strip", cfg.Sanitize.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Sidecar.Addr)
	assert.Equal(t, "s3cret", cfg.Sidecar.JWTSecret)
	assert.Equal(t, 7, cfg.Sidecar.TrackerCapacity)
	assert.Equal(t, 3, cfg.Sidecar.MaxTrackers)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvInvalidNumbersKeepDefaults(t *testing.T) {
	t.Setenv(EnvMaxInputLength, "lots")
	t.Setenv(EnvTrackerCapacity, "many")

	cfg := FromEnv()

	assert.Equal(t, DefaultMaxInputLength, cfg.Validation.MaxInputLength)
	assert.Equal(t, DefaultTrackerCapacity, cfg.Sidecar.TrackerCapacity)
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse([]byte("validation:\n  max_input_length: 64\n"))
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Validation.MaxInputLength)
	assert.Equal(t, DocumentModeStrict, cfg.Validation.DocumentMode)
	assert.Equal(t, "?", cfg.Statement.Placeholder)
	assert.Equal(t, "$", cfg.Document.OperatorMarker)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("validation: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dollar brace syntax", "prefix ${TEST_VAR} suffix", "prefix test_value suffix"},
		{"dollar syntax", "prefix $TEST_VAR suffix", "prefix test_value suffix"},
		{"default value - var exists", "${TEST_VAR:-default}", "test_value"},
		{"default value - var not exists", "${LUNARSEC_UNDEFINED_VAR:-fallback}", "fallback"},
		{"undefined var - empty result", "${LUNARSEC_UNDEFINED_VAR}", ""},
		{"quoted marker untouched", `operator_marker: "$"`, `operator_marker: "$"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lunarsec.yaml")
	content := `version: "1"
validation:
  max_input_length: 512
  document_mode: structured
sanitize:
  mode: strip
sidecar:
  jwt_secret: ${LUNARSEC_TEST_SECRET:-fallback-secret}
  allowed_origins: ["https://app.example.com"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Validation.MaxInputLength)
	assert.Equal(t, DocumentModeStructured, cfg.Validation.DocumentMode)
	assert.Equal(t, "strip", cfg.Sanitize.Mode)
	assert.Equal(t, "fallback-secret", cfg.Sidecar.JWTSecret)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Sidecar.AllowedOrigins)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lunarsec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("validation:\n  max_input_length: 512\n"), 0o600))
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvMaxInputLength, "128")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Validation.MaxInputLength)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvSanitizeMode, "rot13")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sanitize.mode")
}

func TestLoadRejectsRaisedInputLimit(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvMaxInputLength, "5000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_input_length")
}

func TestValidateSanitizeModeMatchesSanitizer(t *testing.T) {
	cfg := Default()
	cfg.Sanitize.Mode = " Strip "
	assert.NoError(t, cfg.Validate())
}
