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

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// EnvLogLevel names the environment variable holding the default threshold.
const EnvLogLevel = "LUNARSEC_LOG_LEVEL"

var levelRank = map[LogLevel]int{
	DEBUG: 0,
	INFO:  1,
	WARN:  2,
	ERROR: 3,
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("invalid log level: %q, valid levels are: DEBUG, INFO, WARN, ERROR", s)
	}
	return level, nil
}

// Logger provides structured logging for one component
type Logger struct {
	Component  string
	InstanceID string
	Container  string

	mu    sync.Mutex
	out   io.Writer
	level LogLevel
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp  string                 `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Component  string                 `json:"component"`
	InstanceID string                 `json:"instance_id"`
	Container  string                 `json:"container"`
	Op         string                 `json:"op,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component
func New(component string) *Logger {
	// Get instance ID from environment (set during deployment)
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	level := WARN
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		if parsed, err := ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
		out:        os.Stderr,
		level:      level,
	}
}

// SetOutput redirects log output. A nil writer discards entries.
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
}

// SetLevel sets the minimum level written.
func (l *Logger) SetLevel(level LogLevel) {
	if _, ok := levelRank[level]; !ok {
		return
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the current threshold.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.Level()]
}

// Log creates a structured log entry and writes it to the configured output
func (l *Logger) Log(level LogLevel, op, requestID, message string, fields map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}

	entry := LogEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Level:      level,
		Component:  l.Component,
		InstanceID: l.InstanceID,
		Container:  l.Container,
		Op:         op,
		RequestID:  requestID,
		Message:    message,
		Fields:     fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fields may hold values json cannot encode; keep the message.
		jsonBytes, _ = json.Marshal(LogEntry{
			Timestamp: entry.Timestamp,
			Level:     ERROR,
			Component: l.Component,
			Op:        op,
			Message:   fmt.Sprintf("failed to marshal log entry %q: %v", message, err),
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(jsonBytes, '\n'))
}

// Info logs an informational message
func (l *Logger) Info(op, requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, op, requestID, message, fields)
}

// Error logs an error message
func (l *Logger) Error(op, requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, op, requestID, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(op, requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, op, requestID, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(op, requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, op, requestID, message, fields)
}

// InfoWithDuration logs an info message with duration field
func (l *Logger) InfoWithDuration(op, requestID, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(op, requestID, message, fields)
}

// ErrorWithCode logs an error with status code
func (l *Logger) ErrorWithCode(op, requestID, message string, statusCode int, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["status_code"] = statusCode
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(op, requestID, message, fields)
}
