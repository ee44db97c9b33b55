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

package boundary

import (
	"errors"
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kazooki123/lunardb-security/config"
	"github.com/Kazooki123/lunardb-security/guard/admission"
	"github.com/Kazooki123/lunardb-security/guard/docguard"
	"github.com/Kazooki123/lunardb-security/guard/sanitize"
	"github.com/Kazooki123/lunardb-security/guard/sqlguard"
	"github.com/Kazooki123/lunardb-security/guard/statement"
	"github.com/Kazooki123/lunardb-security/guard/validate"
	"github.com/Kazooki123/lunardb-security/shared/logger"
)

// Operation names used in logs and metrics. They match the C symbols.
const (
	OpValidateInput    = "validate_input"
	OpCheckSQL         = "check_sql_safety"
	OpCheckDocument    = "check_document_query_safety"
	OpSanitize         = "sanitize"
	OpCreateTracker    = "create_tracker"
	OpCheckAdmission   = "check_admission"
	OpDestroyTracker   = "destroy_tracker"
	OpCreateStatement  = "create_statement"
	OpBindParameter    = "bind_parameter"
	OpExecuteStatement = "execute_statement"
	OpDestroyStatement = "destroy_statement"
)

// Rejection reasons that do not come from the validator.
const (
	ReasonNullPointer     = "null_pointer"
	ReasonInvalidEncoding = "invalid_encoding"
	ReasonInvalidHandle   = "invalid_handle"
	ReasonCapacity        = "capacity"
	ReasonConstruction    = "construction"
	ReasonSQL             = "sql"
	ReasonDocument        = "document"
)

// Engine dispatches boundary calls to the guards and owns every handle.
type Engine struct {
	cfg       config.Config
	validator *validate.Validator
	docs      *docguard.Guard
	sanitizer sanitize.Sanitizer
	stmtOpts  statement.Options

	handles  *arena
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the engine's logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New builds an engine from cfg. cfg should already be validated.
func New(cfg config.Config, opts ...Option) *Engine {
	mode, err := sanitize.ParseMode(cfg.Sanitize.Mode)
	if err != nil {
		mode = sanitize.ModeEncode
	}

	reg := prometheus.NewRegistry()
	e := &Engine{
		cfg:       cfg,
		validator: validate.FromConfig(cfg),
		docs:      docguard.New(cfg.Document.OperatorMarker),
		sanitizer: sanitize.New(mode),
		stmtOpts:  statement.OptionsFromConfig(cfg),
		handles:   newArena(),
		log:       logger.New("boundary"),
		registry:  reg,
		metrics:   newMetrics(reg),
	}
	if lvl, err := logger.ParseLevel(cfg.Logging.Level); err == nil && cfg.Logging.Level != "" {
		e.log.SetLevel(lvl)
	}
	for _, opt := range opts {
		opt(e)
	}
	// Export every validation reason at zero so rate queries see the series.
	for _, reason := range validate.Reasons() {
		e.metrics.rejections.WithLabelValues(OpValidateInput, string(reason))
	}
	return e
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine, configured from config.Load on
// first use. An invalid configuration falls back to the built-in defaults.
func Default() *Engine {
	defaultOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			defaultEngine = New(config.Default())
			defaultEngine.log.Warn("init", "", "invalid configuration, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		defaultEngine = New(cfg)
	})
	return defaultEngine
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Registry returns the registry holding the engine's metrics.
func (e *Engine) Registry() *prometheus.Registry {
	return e.registry
}

// Live returns the number of live handles of kind k.
func (e *Engine) Live(k Kind) int {
	return e.handles.count(k)
}

// ValidateInput runs the full validation pipeline.
func (e *Engine) ValidateInput(raw []byte) bool {
	text, err := DecodeText(raw)
	if err != nil {
		return e.rejectText(OpValidateInput, err)
	}
	result := e.validator.Evaluate(text)
	if !result.Allowed {
		return e.reject(OpValidateInput, string(result.Reason), nil)
	}
	return e.accept(OpValidateInput)
}

// CheckSQLSafety reports whether raw parses as SQL.
func (e *Engine) CheckSQLSafety(raw []byte) bool {
	text, err := DecodeText(raw)
	if err != nil {
		return e.rejectText(OpCheckSQL, err)
	}
	result := sqlguard.Check(text)
	if !result.Safe {
		return e.reject(OpCheckSQL, ReasonSQL, result.Err)
	}
	return e.accept(OpCheckSQL)
}

// CheckDocumentQuerySafety reports whether raw is JSON free of operator keys.
func (e *Engine) CheckDocumentQuerySafety(raw []byte) bool {
	text, err := DecodeText(raw)
	if err != nil {
		return e.rejectText(OpCheckDocument, err)
	}
	result := e.docs.Check(text)
	if !result.Safe {
		return e.reject(OpCheckDocument, ReasonDocument, result.Err)
	}
	return e.accept(OpCheckDocument)
}

// Sanitize neutralizes markup in raw. ok is false when raw cannot be decoded.
func (e *Engine) Sanitize(raw []byte) (out string, ok bool) {
	text, err := DecodeText(raw)
	if err != nil {
		return "", e.rejectText(OpSanitize, err)
	}
	e.accept(OpSanitize)
	return e.sanitizer.Sanitize(text), true
}

// CreateTracker allocates an admission tracker. A zero capacity yields the
// null handle.
func (e *Engine) CreateTracker(capacity uint64) Handle {
	if capacity == 0 {
		e.reject(OpCreateTracker, ReasonCapacity, nil)
		return 0
	}
	h := e.handles.insert(admission.New(int(min(capacity, uint64(math.MaxInt)))))
	e.metrics.handles.WithLabelValues(string(KindTracker)).Inc()
	e.accept(OpCreateTracker)
	return h
}

// CheckAdmission admits raw into the tracker behind h. An invalid handle or
// undecodable identifier is refused.
func (e *Engine) CheckAdmission(h Handle, raw []byte) bool {
	tracker, ok := e.handles.tracker(h)
	if !ok {
		return e.reject(OpCheckAdmission, ReasonInvalidHandle, nil)
	}
	id, err := DecodeText(raw)
	if err != nil {
		return e.rejectText(OpCheckAdmission, err)
	}
	if err := tracker.Admit(id); err != nil {
		return e.reject(OpCheckAdmission, ReasonCapacity, err)
	}
	return e.accept(OpCheckAdmission)
}

// DestroyTracker releases the tracker behind h.
func (e *Engine) DestroyTracker(h Handle) {
	e.destroy(OpDestroyTracker, h, KindTracker)
}

// CreateStatement allocates a statement template. Construction failures and
// undecodable text yield the null handle.
func (e *Engine) CreateStatement(raw []byte) Handle {
	query, err := DecodeText(raw)
	if err != nil {
		e.rejectText(OpCreateStatement, err)
		return 0
	}
	tmpl, err := statement.NewWithOptions(query, e.stmtOpts)
	if err != nil {
		e.reject(OpCreateStatement, ReasonConstruction, err)
		return 0
	}
	h := e.handles.insert(tmpl)
	e.metrics.handles.WithLabelValues(string(KindStatement)).Inc()
	e.accept(OpCreateStatement)
	return h
}

// BindParameter sanitizes raw and appends it to the statement behind h.
// Invalid handles and undecodable text are ignored.
func (e *Engine) BindParameter(h Handle, raw []byte) {
	tmpl, ok := e.handles.statement(h)
	if !ok {
		e.reject(OpBindParameter, ReasonInvalidHandle, nil)
		return
	}
	param, err := DecodeText(raw)
	if err != nil {
		e.rejectText(OpBindParameter, err)
		return
	}
	tmpl.Bind(param)
	e.accept(OpBindParameter)
}

// ExecuteStatement renders the statement behind h. ok is false for an
// invalid handle.
func (e *Engine) ExecuteStatement(h Handle) (out string, ok bool) {
	tmpl, found := e.handles.statement(h)
	if !found {
		return "", e.reject(OpExecuteStatement, ReasonInvalidHandle, nil)
	}
	e.accept(OpExecuteStatement)
	return tmpl.Execute(), true
}

// DestroyStatement releases the statement behind h.
func (e *Engine) DestroyStatement(h Handle) {
	e.destroy(OpDestroyStatement, h, KindStatement)
}

func (e *Engine) destroy(op string, h Handle, k Kind) {
	if !e.handles.remove(h, k) {
		e.reject(op, ReasonInvalidHandle, nil)
		return
	}
	e.metrics.handles.WithLabelValues(string(k)).Dec()
	e.accept(op)
}

func (e *Engine) accept(op string) bool {
	e.metrics.decisions.WithLabelValues(op, outcomeAccept).Inc()
	return true
}

func (e *Engine) rejectText(op string, err error) bool {
	reason := ReasonInvalidEncoding
	if errors.Is(err, ErrNullPointer) {
		reason = ReasonNullPointer
	}
	return e.reject(op, reason, err)
}

// reject records a refusal and returns false so callers can return it.
func (e *Engine) reject(op, reason string, err error) bool {
	e.metrics.decisions.WithLabelValues(op, outcomeReject).Inc()
	e.metrics.rejections.WithLabelValues(op, reason).Inc()
	if e.log.Enabled(logger.DEBUG) {
		fields := map[string]interface{}{"reason": reason}
		if err != nil {
			fields["error"] = err.Error()
		}
		e.log.Debug(op, "", "rejected", fields)
	}
	return false
}
