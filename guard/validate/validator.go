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

// Package validate composes the individual guards into the single
// accept/reject decision used for untrusted input.
//
// Checks run in this order and stop at the first failure:
//
//  1. valid UTF-8
//  2. length <= MaxInputLength bytes
//  3. sqlguard: the text parses as SQL
//  4. docguard: the text is JSON with no reserved operator keys
//  5. none of < > ' "
//  6. no NUL byte
//  7. no control character other than \n \r \t
package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Kazooki123/lunardb-security/config"
	"github.com/Kazooki123/lunardb-security/guard/docguard"
	"github.com/Kazooki123/lunardb-security/guard/sqlguard"
)

// Reason names the check that rejected an input.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonEncoding Reason = "encoding"
	ReasonLength   Reason = "length"
	ReasonSQL      Reason = "sql"
	ReasonDocument Reason = "document"
	ReasonMarkup   Reason = "markup"
	ReasonNullByte Reason = "null_byte"
	ReasonControl  Reason = "control"
)

// Reasons returns every rejection reason in check order.
func Reasons() []Reason {
	return []Reason{
		ReasonEncoding, ReasonLength, ReasonSQL, ReasonDocument,
		ReasonMarkup, ReasonNullByte, ReasonControl,
	}
}

// Result is the outcome of a validation.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

// Validator runs the check pipeline.
type Validator struct {
	maxLength    int
	documentMode config.DocumentMode
	docs         *docguard.Guard
}

// Option is a functional option for configuring Validator.
type Option func(*Validator)

// WithMaxLength sets the maximum input length in bytes.
func WithMaxLength(n int) Option {
	return func(v *Validator) {
		v.maxLength = n
	}
}

// WithDocumentMode sets how non-JSON input is treated by the document check.
func WithDocumentMode(mode config.DocumentMode) Option {
	return func(v *Validator) {
		v.documentMode = mode
	}
}

// WithOperatorMarker sets the reserved operator marker for the document check.
func WithOperatorMarker(marker string) Option {
	return func(v *Validator) {
		v.docs = docguard.New(marker)
	}
}

// New creates a validator with the default limits.
func New(opts ...Option) *Validator {
	v := &Validator{
		maxLength:    config.DefaultMaxInputLength,
		documentMode: config.DocumentModeStrict,
		docs:         docguard.New(config.DefaultOperatorMarker),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FromConfig creates a validator from the runtime configuration.
func FromConfig(cfg config.Config) *Validator {
	return New(
		WithMaxLength(cfg.Validation.MaxInputLength),
		WithDocumentMode(cfg.Validation.DocumentMode),
		WithOperatorMarker(cfg.Document.OperatorMarker),
	)
}

// MaxLength returns the configured length limit.
func (v *Validator) MaxLength() int {
	return v.maxLength
}

// Validate reports whether text passes every check.
func (v *Validator) Validate(text string) bool {
	return v.Evaluate(text).Allowed
}

// Evaluate runs the pipeline and names the first failing check.
func (v *Validator) Evaluate(text string) Result {
	switch {
	case !utf8.ValidString(text):
		return reject(ReasonEncoding)
	case len(text) > v.maxLength:
		return reject(ReasonLength)
	case !sqlguard.IsSafe(text):
		return reject(ReasonSQL)
	case !v.documentSafe(text):
		return reject(ReasonDocument)
	case ContainsMarkup(text):
		return reject(ReasonMarkup)
	case ContainsNullByte(text):
		return reject(ReasonNullByte)
	case ContainsControl(text):
		return reject(ReasonControl)
	}
	return Result{Allowed: true}
}

func (v *Validator) documentSafe(text string) bool {
	if v.documentMode == config.DocumentModeStructured && !docguard.IsJSON(text) {
		return true
	}
	return v.docs.IsSafe(text)
}

func reject(reason Reason) Result {
	return Result{Reason: reason}
}

// ContainsMarkup reports whether text contains any of < > ' ".
func ContainsMarkup(text string) bool {
	return strings.ContainsAny(text, `<>'"`)
}

// ContainsNullByte reports whether text contains a NUL byte.
func ContainsNullByte(text string) bool {
	return strings.IndexByte(text, 0) >= 0
}

// ContainsControl reports whether text contains a control character
// other than newline, carriage return or tab.
func ContainsControl(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\t':
			return false
		}
		return unicode.IsControl(r)
	}) >= 0
}
