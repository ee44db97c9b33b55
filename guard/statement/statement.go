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

// Package statement simulates a parameterized query.
//
// A Template holds a query with positional placeholder markers ("?") and
// an ordered list of bound parameters. Parameters are sanitized when bound
// and substituted textually on Execute. Nothing here talks to a database;
// the output is a literal string.
//
// Execute makes a single left-to-right pass over the query. This differs
// from a replace-first loop, which rescans text it has already substituted:
// with params "?" and "x", "? ?" renders as "? x" here, where the loop
// would render "x ?".
package statement

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Kazooki123/lunardb-security/config"
	"github.com/Kazooki123/lunardb-security/guard/sanitize"
)

// Construction errors.
var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrQueryTooLong = errors.New("query exceeds maximum length")
	ErrPlaceholder  = errors.New("placeholder must be a single character")
)

// Options configures template construction.
type Options struct {
	// MaxQueryLength is the largest accepted query in bytes.
	MaxQueryLength int

	// Placeholder is the marker replaced by parameters.
	Placeholder string

	// Sanitizer neutralizes bound parameters.
	Sanitizer sanitize.Sanitizer
}

// DefaultOptions returns the built-in limits.
func DefaultOptions() Options {
	return Options{
		MaxQueryLength: config.DefaultMaxQueryLength,
		Placeholder:    config.DefaultPlaceholder,
		Sanitizer:      sanitize.New(sanitize.ModeEncode),
	}
}

// OptionsFromConfig maps runtime configuration onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	mode, err := sanitize.ParseMode(cfg.Sanitize.Mode)
	if err != nil {
		mode = sanitize.ModeEncode
	}
	return Options{
		MaxQueryLength: cfg.Statement.MaxQueryLength,
		Placeholder:    cfg.Statement.Placeholder,
		Sanitizer:      sanitize.New(mode),
	}
}

// Template is a query plus its bound parameters. The query never changes
// after construction and parameters are only ever appended.
//
// A Template is not safe for concurrent mutation.
type Template struct {
	query       string
	placeholder string
	sanitizer   sanitize.Sanitizer
	params      []string
}

// New creates a template with DefaultOptions.
func New(query string) (*Template, error) {
	return NewWithOptions(query, DefaultOptions())
}

// NewWithOptions creates a template, rejecting empty or over-length queries.
func NewWithOptions(query string, opts Options) (*Template, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if len(query) > opts.MaxQueryLength {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrQueryTooLong, len(query), opts.MaxQueryLength)
	}
	if utf8.RuneCountInString(opts.Placeholder) != 1 {
		return nil, fmt.Errorf("%w: %q", ErrPlaceholder, opts.Placeholder)
	}
	return &Template{
		query:       query,
		placeholder: opts.Placeholder,
		sanitizer:   opts.Sanitizer,
	}, nil
}

// Query returns the template text.
func (t *Template) Query() string {
	return t.query
}

// Placeholders counts the markers in the query.
func (t *Template) Placeholders() int {
	return strings.Count(t.query, t.placeholder)
}

// Params returns a copy of the bound, sanitized parameters in bind order.
func (t *Template) Params() []string {
	out := make([]string, len(t.params))
	copy(out, t.params)
	return out
}

// Bind sanitizes param and appends it. There is no limit on the number
// of parameters; extras are ignored by Execute.
func (t *Template) Bind(param string) {
	t.params = append(t.params, t.sanitizer.Sanitize(param))
}

// Execute substitutes parameters into markers left to right. Markers
// without a parameter stay in place. Substituted text is never rescanned,
// so a parameter containing the marker does not consume the next one.
func (t *Template) Execute() string {
	if len(t.params) == 0 {
		return t.query
	}

	var b strings.Builder
	b.Grow(len(t.query))

	rest := t.query
	for _, param := range t.params {
		i := strings.Index(rest, t.placeholder)
		if i < 0 {
			break
		}
		b.WriteString(rest[:i])
		b.WriteString(param)
		rest = rest[i+len(t.placeholder):]
	}
	b.WriteString(rest)
	return b.String()
}
