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

// Package docguard detects document-query operator keys in JSON.
//
// A document query is unsafe when any object key, at any depth, begins
// with the reserved operator marker ("$" by default, as in {"$ne": null}).
// Text that is not valid JSON is unsafe too.
package docguard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DefaultMarker prefixes reserved operator keys.
const DefaultMarker = "$"

var (
	// ErrMalformed is returned for text that does not parse as JSON.
	ErrMalformed = errors.New("malformed JSON document")

	// ErrOperatorKey is returned when a reserved operator key is present.
	ErrOperatorKey = errors.New("reserved operator key")
)

// Result is the outcome of a document check.
type Result struct {
	Safe bool `json:"safe"`

	// Path locates the first offending key, e.g. "filter.age.$gt" or "or[1].$where".
	Path string `json:"path,omitempty"`

	// Err is ErrMalformed or ErrOperatorKey (wrapped) when Safe is false.
	Err error `json:"-"`
}

// Guard scans JSON documents for keys starting with Marker.
type Guard struct {
	Marker string
}

// New returns a guard for marker. An empty marker uses DefaultMarker.
func New(marker string) *Guard {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Guard{Marker: marker}
}

var defaultGuard = New(DefaultMarker)

// IsSafe reports whether text is JSON free of "$"-prefixed keys.
func IsSafe(text string) bool {
	return defaultGuard.IsSafe(text)
}

// Check runs the default guard.
func Check(text string) Result {
	return defaultGuard.Check(text)
}

// IsSafe reports whether text is JSON free of reserved operator keys.
func (g *Guard) IsSafe(text string) bool {
	return g.Check(text).Safe
}

// Check parses text and walks the resulting value.
func (g *Guard) Check(text string) Result {
	value, err := decode(text)
	if err != nil {
		return Result{Err: err}
	}
	if path, found := g.find(value, ""); found {
		return Result{
			Path: path,
			Err:  fmt.Errorf("%w at %s", ErrOperatorKey, path),
		}
	}
	return Result{Safe: true}
}

// IsJSON reports whether text parses as a single JSON value.
func IsJSON(text string) bool {
	return json.Valid([]byte(text))
}

func decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// Reject trailing data such as `{} {"$ne": 1}`.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}
	return value, nil
}

// find walks value depth first and returns the path of the first
// reserved key. Map iteration order is random, so keys are visited in
// sorted order to keep the reported path stable.
func (g *Guard) find(value any, path string) (string, bool) {
	switch v := value.(type) {
	case map[string]any:
		keys := sortedKeys(v)
		for _, key := range keys {
			if strings.HasPrefix(key, g.Marker) {
				return join(path, key), true
			}
		}
		for _, key := range keys {
			if p, found := g.find(v[key], join(path, key)); found {
				return p, true
			}
		}
	case []any:
		for i, elem := range v {
			if p, found := g.find(elem, path+"["+strconv.Itoa(i)+"]"); found {
				return p, true
			}
		}
	}
	return "", false
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
