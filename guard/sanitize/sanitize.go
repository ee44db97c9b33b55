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

// Package sanitize neutralizes the markup characters < > & " ' in text.
//
// The default mode replaces each character with its entity. The strip mode
// removes them instead and is kept for hosts that cannot store entities.
package sanitize

import (
	"fmt"
	"strings"
)

// Mode selects how dangerous characters are neutralized.
type Mode string

const (
	// ModeEncode replaces each character with its markup entity.
	ModeEncode Mode = "encode"

	// ModeStrip removes each character.
	ModeStrip Mode = "strip"
)

// ParseMode parses a string into a Mode, returning an error if invalid.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case ModeEncode, ModeStrip:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid sanitize mode: %q, valid modes are: encode, strip", s)
	}
}

var (
	encoder = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)
	stripper = strings.NewReplacer(
		"&", "",
		"<", "",
		">", "",
		`"`, "",
		"'", "",
	)
)

// Sanitizer neutralizes markup characters according to its mode.
// The zero value encodes.
type Sanitizer struct {
	mode Mode
}

// New returns a Sanitizer for mode. Unknown modes encode.
func New(mode Mode) Sanitizer {
	if mode != ModeStrip {
		mode = ModeEncode
	}
	return Sanitizer{mode: mode}
}

// Mode returns the sanitizer's mode.
func (s Sanitizer) Mode() Mode {
	if s.mode == "" {
		return ModeEncode
	}
	return s.mode
}

// Sanitize neutralizes text. Text without markup characters is returned
// unchanged.
func (s Sanitizer) Sanitize(text string) string {
	if !NeedsEscaping(text) {
		return text
	}
	if s.mode == ModeStrip {
		return Strip(text)
	}
	return Sanitize(text)
}

// Sanitize entity-encodes < > & " ' in text.
func Sanitize(text string) string {
	return encoder.Replace(text)
}

// Strip removes < > & " ' from text.
func Strip(text string) string {
	return stripper.Replace(text)
}

// NeedsEscaping reports whether text contains any character Sanitize rewrites.
func NeedsEscaping(text string) bool {
	return strings.ContainsAny(text, `<>&"'`)
}
