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
	"unicode/utf8"
)

// Encoding errors.
var (
	ErrNullPointer     = errors.New("null text pointer")
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
)

// DecodeText converts caller bytes into an owned string.
// A nil slice is a NULL pointer; an empty non-nil slice is the empty string.
func DecodeText(raw []byte) (string, error) {
	if raw == nil {
		return "", ErrNullPointer
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidEncoding
	}
	return string(raw), nil
}
