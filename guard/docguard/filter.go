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

package docguard

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotObject is returned by ToFilter for documents that are not JSON objects.
var ErrNotObject = errors.New("document query must be a JSON object")

// ToFilter vets text and converts it into an ordered BSON filter document
// suitable for a MongoDB Find or Aggregate call. Key order follows the
// input. Text that fails the guard is never converted.
func (g *Guard) ToFilter(text string) (bson.D, error) {
	value, err := decode(text)
	if err != nil {
		return nil, err
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, ErrNotObject
	}
	if path, found := g.find(value, ""); found {
		return nil, fmt.Errorf("%w at %s", ErrOperatorKey, path)
	}

	// With no marker keys present there are no extended-JSON wrappers,
	// so relaxed extended JSON reads the text as plain JSON.
	var filter bson.D
	if err := bson.UnmarshalExtJSON([]byte(text), false, &filter); err != nil {
		return nil, fmt.Errorf("failed to convert document to BSON: %w", err)
	}
	return filter, nil
}

// FilterExtJSON vets text and renders the resulting filter as relaxed
// extended JSON.
func (g *Guard) FilterExtJSON(text string) (string, error) {
	filter, err := g.ToFilter(text)
	if err != nil {
		return "", err
	}
	out, err := bson.MarshalExtJSON(filter, false, false)
	if err != nil {
		return "", fmt.Errorf("failed to render filter: %w", err)
	}
	return string(out), nil
}

// ToFilter converts text with the default guard.
func ToFilter(text string) (bson.D, error) {
	return defaultGuard.ToFilter(text)
}
