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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCheck_Safe(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"flat object", `{"name": "John"}`},
		{"nested object", `{"user": {"name": "John", "age": 30}}`},
		{"array of objects", `[{"a": 1}, {"b": [1, 2, {"c": null}]}]`},
		{"scalar string", `"$ne"`},
		{"scalar number", `42`},
		{"null", `null`},
		{"marker inside value", `{"price": "$100"}`},
		{"marker not at start of key", `{"a$b": 1}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Check(tt.input)
			assert.True(t, result.Safe, "err: %v", result.Err)
			assert.Empty(t, result.Path)
			assert.True(t, IsSafe(tt.input))
		})
	}
}

func TestCheck_OperatorKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  string
	}{
		{"top level", `{"$where": "sleep(1000)"}`, "$where"},
		{"nested", `{"name": {"$ne": null}}`, "name.$ne"},
		{"deep", `{"a": {"b": {"c": {"$gt": 1}}}}`, "a.b.c.$gt"},
		{"inside array", `{"or": [{"x": 1}, {"$where": "1"}]}`, "or[1].$where"},
		{"top level array", `[1, [2, {"$in": [1]}]]`, "[1][1].$in"},
		{"bare marker key", `{"$": 1}`, "$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Check(tt.input)
			assert.False(t, result.Safe)
			assert.Equal(t, tt.path, result.Path)
			assert.ErrorIs(t, result.Err, ErrOperatorKey)
			assert.False(t, IsSafe(tt.input))
		})
	}
}

func TestCheck_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"name: {$ne: null}",
		`{"name": "John"`,
		`{"a": 1} {"$ne": 1}`,
		`{"a": 1} ]`,
		"SELECT * FROM users",
	}
	for _, in := range inputs {
		result := Check(in)
		assert.False(t, result.Safe, "input %q", in)
		assert.ErrorIs(t, result.Err, ErrMalformed, "input %q", in)
	}
}

func TestCheck_DeepNesting(t *testing.T) {
	depth := 200
	doc := strings.Repeat(`{"k":`, depth) + `{"$gt": 0}` + strings.Repeat("}", depth)

	result := Check(doc)

	assert.False(t, result.Safe)
	assert.True(t, strings.HasSuffix(result.Path, "k.$gt"))
}

func TestGuard_CustomMarker(t *testing.T) {
	g := New("@")

	assert.True(t, g.IsSafe(`{"$ne": 1}`))
	assert.False(t, g.IsSafe(`{"@ne": 1}`))
	assert.Equal(t, DefaultMarker, New("").Marker)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON(`{"a": [1, 2]}`))
	assert.False(t, IsJSON(`SELECT 1`))
}

func TestToFilter(t *testing.T) {
	filter, err := ToFilter(`{"status": "active", "age": 30, "tags": ["a", "b"], "profile": {"city": "Oslo"}}`)
	require.NoError(t, err)

	require.Len(t, filter, 4)
	assert.Equal(t, "status", filter[0].Key)
	assert.Equal(t, "active", filter[0].Value)
	assert.Equal(t, "age", filter[1].Key)
	assert.EqualValues(t, 30, filter[1].Value)
	assert.Equal(t, "tags", filter[2].Key)
	assert.Equal(t, bson.A{"a", "b"}, filter[2].Value)
	assert.Equal(t, "profile", filter[3].Key)
	assert.Equal(t, bson.D{{Key: "city", Value: "Oslo"}}, filter[3].Value)
}

func TestToFilter_Rejects(t *testing.T) {
	_, err := ToFilter(`{"age": {"$gt": 18}}`)
	assert.ErrorIs(t, err, ErrOperatorKey)

	_, err = ToFilter(`[{"a": 1}]`)
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ToFilter(`{"a": `)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFilterExtJSON(t *testing.T) {
	out, err := New("").FilterExtJSON(`{"name": "bob", "active": true}`)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"bob","active":true}`, out)
}
